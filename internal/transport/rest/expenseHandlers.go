package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/utils"
)

type expenseItemRequest struct {
	Name   string          `json:"name" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

type createExpenseRequest struct {
	Month string               `json:"month" binding:"required"`
	Notes string               `json:"notes"`
	Items []expenseItemRequest `json:"items"`
}

func (ctrl *Controller) CreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	items := make([]model.ExpenseItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.ExpenseItem{Name: item.Name, Amount: item.Amount, Notes: item.Notes})
	}

	ctx := utils.CreateCtxWithRqID(c)
	expense, err := ctrl.expenseService.CreateExpense(ctx, c.GetInt64("userID"), req.Month, req.Notes, items)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, expense)
}

func (ctrl *Controller) GetExpenses(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	expenses, err := ctrl.expenseService.GetExpenses(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, expenses)
}

func (ctrl *Controller) GetExpenseByMonth(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	expense, err := ctrl.expenseService.GetExpenseByMonth(ctx, c.GetInt64("userID"), c.Param("month"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, expense)
}

func (ctrl *Controller) DeleteExpenseByMonth(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	if err := ctrl.expenseService.DeleteExpenseByMonth(ctx, c.GetInt64("userID"), c.Param("month")); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, "expense deleted")
}

func (ctrl *Controller) AddExpenseItem(c *gin.Context) {
	expenseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid expense id")
		return
	}

	var req expenseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	item := model.ExpenseItem{Name: req.Name, Amount: req.Amount, Notes: req.Notes}

	ctx := utils.CreateCtxWithRqID(c)
	created, err := ctrl.expenseService.AddItem(ctx, c.GetInt64("userID"), expenseID, item)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, created)
}

type updateExpenseItemRequest struct {
	Name   *string          `json:"name"`
	Amount *decimal.Decimal `json:"amount"`
	Notes  *string          `json:"notes"`
}

func (ctrl *Controller) UpdateExpenseItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid item id")
		return
	}

	var req updateExpenseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	changes := model.ExpenseItemChanges{
		Name:   req.Name,
		Amount: req.Amount,
		Notes:  req.Notes,
	}

	ctx := utils.CreateCtxWithRqID(c)
	item, err := ctrl.expenseService.UpdateItem(ctx, c.GetInt64("userID"), itemID, changes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, item)
}

func (ctrl *Controller) DeleteExpenseItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid item id")
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	if err := ctrl.expenseService.DeleteItem(ctx, c.GetInt64("userID"), itemID); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, "item deleted")
}

type copyExpenseRequest struct {
	FromMonth string `json:"fromMonth" binding:"required"`
	ToMonth   string `json:"toMonth" binding:"required"`
}

func (ctrl *Controller) CopyExpense(c *gin.Context) {
	var req copyExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	expense, err := ctrl.expenseService.CopyFromMonth(ctx, c.GetInt64("userID"), req.FromMonth, req.ToMonth)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, expense)
}

func (ctrl *Controller) GetExpenseTrend(c *gin.Context) {
	months, _ := strconv.Atoi(c.Query("months"))

	ctx := utils.CreateCtxWithRqID(c)
	trend, err := ctrl.expenseService.GetTrend(ctx, c.GetInt64("userID"), months)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, trend)
}

func (ctrl *Controller) GetItemTrend(c *gin.Context) {
	months, _ := strconv.Atoi(c.Query("months"))

	ctx := utils.CreateCtxWithRqID(c)
	trend, err := ctrl.expenseService.GetItemTrend(ctx, c.GetInt64("userID"), c.Param("itemName"), months)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, trend)
}

type itemsTrendRequest struct {
	Names  []string `json:"names" binding:"required"`
	Months int      `json:"months"`
}

func (ctrl *Controller) GetItemsTrend(c *gin.Context) {
	var req itemsTrendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	trend, err := ctrl.expenseService.GetItemsTrend(ctx, c.GetInt64("userID"), req.Names, req.Months)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, trend)
}

func (ctrl *Controller) GetItemNames(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	names, err := ctrl.expenseService.GetItemNames(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, names)
}

func (ctrl *Controller) GetTrackedItems(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	names, err := ctrl.expenseService.GetTrackedItems(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, names)
}

type trackedItemsRequest struct {
	Names []string `json:"names"`
}

func (ctrl *Controller) SetTrackedItems(c *gin.Context) {
	var req trackedItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	if err := ctrl.expenseService.SetTrackedItems(ctx, c.GetInt64("userID"), req.Names); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, "tracked items saved")
}
