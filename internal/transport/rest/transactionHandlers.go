package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/utils"
)

type createTransactionRequest struct {
	CategoryID      int64           `json:"categoryId" binding:"required"`
	Type            string          `json:"type" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	Price           decimal.Decimal `json:"price" binding:"required"`
	TransactionDate string          `json:"transactionDate"`
	Notes           string          `json:"notes"`
}

func (ctrl *Controller) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	transaction := model.Transaction{
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Notes:      req.Notes,
	}

	if req.TransactionDate != "" {
		date, err := model.ParseDate(req.TransactionDate)
		if err != nil {
			respondBadRequest(c, "transactionDate must be YYYY-MM-DD")
			return
		}
		transaction.TransactionDate = date
	}

	ctx := utils.CreateCtxWithRqID(c)
	created, err := ctrl.transactionService.CreateTransaction(ctx, c.GetInt64("userID"), transaction)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, created)
}

type updateTransactionRequest struct {
	CategoryID      *int64           `json:"categoryId"`
	Type            *string          `json:"type"`
	Quantity        *decimal.Decimal `json:"quantity"`
	Price           *decimal.Decimal `json:"price"`
	TransactionDate *string          `json:"transactionDate"`
	Notes           *string          `json:"notes"`
}

func (ctrl *Controller) UpdateTransaction(c *gin.Context) {
	transactionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid transaction id")
		return
	}

	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	changes := model.TransactionChanges{
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Notes:      req.Notes,
	}

	if req.TransactionDate != nil {
		date, err := model.ParseDate(*req.TransactionDate)
		if err != nil {
			respondBadRequest(c, "transactionDate must be YYYY-MM-DD")
			return
		}
		changes.TransactionDate = &date
	}

	ctx := utils.CreateCtxWithRqID(c)
	updated, err := ctrl.transactionService.UpdateTransaction(ctx, c.GetInt64("userID"), transactionID, changes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, updated)
}

func (ctrl *Controller) DeleteTransaction(c *gin.Context) {
	transactionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid transaction id")
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	if err := ctrl.transactionService.DeleteTransaction(ctx, c.GetInt64("userID"), transactionID); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, "transaction deleted")
}

func (ctrl *Controller) GetTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	ctx := utils.CreateCtxWithRqID(c)
	transactions, err := ctrl.transactionService.GetTransactions(ctx, c.GetInt64("userID"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, transactions)
}

func (ctrl *Controller) GetTransactionsByCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid category id")
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	transactions, err := ctrl.transactionService.GetTransactionsByCategory(ctx, c.GetInt64("userID"), categoryID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, transactions)
}

func (ctrl *Controller) GetRecentTransactions(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	ctx := utils.CreateCtxWithRqID(c)
	transactions, err := ctrl.transactionService.GetRecentTransactions(ctx, c.GetInt64("userID"), days)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, transactions)
}

func (ctrl *Controller) GetTransactionsByDateRange(c *gin.Context) {
	from, err := model.ParseDate(c.Query("from"))
	if err != nil {
		respondBadRequest(c, "from must be YYYY-MM-DD")
		return
	}

	to, err := model.ParseDate(c.Query("to"))
	if err != nil {
		respondBadRequest(c, "to must be YYYY-MM-DD")
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	transactions, err := ctrl.transactionService.GetTransactionsByDateRange(ctx, c.GetInt64("userID"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, transactions)
}
