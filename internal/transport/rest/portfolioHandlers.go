package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/utils"
)

func (ctrl *Controller) GetDashboard(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	dashboard, err := ctrl.portfolioService.GetDashboard(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, dashboard)
}

func (ctrl *Controller) GetOverview(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	overview, err := ctrl.portfolioService.GetOverview(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, overview)
}

func (ctrl *Controller) GetDistribution(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	distribution, err := ctrl.portfolioService.GetDistribution(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, distribution)
}

func (ctrl *Controller) GetPnl(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	positions, err := ctrl.portfolioService.GetPnlByCategory(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, positions)
}

func (ctrl *Controller) GetPnlLast7Days(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	history, err := ctrl.portfolioService.GetPnlLast7Days(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, history)
}

func (ctrl *Controller) GetHistory(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	ctx := utils.CreateCtxWithRqID(c)
	history, err := ctrl.portfolioService.GetHistory(ctx, c.GetInt64("userID"), days)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, history)
}

type updateValueRequest struct {
	CurrentValue decimal.Decimal `json:"currentValue"`
}

func (ctrl *Controller) UpdateCurrentValue(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid category id")
		return
	}

	var req updateValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	holding, err := ctrl.portfolioService.UpdateCurrentValue(ctx, c.GetInt64("userID"), categoryID, req.CurrentValue)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, holding)
}

func (ctrl *Controller) CreateSnapshot(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	snapshots, err := ctrl.portfolioService.CreateDailySnapshot(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, snapshots)
}

func (ctrl *Controller) ExportReport(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	fileBytes, fileExtension, err := ctrl.portfolioService.ExportReport(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	fileName := fmt.Sprintf("portfolio_%s%s", time.Now().Format("2006-01-02"), fileExtension)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fileBytes)
}

func (ctrl *Controller) GetQuote(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	quote, err := ctrl.priceService.GetQuote(ctx, c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, quote)
}

func (ctrl *Controller) ApplyQuote(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid category id")
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	holding, quote, err := ctrl.priceService.ApplyQuote(ctx, c.GetInt64("userID"), categoryID, c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"holding": holding, "quote": quote})
}
