package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/utils"
)

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (ctrl *Controller) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	category, err := ctrl.categoryService.CreateCategory(ctx, c.GetInt64("userID"), req.Name, req.Description, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, category)
}

func (ctrl *Controller) GetCategories(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	categories, err := ctrl.categoryService.GetCategories(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, categories)
}

func (ctrl *Controller) GetCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid category id")
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	category, err := ctrl.categoryService.GetCategory(ctx, categoryID, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, category)
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (ctrl *Controller) UpdateCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid category id")
		return
	}

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	changes := model.CategoryChanges{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}

	ctx := utils.CreateCtxWithRqID(c)
	category, err := ctrl.categoryService.UpdateCategory(ctx, categoryID, c.GetInt64("userID"), changes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, category)
}

func (ctrl *Controller) DeleteCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid category id")
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	if err := ctrl.categoryService.DeleteCategory(ctx, categoryID, c.GetInt64("userID")); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, "category deleted")
}
