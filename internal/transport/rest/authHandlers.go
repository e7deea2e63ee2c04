package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/tuanvm/investfolio/utils"
)

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func (ctrl *Controller) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	result, err := ctrl.authService.Register(ctx, req.Username, req.Password, req.DisplayName, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, result)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ctrl *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	result, err := ctrl.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, result)
}

func (ctrl *Controller) GetProfile(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	user, err := ctrl.authService.GetProfile(ctx, c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (ctrl *Controller) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ctx := utils.CreateCtxWithRqID(c)
	err := ctrl.authService.ChangePassword(ctx, c.GetInt64("userID"), req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, "password changed")
}
