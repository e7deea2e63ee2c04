package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tuanvm/investfolio/internal/service"
	"github.com/tuanvm/investfolio/utils"
)

type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, response{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, response{Success: true, Message: message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, response{Success: false, Message: message})
}

// respondError maps service errors onto http statuses. Anything unmapped
// is treated as internal and logged with the request id.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response{Success: false, Message: "not found"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, response{Success: false, Message: err.Error()})
	case errors.Is(err, service.ErrInsufficientHoldings):
		c.JSON(http.StatusBadRequest, response{Success: false, Message: "insufficient holdings to sell"})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, response{Success: false, Message: "already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, response{Success: false, Message: "invalid credentials"})
	default:
		rqID := utils.GetRequestIDFromCtx(c.Request.Context())
		slog.Error("internal error", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, response{Success: false, Message: "internal error"})
	}
}
