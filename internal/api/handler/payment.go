package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/redago/redago-server/internal/api/middleware"
	"github.com/redago/redago-server/internal/model/dto"
	"github.com/redago/redago-server/internal/pkg/response"
	"github.com/redago/redago-server/internal/plan"
	"github.com/redago/redago-server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Confirm processes a confirmed charge: it records the payment and either
// renews the caller's subscription or opens a new one.
// POST /api/v1/payments/confirm
func (h *PaymentHandler) Confirm(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.paymentService.Confirm(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, plan.ErrInvalidPlanType),
			errors.Is(err, service.ErrAmountPlanMismatch):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, sub)
}

// History lists the caller's payments, newest first.
// GET /api/v1/payments
func (h *PaymentHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	payments, err := h.paymentService.History(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, payments)
}
