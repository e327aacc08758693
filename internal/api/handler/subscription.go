package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/redago/redago-server/internal/api/middleware"
	"github.com/redago/redago-server/internal/model/dto"
	"github.com/redago/redago-server/internal/pkg/response"
	"github.com/redago/redago-server/internal/plan"
	"github.com/redago/redago-server/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// Create opens a new subscription for the caller. Any existing active
// subscription is replaced.
// POST /api/v1/subscriptions
func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.subscriptionService.Create(userID, req.PlanType, req.PaymentMethod, req.AutoRenew)
	if err != nil {
		switch {
		case errors.Is(err, plan.ErrInvalidPlanType):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrDuplicateActiveSubscription):
			response.SubscriptionStateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, sub)
}

// Renew extends an owned subscription. The new period is anchored at the
// current end date regardless of when the payment lands.
// POST /api/v1/subscriptions/:id/renew
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	subscriptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid subscription id")
		return
	}

	var req dto.RenewSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.subscriptionService.Renew(userID, subscriptionID, req.Months)
	if err != nil {
		h.lifecycleError(c, err)
		return
	}

	response.Success(c, sub)
}

// Cancel deactivates an owned active subscription.
// POST /api/v1/subscriptions/:id/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	subscriptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid subscription id")
		return
	}

	if err := h.subscriptionService.Cancel(userID, subscriptionID); err != nil {
		h.lifecycleError(c, err)
		return
	}

	response.Success(c, nil)
}

// GetActive returns the caller's current subscription.
// GET /api/v1/subscriptions/active
func (h *SubscriptionHandler) GetActive(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	sub, err := h.subscriptionService.GetActive(userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSubscription) {
			response.NotFoundError(c, "no active subscription")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, sub)
}

// GetHistory lists all of the caller's subscriptions, newest first.
// GET /api/v1/subscriptions/history
func (h *SubscriptionHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	subs, err := h.subscriptionService.GetHistory(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, subs)
}

func (h *SubscriptionHandler) lifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubscriptionNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrNoActiveSubscription),
		errors.Is(err, service.ErrNotSuspended):
		response.SubscriptionStateError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
