package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/redago/redago-server/internal/pkg/response"
	"github.com/redago/redago-server/internal/service"
)

// AdminHandler exposes the operational surface: statistics, the
// expiring-soon list, the manual sweep trigger, and suspend/reactivate.
type AdminHandler struct {
	subscriptionService *service.SubscriptionService
	paymentService      *service.PaymentService
}

func NewAdminHandler(
	subscriptionService *service.SubscriptionService,
	paymentService *service.PaymentService,
) *AdminHandler {
	return &AdminHandler{
		subscriptionService: subscriptionService,
		paymentService:      paymentService,
	}
}

// Statistics returns subscription counts and revenue for the dashboard.
// GET /api/v1/admin/subscriptions/statistics
func (h *AdminHandler) Statistics(c *gin.Context) {
	stats, err := h.subscriptionService.GetStatistics()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, stats)
}

// Expiring lists active subscriptions ending within the given days.
// GET /api/v1/admin/subscriptions/expiring?days=3
func (h *AdminHandler) Expiring(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "3"))
	if err != nil || days < 1 {
		response.ParamError(c, "invalid days")
		return
	}

	subs, err := h.subscriptionService.GetExpiring(days)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, subs)
}

// Sweep triggers one expiration sweep immediately. Auto-renewed
// subscriptions get their payment rows recorded here as well.
// POST /api/v1/admin/subscriptions/sweep
func (h *AdminHandler) Sweep(c *gin.Context) {
	result, err := h.subscriptionService.ProcessExpired()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	for i := range result.Renewed {
		_ = h.paymentService.RecordAutoRenewal(&result.Renewed[i])
	}

	response.Success(c, gin.H{
		"expired": len(result.Expired),
		"renewed": len(result.Renewed),
	})
}

// Suspend pauses an active subscription.
// POST /api/v1/admin/subscriptions/:id/suspend
func (h *AdminHandler) Suspend(c *gin.Context) {
	subscriptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid subscription id")
		return
	}

	sub, err := h.subscriptionService.Suspend(subscriptionID)
	if err != nil {
		h.stateError(c, err)
		return
	}
	response.Success(c, sub)
}

// Reactivate resumes a suspended subscription without touching its dates.
// POST /api/v1/admin/subscriptions/:id/reactivate
func (h *AdminHandler) Reactivate(c *gin.Context) {
	subscriptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid subscription id")
		return
	}

	sub, err := h.subscriptionService.Reactivate(subscriptionID)
	if err != nil {
		h.stateError(c, err)
		return
	}
	response.Success(c, sub)
}

func (h *AdminHandler) stateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubscriptionNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrNoActiveSubscription),
		errors.Is(err, service.ErrNotSuspended):
		response.SubscriptionStateError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
