package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/redago/redago-server/internal/api/middleware"
	"github.com/redago/redago-server/internal/model/dto"
	"github.com/redago/redago-server/internal/pkg/response"
	"github.com/redago/redago-server/internal/service"
)

type EssayHandler struct {
	essayService *service.EssayService
	hub          Notifier
}

// Notifier pushes quota updates to connected clients. Nil-safe indirection
// so handler tests do not need a live websocket hub.
type Notifier interface {
	NotifyQuota(userID int64, current, max int)
}

func NewEssayHandler(essayService *service.EssayService, hub Notifier) *EssayHandler {
	return &EssayHandler{
		essayService: essayService,
		hub:          hub,
	}
}

// Submit records a new essay against the caller's weekly quota.
// POST /api/v1/essays
func (h *EssayHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SubmitEssayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	essay, ent, err := h.essayService.Submit(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuotaExceeded),
			errors.Is(err, service.ErrNoActiveSubscription):
			response.ErrorWithData(c, response.CodeQuotaExceeded, ent.Reason, ent)
		default:
			response.ServerError(c, "")
		}
		return
	}

	if h.hub != nil {
		h.hub.NotifyQuota(userID, ent.Current, ent.Max)
	}

	response.Success(c, gin.H{
		"essay":       essay,
		"entitlement": ent,
	})
}

// List returns the caller's essays, paginated.
// GET /api/v1/essays?page=1&page_size=20
func (h *EssayHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	essays, total, err := h.essayService.List(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, essays)
}

// Get returns a single owned essay.
// GET /api/v1/essays/:id
func (h *EssayHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	essayID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid essay id")
		return
	}

	essay, err := h.essayService.Get(userID, essayID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEssayNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrEssayPermission):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, essay)
}
