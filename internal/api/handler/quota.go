package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/redago/redago-server/internal/api/middleware"
	"github.com/redago/redago-server/internal/pkg/response"
	"github.com/redago/redago-server/internal/service"
)

type QuotaHandler struct {
	quotaService *service.QuotaService
}

func NewQuotaHandler(quotaService *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{
		quotaService: quotaService,
	}
}

// GetQuota reports whether the caller may submit an essay right now, with
// the current and maximum counts for the week. A denial is still a 200 with
// allowed=false; errors are reserved for storage failures.
// GET /api/v1/user/quota
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	ent, err := h.quotaService.CanSubmitEssay(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, ent)
}
