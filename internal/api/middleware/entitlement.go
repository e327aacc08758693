package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/redago/redago-server/internal/pkg/response"
	"github.com/redago/redago-server/internal/service"
)

// EntitlementGate rejects essay submissions from users who are out of quota
// or have no active subscription. This is the fast-path check only; the
// essay service re-verifies the count inside the insert transaction, so a
// request that slips past the gate still cannot exceed the weekly limit.
func EntitlementGate(quotaService *service.QuotaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		ent, err := quotaService.CanSubmitEssay(userID)
		if err != nil {
			response.ServerError(c, "entitlement check failed")
			c.Abort()
			return
		}

		if !ent.Allowed {
			response.ErrorWithData(c, response.CodeQuotaExceeded, ent.Reason, ent)
			c.Abort()
			return
		}

		c.Next()
	}
}
