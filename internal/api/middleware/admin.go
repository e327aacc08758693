package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/redago/redago-server/internal/model"
	"github.com/redago/redago-server/internal/pkg/response"
	"github.com/redago/redago-server/internal/repository"
)

// AdminOnly loads the authenticated user and rejects anyone without the
// admin role. Must run after Auth.
func AdminOnly(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		user, err := userRepo.GetByID(userID)
		if err != nil {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		if user.Role != model.RoleAdmin {
			response.PermissionError(c, "admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
