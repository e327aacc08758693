package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes.
const (
	CodeSuccess           = 0
	CodeParamError        = 1000
	CodeAuthFailed        = 1001
	CodePermissionDenied  = 1002
	CodeResourceNotFound  = 1003
	CodeQuotaExceeded     = 1004
	CodeSubscriptionState = 1005
	CodeServerError       = 5000
)

var codeMessages = map[int]string{
	CodeSuccess:           "success",
	CodeParamError:        "invalid request",
	CodeAuthFailed:        "authentication failed",
	CodePermissionDenied:  "permission denied",
	CodeResourceNotFound:  "resource not found",
	CodeQuotaExceeded:     "quota exceeded",
	CodeSubscriptionState: "invalid subscription state",
	CodeServerError:       "internal server error",
}

// Response is the unified envelope for every endpoint.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageData is the paginated payload shape.
type PageData struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Items    interface{} `json:"items"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

func SuccessPage(c *gin.Context, total int64, page, pageSize int, items interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data: PageData{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			Items:    items,
		},
	})
}

func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData carries a structured payload alongside the error, used by the
// entitlement check so denials still report current/max counts.
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

func AuthError(c *gin.Context, message string) {
	Error(c, CodeAuthFailed, message)
}

func PermissionError(c *gin.Context, message string) {
	Error(c, CodePermissionDenied, message)
}

func NotFoundError(c *gin.Context, message string) {
	Error(c, CodeResourceNotFound, message)
}

func QuotaError(c *gin.Context, message string) {
	Error(c, CodeQuotaExceeded, message)
}

// SubscriptionStateError covers lifecycle preconditions: cancel on a
// non-active row, reactivate on a non-suspended one, unknown plan type.
func SubscriptionStateError(c *gin.Context, message string) {
	Error(c, CodeSubscriptionState, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}
