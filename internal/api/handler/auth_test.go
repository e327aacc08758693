package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/redago/redago-server/config"
	"github.com/redago/redago-server/internal/api/middleware"
	"github.com/redago/redago-server/internal/model/dto"
	"github.com/redago/redago-server/internal/pkg/response"
	"github.com/redago/redago-server/internal/repository"
	"github.com/redago/redago-server/internal/service"
	"github.com/redago/redago-server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key",
			ExpireHours: 24,
		},
	}
}

// asUser injects the authenticated user ID the way the auth middleware does.
func asUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func setupAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, testConfig())
	return NewAuthHandler(authService), db
}

func TestAuthHandler_Register_Success(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Password: "password123",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)

	req := dto.RegisterRequest{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Password: "password123",
	}

	w := performRequest(router, "POST", "/register", req)
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/register", req)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Name:     "Maria Silva",
		Email:    "not-an-email",
		Password: "password123",
	})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Password: "password123",
	})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "maria@example.com",
		Password: "password123",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Password: "password123",
	})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "maria@example.com",
		Password: "wrong-password",
	})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuthHandler_Profile(t *testing.T) {
	handler, db := setupAuthHandler(t)

	user := testutil.TestUser(t, db)

	router := gin.New()
	router.GET("/profile", asUser(user.ID), handler.Profile)

	w := performRequest(router, "GET", "/profile", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, user.Email, data["email"])
}
