package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aivory/fitstudio/api"
	"github.com/aivory/fitstudio/cache"
	"github.com/aivory/fitstudio/database"
	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/database/repo/users"
	"github.com/aivory/fitstudio/internal/services/account"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRouter 初始化测试环境
func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	require.NoError(t, api.TokenInit("test-secret-key-at-least-32-characters-long", "30m", "168h"))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CreditTransaction{}))

	provider := database.NewProvider(db)
	accountSvc := account.NewService(provider, users.NewRepository(db), cache.NewHelper(nil, 0), 10)
	handler := NewHandler(accountSvc)

	router := gin.New()
	router.POST("/signup", handler.Signup)
	router.POST("/login", handler.Login)
	router.POST("/refresh", handler.Refresh)
	router.POST("/logout", handler.Logout)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func tokensFrom(t *testing.T, w *httptest.ResponseRecorder) (accessToken, refreshToken string) {
	var resp struct {
		Data struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
			UserID       string `json:"userId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.AccessToken, resp.Data.RefreshToken
}

func TestSignupAndLogin(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(t, router, "/signup", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	access, refresh := tokensFrom(t, w)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	// 下发的访问令牌能通过校验
	userID, _, err := api.ParseTyped(access, api.TokenTypeAccess)
	require.NoError(t, err)
	assert.NotEmpty(t, userID)

	w = postJSON(t, router, "/login", gin.H{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	router := setupRouter(t)

	payload := gin.H{"name": "Alice", "email": "alice@example.com", "password": "secret123"}
	require.Equal(t, http.StatusOK, postJSON(t, router, "/signup", payload).Code)

	w := postJSON(t, router, "/signup", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignup_Validation(t *testing.T) {
	router := setupRouter(t)

	// 密码太短
	w := postJSON(t, router, "/signup", gin.H{"name": "Alice", "email": "alice@example.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 邮箱格式非法
	w = postJSON(t, router, "/signup", gin.H{"name": "Alice", "email": "not-an-email", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	router := setupRouter(t)

	postJSON(t, router, "/signup", gin.H{"name": "Alice", "email": "alice@example.com", "password": "secret123"})

	w := postJSON(t, router, "/login", gin.H{"email": "alice@example.com", "password": "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 不存在的账号返回同样的状态码
	w = postJSON(t, router, "/login", gin.H{"email": "nobody@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(t, router, "/signup", gin.H{"name": "Alice", "email": "alice@example.com", "password": "secret123"})
	access, refresh := tokensFrom(t, w)

	w = postJSON(t, router, "/refresh", gin.H{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	newAccess, _ := tokensFrom(t, w)
	assert.NotEmpty(t, newAccess)

	// 访问令牌不能充当刷新令牌
	w = postJSON(t, router, "/refresh", gin.H{"refreshToken": access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(t, router, "/logout", gin.H{})
	assert.Equal(t, http.StatusOK, w.Code)
}
