// Package auth 提供注册、登录和令牌刷新的 HTTP 接口。
package auth

import (
	"net/http"

	"github.com/aivory/fitstudio/api"
	"github.com/aivory/fitstudio/api/common"
	"github.com/aivory/fitstudio/internal/services/account"
	"github.com/gin-gonic/gin"
)

// Handler 认证处理器
type Handler struct {
	accountSvc *account.Service
}

// NewHandler 创建认证处理器
func NewHandler(accountSvc *account.Service) *Handler {
	return &Handler{accountSvc: accountSvc}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
	UserID       string `json:"userId"`
}

// Signup 注册新账号并直接下发令牌
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.accountSvc.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.respondWithTokens(c, user.ID, user.Email)
}

// Login 校验凭据并下发令牌
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.accountSvc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.respondWithTokens(c, user.ID, user.Email)
}

// Refresh 用刷新令牌换取新的令牌对
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	userID, email, err := api.ParseTyped(req.RefreshToken, api.TokenTypeRefresh)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	// 账号可能已注销
	user, err := h.accountSvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	if user == nil {
		common.RespondError(c, http.StatusUnauthorized, "account no longer exists")
		return
	}

	h.respondWithTokens(c, userID, email)
}

// Logout 登出。令牌无服务端状态，客户端丢弃即可。
func (h *Handler) Logout(c *gin.Context) {
	common.RespondSuccessMessage(c, "logged out", nil)
}

func (h *Handler) respondWithTokens(c *gin.Context, userID, email string) {
	access, refresh, expiry, err := api.GenerateTokens(userID, email)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "failed to issue tokens")
		return
	}

	common.RespondSuccess(c, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiry.Unix(),
		UserID:       userID,
	})
}
