// Package profile 提供当前用户资料的查询和维护接口。
package profile

import (
	"net/http"

	"github.com/aivory/fitstudio/api/common"
	"github.com/aivory/fitstudio/api/middleware"
	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/internal/services/account"
	"github.com/aivory/fitstudio/internal/services/media"
	"github.com/gin-gonic/gin"
)

// Handler 资料处理器
type Handler struct {
	accountSvc *account.Service
	mediaSvc   *media.Service
}

// NewHandler 创建资料处理器
func NewHandler(accountSvc *account.Service, mediaSvc *media.Service) *Handler {
	return &Handler{accountSvc: accountSvc, mediaSvc: mediaSvc}
}

type profileView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Credits      int    `json:"credits"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type updateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`

	// ProfileImage 新头像的 base64 或 data-URI 负载
	ProfileImage *string `json:"profileImage"`
}

// Get 返回当前用户的资料
func (h *Handler) Get(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	user, err := h.accountSvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	if user == nil {
		common.RespondError(c, http.StatusNotFound, "user not found")
		return
	}

	h.respondWithProfile(c, user)
}

// Update 部分更新当前用户的资料。
// 携带头像负载时先落库为原图，再把引用写到资料上。
func (h *Handler) Update(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	update := account.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}

	if req.ProfileImage != nil {
		img, err := h.mediaSvc.SaveImage(c.Request.Context(), userID, *req.ProfileImage, "", true)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		update.ProfileImageID = &img.ID
	}

	user, err := h.accountSvc.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.respondWithProfile(c, user)
}

// Delete 注销当前账号
func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	if err := h.accountSvc.DeleteAccount(c.Request.Context(), userID); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "account deleted", nil)
}

func (h *Handler) respondWithProfile(c *gin.Context, user *models.User) {
	view := profileView{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Credits: user.Credits,
	}

	if user.ProfileImageID != "" {
		img, err := h.mediaSvc.GetImage(c.Request.Context(), user.ProfileImageID)
		if err == nil && img != nil {
			view.ProfileImage = img.Payload
		}
	}

	common.RespondSuccess(c, view)
}
