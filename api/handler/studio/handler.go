// Package studio 提供生成请求、历史记录和图片库的 HTTP 接口。
package studio

import (
	"net/http"

	"github.com/aivory/fitstudio/api/common"
	"github.com/aivory/fitstudio/api/middleware"
	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/internal/services/generation"
	"github.com/aivory/fitstudio/internal/services/media"
	"github.com/gin-gonic/gin"
)

// Handler 工作室处理器
type Handler struct {
	generationSvc *generation.Service
	mediaSvc      *media.Service
}

// NewHandler 创建工作室处理器
func NewHandler(generationSvc *generation.Service, mediaSvc *media.Service) *Handler {
	return &Handler{generationSvc: generationSvc, mediaSvc: mediaSvc}
}

type generateRequest struct {
	// SourceImage 源照片，base64 或 data-URI
	SourceImage string `json:"sourceImage" binding:"required"`
	Count       int    `json:"count" binding:"required,min=1,max=8"`
}

type imageView struct {
	ID         string `json:"id"`
	Payload    string `json:"payload"`
	MimeType   string `json:"mimeType"`
	IsOriginal bool   `json:"isOriginal"`
	CreatedAt  int64  `json:"createdAt"`
}

type historyView struct {
	ID         string      `json:"id"`
	Date       string      `json:"date"`
	Time       string      `json:"time"`
	ImageCount int         `json:"imageCount"`
	Thumbnail  string      `json:"thumbnail"`
	Images     []imageView `json:"images"`
}

func toImageViews(imgs []*models.Image) []imageView {
	views := make([]imageView, len(imgs))
	for i, img := range imgs {
		views[i] = imageView{
			ID:         img.ID,
			Payload:    img.Payload,
			MimeType:   img.MimeType,
			IsOriginal: img.IsOriginal,
			CreatedAt:  img.CreatedAt.Unix(),
		}
	}
	return views
}

// Generate 发起一次生成请求，同步等待全部槽位完成
func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.generationSvc.Generate(c.Request.Context(), middleware.CurrentUserID(c), req.SourceImage, req.Count, nil)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"historyId": result.HistoryID,
		"requested": result.Requested,
		"succeeded": result.Succeeded,
		"images":    toImageViews(result.Images),
	})
}

// ListHistory 返回历史条目，新在前，缩略图和有序图片已装配
func (h *Handler) ListHistory(c *gin.Context) {
	entries, err := h.mediaSvc.LoadHistory(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	views := make([]historyView, len(entries))
	for i, entry := range entries {
		views[i] = historyView{
			ID:         entry.ID,
			Date:       entry.Date,
			Time:       entry.Time,
			ImageCount: entry.ImageCount,
			Thumbnail:  entry.Thumbnail,
			Images:     toImageViews(entry.Images),
		}
	}
	common.RespondSuccess(c, gin.H{"history": views})
}

// HistoryImages 返回条目关联的图片，按槽位顺序
func (h *Handler) HistoryImages(c *gin.Context) {
	imgs, err := h.mediaSvc.HistoryImages(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"images": toImageViews(imgs)})
}

// DeleteHistory 删除当前用户的历史条目
func (h *Handler) DeleteHistory(c *gin.Context) {
	err := h.mediaSvc.DeleteHistory(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		common.RespondError(c, http.StatusNotFound, err.Error())
		return
	}
	common.RespondSuccessMessage(c, "history entry deleted", nil)
}

// ListImages 返回当前用户的全部图片，新在前
func (h *Handler) ListImages(c *gin.Context) {
	imgs, err := h.mediaSvc.ListImages(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"images": toImageViews(imgs)})
}
