package generation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aivory/fitstudio/apperrors"
	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/internal/services/credits"
	"github.com/aivory/fitstudio/internal/services/media"
	"github.com/aivory/fitstudio/utils/validator"
)

// ProgressFunc 每个槽位成功后的进度回调
type ProgressFunc func(slot, total int, image *models.Image)

// Result 一次生成请求的结算结果
type Result struct {
	Images    []*models.Image `json:"images"`
	HistoryID string          `json:"historyId"`
	Requested int             `json:"requested"`
	Succeeded int             `json:"succeeded"`
}

// Service 生成编排服务
type Service struct {
	editor        Editor
	mediaSvc      *media.Service
	creditsSvc    *credits.Service
	prompts       *PromptPool
	maxImageBytes int
}

// NewService 创建生成编排服务。maxImageBytes 不为正时使用默认上限。
func NewService(editor Editor, mediaSvc *media.Service, creditsSvc *credits.Service, maxImageBytes int) *Service {
	if maxImageBytes <= 0 {
		maxImageBytes = validator.DefaultMaxImageBytes
	}
	return &Service{
		editor:        editor,
		mediaSvc:      mediaSvc,
		creditsSvc:    creditsSvc,
		prompts:       NewPromptPool(),
		maxImageBytes: maxImageBytes,
	}
}

// Generate 执行一次完整的生成请求：
// 先按请求数量预扣积分，然后逐槽位调用上游，成功的产出立即落库；
// 单个槽位失败只记录日志不中断其余槽位。结算时退还失败槽位的积分，
// 至少一张成功则把产出归档为一个历史条目；全部失败退还全部积分并
// 返回 apperrors.ErrTotalGenerationFailure。产出顺序与槽位顺序一致。
func (s *Service) Generate(ctx context.Context, userID, sourceImage string, count int, onProgress ProgressFunc) (*Result, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: image count must be at least 1", apperrors.ErrInvalidAmount)
	}

	sourceB64, err := validator.CanonicalBase64(sourceImage, s.maxImageBytes)
	if err != nil {
		return nil, err
	}

	// 预扣全部槽位的积分作为保证金
	if _, err := s.creditsSvc.Deduct(ctx, userID, count, "generation"); err != nil {
		return nil, err
	}

	generated := make([]*models.Image, 0, count)
	for slot := 1; slot <= count; slot++ {
		// 槽位之间响应取消，已产出的部分照常结算
		if ctx.Err() != nil {
			log.Printf("Generation cancelled after slot %d/%d for user %s", slot-1, count, userID)
			break
		}

		edit, err := s.editor.Edit(ctx, s.prompts.Next(), sourceB64)
		if err != nil {
			log.Printf("Generation slot %d/%d failed for user %s: %v", slot, count, userID, err)
			continue
		}

		img, err := s.mediaSvc.SaveImage(context.WithoutCancel(ctx), userID, edit.Base64Data, edit.MimeType, false)
		if err != nil {
			log.Printf("Failed to persist generation slot %d/%d for user %s: %v", slot, count, userID, err)
			continue
		}

		generated = append(generated, img)
		if onProgress != nil {
			onProgress(slot, count, img)
		}
	}

	return s.settle(context.WithoutCancel(ctx), userID, count, generated, ctx.Err())
}

// settle 退还失败槽位的积分并归档产出。
// cancelled 为调用方上下文的终止错误，没有产出时它取代全失败错误，
// 区分调用方主动取消和上游全部失败。
func (s *Service) settle(ctx context.Context, userID string, requested int, generated []*models.Image, cancelled error) (*Result, error) {
	succeeded := len(generated)
	failed := requested - succeeded

	if succeeded == 0 {
		if _, err := s.creditsSvc.Refund(ctx, userID, requested, "generation failed"); err != nil {
			log.Printf("Failed to refund user %s after total generation failure: %v", userID, err)
		}
		if cancelled != nil {
			return nil, cancelled
		}
		return nil, apperrors.ErrTotalGenerationFailure
	}

	if failed > 0 {
		if _, err := s.creditsSvc.Refund(ctx, userID, failed, "partial generation failure"); err != nil {
			log.Printf("Failed to refund %d failed slots for user %s: %v", failed, userID, err)
		}
	}

	imageIDs := make([]string, len(generated))
	for i, img := range generated {
		imageIDs[i] = img.ID
	}

	now := time.Now()
	entry, err := s.mediaSvc.RecordHistory(ctx, userID, now.Format("2006-01-02"), now.Format("15:04"), imageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to archive generation result: %w", err)
	}

	return &Result{
		Images:    generated,
		HistoryID: entry.ID,
		Requested: requested,
		Succeeded: succeeded,
	}, nil
}
