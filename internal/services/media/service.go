// Package media 负责图片的持久化与历史条目的归档和重建。
package media

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/database/repo/history"
	"github.com/aivory/fitstudio/database/repo/images"
	"github.com/aivory/fitstudio/utils/idgen"
	"github.com/aivory/fitstudio/utils/validator"
	"golang.org/x/sync/errgroup"
)

// hydrateConcurrency 历史列表缩略图装配的并发上限
const hydrateConcurrency = 4

// Service 媒体服务
type Service struct {
	imagesRepo  *images.Repository
	historyRepo *history.Repository
}

// NewService 创建媒体服务
func NewService(imagesRepo *images.Repository, historyRepo *history.Repository) *Service {
	return &Service{
		imagesRepo:  imagesRepo,
		historyRepo: historyRepo,
	}
}

// HistoryView 面向展示的历史条目，缩略图和全部图片负载已装配
type HistoryView struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	ImageCount int    `json:"imageCount"`

	// Thumbnail 缩略图的 data-URI，图片缺失时为空字符串
	Thumbnail string `json:"thumbnail"`

	// Images 条目关联的图片，按槽位顺序排列
	Images []*models.Image `json:"images"`
}

// SaveImage 规范化并持久化一张图片，存储形式统一为 data-URI。
// 输入可以是 data-URI 或纯 base64；mimeType 为空时优先取 data-URI
// 声明的类型，仍为空则回退到默认值。
func (s *Service) SaveImage(ctx context.Context, userID, payload, mimeType string, isOriginal bool) (*models.Image, error) {
	b64, declaredMime := validator.StripDataURI(payload)
	if mimeType == "" {
		mimeType = declaredMime
	}
	if mimeType == "" {
		mimeType = validator.DefaultMimeType
	}

	b64, err := validator.CanonicalBase64(b64, validator.DefaultMaxImageBytes)
	if err != nil {
		return nil, err
	}

	img := &models.Image{
		ID:         idgen.New(idgen.PrefixImage),
		UserID:     userID,
		Payload:    validator.BuildDataURI(b64, mimeType),
		MimeType:   mimeType,
		IsOriginal: isOriginal,
	}
	if err := s.imagesRepo.Create(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	return img, nil
}

// GetImage 通过 ID 获取图片，未命中返回 (nil, nil)
func (s *Service) GetImage(ctx context.Context, id string) (*models.Image, error) {
	return s.imagesRepo.GetByID(ctx, id)
}

// ListImages 获取用户的全部图片，新在前
func (s *Service) ListImages(ctx context.Context, userID string) ([]*models.Image, error) {
	return s.imagesRepo.ListByUser(ctx, userID)
}

// RecordHistory 把一组有序图片归档为一个历史条目。
// 列表不能为空，首张图片充当缩略图；条目和全部关联行原子写入。
func (s *Service) RecordHistory(ctx context.Context, userID, date, timeStr string, orderedImageIDs []string) (*models.HistoryEntry, error) {
	if len(orderedImageIDs) == 0 {
		return nil, errors.New("history entry requires at least one image")
	}

	entry := &models.HistoryEntry{
		ID:               idgen.New(idgen.PrefixHistory),
		UserID:           userID,
		Date:             date,
		Time:             timeStr,
		ImageCount:       len(orderedImageIDs),
		ThumbnailImageID: orderedImageIDs[0],
	}
	if err := s.historyRepo.CreateWithImages(ctx, entry, orderedImageIDs); err != nil {
		return nil, fmt.Errorf("failed to record history: %w", err)
	}
	return entry, nil
}

// LoadHistory 获取用户的历史条目，新在前。每个条目装配缩略图和
// 按槽位顺序排列的全部图片负载。缩略图图片已不存在时对应字段为空
// 字符串，不影响其余条目。
func (s *Service) LoadHistory(ctx context.Context, userID string) ([]*HistoryView, error) {
	entries, err := s.historyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*HistoryView, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			imgs, err := s.historyRepo.GetOrderedImages(gctx, entry.ID)
			if err != nil {
				return err
			}
			view := &HistoryView{
				ID:         entry.ID,
				Date:       entry.Date,
				Time:       entry.Time,
				ImageCount: entry.ImageCount,
				Images:     imgs,
			}
			// 缩略图被删除时关联行已级联清除，列表中找不到
			for _, img := range imgs {
				if img.ID == entry.ThumbnailImageID {
					view.Thumbnail = img.Payload
					break
				}
			}
			if view.Thumbnail == "" {
				log.Printf("History %s references missing thumbnail %s", entry.ID, entry.ThumbnailImageID)
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// HistoryImages 获取条目关联的图片，按槽位顺序排列
func (s *Service) HistoryImages(ctx context.Context, historyID string) ([]*models.Image, error) {
	return s.historyRepo.GetOrderedImages(ctx, historyID)
}

// DeleteHistory 删除用户自己的历史条目。关联行级联删除，图片保留。
// 条目不存在或不属于该用户时返回错误。
func (s *Service) DeleteHistory(ctx context.Context, userID, historyID string) error {
	entry, err := s.historyRepo.GetByID(ctx, historyID)
	if err != nil {
		return err
	}
	if entry == nil || entry.UserID != userID {
		return fmt.Errorf("history entry %s not found", historyID)
	}
	return s.historyRepo.Delete(ctx, historyID)
}
