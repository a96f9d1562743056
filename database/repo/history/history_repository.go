package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/aivory/fitstudio/database/models"
	"gorm.io/gorm"
)

// Repository 历史条目仓库 - 封装历史条目及其图片关联的数据库操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的历史条目仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithImages 原子创建历史条目及其全部关联行。
// 任意一条关联插入失败（如重复图片）则整体回滚，不会留下部分关联的条目。
func (r *Repository) CreateWithImages(ctx context.Context, entry *models.HistoryEntry, orderedImageIDs []string) error {
	if len(orderedImageIDs) == 0 {
		return errors.New("history entry requires at least one image")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create history entry: %w", err)
		}

		associations := make([]models.HistoryImage, len(orderedImageIDs))
		for i, imageID := range orderedImageIDs {
			associations[i] = models.HistoryImage{
				HistoryID: entry.ID,
				ImageID:   imageID,
				SortOrder: i,
			}
		}

		if err := tx.Create(&associations).Error; err != nil {
			return fmt.Errorf("failed to create history associations: %w", err)
		}
		return nil
	})
}

// GetByID 通过 ID 获取历史条目，未命中返回 (nil, nil)
func (r *Repository) GetByID(ctx context.Context, id string) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListByUser 获取用户的历史条目，新在前
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*models.HistoryEntry, error) {
	var entries []*models.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

// GetOrderedImages 获取条目关联的图片，按槽位顺序排列
func (r *Repository) GetOrderedImages(ctx context.Context, historyID string) ([]*models.Image, error) {
	var images []*models.Image
	err := r.db.WithContext(ctx).
		Table("images").
		Select("images.*").
		Joins("JOIN history_images ON history_images.image_id = images.id").
		Where("history_images.history_id = ?", historyID).
		Order("history_images.sort_order asc").
		Find(&images).Error
	return images, err
}

// Delete 删除历史条目。关联行级联删除，图片本身保留。
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.HistoryEntry{}, "id = ?", id).Error
}
