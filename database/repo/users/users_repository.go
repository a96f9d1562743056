package users

import (
	"context"
	"errors"
	"time"

	"github.com/aivory/fitstudio/apperrors"
	"github.com/aivory/fitstudio/database"
	"github.com/aivory/fitstudio/database/models"
	"gorm.io/gorm"
)

// Repository 用户仓库 - 封装所有用户相关的数据库操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的用户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 创建用户，邮箱冲突返回 apperrors.ErrDuplicateEmail
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if database.IsDuplicateKey(err) {
			return apperrors.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// CreateWithTx 在事务中创建用户，邮箱冲突返回 apperrors.ErrDuplicateEmail
func (r *Repository) CreateWithTx(tx *gorm.DB, user *models.User) error {
	err := tx.Create(user).Error
	if err != nil {
		if database.IsDuplicateKey(err) {
			return apperrors.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByID 通过 ID 获取用户，未命中返回 (nil, nil)
func (r *Repository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail 通过邮箱获取用户，未命中返回 (nil, nil)
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateFields 部分更新：只触碰给定字段，总是刷新 updated_at。
// 返回更新后的用户，用户不存在返回 (nil, nil)。
func (r *Repository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		if database.IsDuplicateKey(result.Error) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete 删除用户。子表（图片、历史、关联、流水）由外键级联一并删除。
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

// IncrementCredits 在事务中无条件增加余额，返回受影响行数
func (r *Repository) IncrementCredits(tx *gorm.DB, id string, amount int) (int64, error) {
	result := tx.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"credits":    gorm.Expr("credits + ?", amount),
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// DecrementCreditsIfEnough 在事务中条件扣减余额：
// 单条 UPDATE 附带 credits >= amount 条件，受影响行数为 0 即余额不足，
// 避免读取-再写入的丢失更新竞态。
func (r *Repository) DecrementCreditsIfEnough(tx *gorm.DB, id string, amount int) (int64, error) {
	result := tx.Model(&models.User{}).
		Where("id = ? AND credits >= ?", id, amount).
		Updates(map[string]interface{}{
			"credits":    gorm.Expr("credits - ?", amount),
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
