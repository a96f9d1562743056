// Package base 提供通用的 Repository 基类
package base

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository 通用仓库基类，实体以不透明字符串为主键
type Repository[T any] struct {
	db *gorm.DB
}

// NewRepository 创建新的通用仓库
func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// DB 返回底层数据库连接
func (r *Repository[T]) DB() *gorm.DB {
	return r.db
}

// Create 创建记录
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// CreateWithTx 在事务中创建记录
func (r *Repository[T]) CreateWithTx(tx *gorm.DB, entity *T) error {
	return tx.Create(entity).Error
}

// GetByID 通过 ID 获取记录，未命中返回 (nil, nil)
func (r *Repository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// Delete 删除记录
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	var entity T
	return r.db.WithContext(ctx).Delete(&entity, "id = ?", id).Error
}

// ListByUser 获取某用户的记录，新在前
func (r *Repository[T]) ListByUser(ctx context.Context, userID string) ([]*T, error) {
	var entities []*T
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&entities).Error
	return entities, err
}

// CountByUser 获取某用户的记录总数
func (r *Repository[T]) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Transaction 执行事务
func (r *Repository[T]) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
