package cache

import (
	"context"
	"time"

	"github.com/aivory/fitstudio/database/models"
)

// Helper 用户记录缓存辅助，绑定一个 Provider 和统一的 TTL
type Helper struct {
	provider Provider
	ttl      time.Duration
}

// NewHelper 创建缓存辅助。provider 为 nil 时所有操作为空操作。
func NewHelper(provider Provider, ttl time.Duration) *Helper {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Helper{provider: provider, ttl: ttl}
}

func userKey(id string) string {
	return "user:" + id
}

// CacheUser 缓存用户记录
func (h *Helper) CacheUser(ctx context.Context, user *models.User) error {
	if h == nil || h.provider == nil || user == nil {
		return nil
	}
	return h.provider.Set(ctx, userKey(user.ID), user, h.ttl)
}

// GetUser 从缓存读取用户记录，未命中返回 (nil, nil)
func (h *Helper) GetUser(ctx context.Context, id string) (*models.User, error) {
	if h == nil || h.provider == nil {
		return nil, nil
	}

	var user models.User
	err := h.provider.Get(ctx, userKey(id), &user)
	if err != nil {
		if IsCacheMiss(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// InvalidateUser 在任意用户数据变动（资料、积分）后使缓存失效
func (h *Helper) InvalidateUser(ctx context.Context, id string) error {
	if h == nil || h.provider == nil {
		return nil
	}
	return h.provider.Delete(ctx, userKey(id))
}
