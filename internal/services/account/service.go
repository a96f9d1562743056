// Package account 负责账号的注册、登录、资料维护和注销。
package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aivory/fitstudio/apperrors"
	"github.com/aivory/fitstudio/cache"
	"github.com/aivory/fitstudio/database"
	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/database/repo/users"
	cryptoutil "github.com/aivory/fitstudio/utils/crypto"
	"github.com/aivory/fitstudio/utils/idgen"
	"gorm.io/gorm"
)

// Service 账号服务
type Service struct {
	provider    *database.Provider
	usersRepo   *users.Repository
	cacheHelper *cache.Helper

	// signupBonus 新账号的初始积分
	signupBonus int
}

// NewService 创建账号服务
func NewService(provider *database.Provider, usersRepo *users.Repository, cacheHelper *cache.Helper, signupBonus int) *Service {
	return &Service{
		provider:    provider,
		usersRepo:   usersRepo,
		cacheHelper: cacheHelper,
		signupBonus: signupBonus,
	}
}

// SignUp 注册新账号。邮箱冲突返回 apperrors.ErrDuplicateEmail。
// 初始积分和对应的赠送流水与账号创建在同一个事务内落库。
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password are required")
	}

	hash, err := cryptoutil.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           idgen.New(idgen.PrefixUser),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Credits:      s.signupBonus,
	}

	err = s.provider.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := s.usersRepo.CreateWithTx(tx, user); err != nil {
			return err
		}
		if s.signupBonus > 0 {
			txn := &models.CreditTransaction{
				ID:          idgen.New(idgen.PrefixTransaction),
				UserID:      user.ID,
				Amount:      s.signupBonus,
				Type:        models.TransactionPurchase,
				Description: "signup bonus",
			}
			if err := tx.Create(txn).Error; err != nil {
				return fmt.Errorf("failed to record signup bonus: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("User registered: %s", user.ID)
	return user, nil
}

// SignIn 校验邮箱和密码。邮箱不存在与密码错误返回同一个
// apperrors.ErrInvalidCredentials，不泄露账号是否存在。
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.usersRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !cryptoutil.VerifyPassword(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser 获取用户记录，缓存优先。未命中返回 (nil, nil)。
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	if cached, err := s.cacheHelper.GetUser(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	user, err := s.usersRepo.GetByID(ctx, id)
	if err != nil || user == nil {
		return user, err
	}

	if err := s.cacheHelper.CacheUser(ctx, user); err != nil {
		log.Printf("Failed to cache user %s: %v", id, err)
	}
	return user, nil
}

// ProfileUpdate 资料更新的可选字段，nil 表示不触碰
type ProfileUpdate struct {
	Name           *string
	Email          *string
	Password       *string
	ProfileImageID *string
}

// UpdateProfile 部分更新用户资料。密码更新会重新散列；
// 新邮箱冲突返回 apperrors.ErrDuplicateEmail。返回更新后的用户。
func (s *Service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	fields := make(map[string]interface{})
	if update.Name != nil {
		fields["name"] = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		fields["email"] = strings.TrimSpace(strings.ToLower(*update.Email))
	}
	if update.ProfileImageID != nil {
		fields["profile_image_id"] = *update.ProfileImageID
	}
	if update.Password != nil {
		hash, err := cryptoutil.HashPassword(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		fields["password_hash"] = hash
	}

	user, err := s.usersRepo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", id)
	}

	s.invalidate(ctx, id)
	return user, nil
}

// DeleteAccount 注销账号。图片、历史、流水由外键级联一并删除。
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if err := s.usersRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	log.Printf("User deleted: %s", id)
	return nil
}

// invalidate 资料变动后使用户缓存失效，失败只记录日志
func (s *Service) invalidate(ctx context.Context, id string) {
	if err := s.cacheHelper.InvalidateUser(ctx, id); err != nil {
		log.Printf("Failed to invalidate user cache for %s: %v", id, err)
	}
}
