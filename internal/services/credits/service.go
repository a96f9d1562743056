// Package credits 维护用户积分余额和与之对应的只追加流水。
// 每次余额变动和流水写入在同一个数据库事务内完成。
package credits

import (
	"context"
	"fmt"
	"log"

	"github.com/aivory/fitstudio/apperrors"
	"github.com/aivory/fitstudio/cache"
	"github.com/aivory/fitstudio/database"
	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/database/repo/transactions"
	"github.com/aivory/fitstudio/database/repo/users"
	"github.com/aivory/fitstudio/utils/idgen"
	"gorm.io/gorm"
)

// Service 积分服务
type Service struct {
	provider    *database.Provider
	usersRepo   *users.Repository
	txnsRepo    *transactions.Repository
	cacheHelper *cache.Helper
}

// NewService 创建积分服务
func NewService(provider *database.Provider, usersRepo *users.Repository, txnsRepo *transactions.Repository, cacheHelper *cache.Helper) *Service {
	return &Service{
		provider:    provider,
		usersRepo:   usersRepo,
		txnsRepo:    txnsRepo,
		cacheHelper: cacheHelper,
	}
}

// Add 充值积分，数额必须为正。返回新余额。
func (s *Service) Add(ctx context.Context, userID string, amount int, description string) (int, error) {
	return s.credit(ctx, userID, amount, models.TransactionPurchase, description)
}

// Refund 退还积分，数额必须为正。返回新余额。
func (s *Service) Refund(ctx context.Context, userID string, amount int, reason string) (int, error) {
	return s.credit(ctx, userID, amount, models.TransactionRefund, reason)
}

// credit 增加余额并写入流水
func (s *Service) credit(ctx context.Context, userID string, amount int, txnType, description string) (int, error) {
	if amount <= 0 {
		return 0, apperrors.ErrInvalidAmount
	}

	var balance int
	err := s.provider.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		affected, err := s.usersRepo.IncrementCredits(tx, userID, amount)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("user %s not found", userID)
		}

		txn := &models.CreditTransaction{
			ID:          idgen.New(idgen.PrefixTransaction),
			UserID:      userID,
			Amount:      amount,
			Type:        txnType,
			Description: description,
		}
		if err := s.txnsRepo.CreateWithTx(tx, txn); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).Select("credits").Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, userID)
	return balance, nil
}

// Deduct 扣减积分，数额必须为正。
// 余额不足返回 apperrors.ErrInsufficientCredits 且不发生任何变动；
// 条件更新保证并发扣减不会把余额扣成负数。返回新余额。
func (s *Service) Deduct(ctx context.Context, userID string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, apperrors.ErrInvalidAmount
	}

	var balance int
	err := s.provider.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		affected, err := s.usersRepo.DecrementCreditsIfEnough(tx, userID, amount)
		if err != nil {
			return err
		}
		if affected == 0 {
			// 区分用户不存在和余额不足
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("user %s not found", userID)
			}
			return apperrors.ErrInsufficientCredits
		}

		txn := &models.CreditTransaction{
			ID:          idgen.New(idgen.PrefixTransaction),
			UserID:      userID,
			Amount:      amount,
			Type:        models.TransactionDeduction,
			Description: reason,
		}
		if err := s.txnsRepo.CreateWithTx(tx, txn); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).Select("credits").Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, userID)
	return balance, nil
}

// Balance 查询余额。未知用户按"尚无账户"处理，返回 0 而不是报错。
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	user, err := s.usersRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, nil
	}
	return user.Credits, nil
}

// List 获取用户的积分流水，新在前
func (s *Service) List(ctx context.Context, userID string) ([]*models.CreditTransaction, error) {
	return s.txnsRepo.ListByUser(ctx, userID)
}

// invalidate 余额变动后使用户缓存失效，失败只记录日志
func (s *Service) invalidate(ctx context.Context, userID string) {
	if err := s.cacheHelper.InvalidateUser(ctx, userID); err != nil {
		log.Printf("Failed to invalidate user cache for %s: %v", userID, err)
	}
}
