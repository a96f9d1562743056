package credits

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aivory/fitstudio/apperrors"
	"github.com/aivory/fitstudio/cache"
	"github.com/aivory/fitstudio/database"
	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/database/repo/transactions"
	"github.com/aivory/fitstudio/database/repo/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupService 创建基于内存数据库的积分服务
func setupService(t *testing.T) (*Service, *gorm.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CreditTransaction{}))

	provider := database.NewProvider(db)
	svc := NewService(provider, users.NewRepository(db), transactions.NewRepository(db), cache.NewHelper(nil, 0))
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, id string, credits int) {
	require.NoError(t, db.Create(&models.User{
		ID:           id,
		Name:         "Test User",
		Email:        id + "@example.com",
		PasswordHash: "salt:hash",
		Credits:      credits,
	}).Error)
}

func TestService_Scenario(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	// 注册后初始余额 10
	seedUser(t, db, "usr_alice", 10)

	// 余额不足的扣减失败且余额不变
	_, err := svc.Deduct(ctx, "usr_alice", 15, "generation")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCredits)

	balance, err := svc.Balance(ctx, "usr_alice")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	// 充值 50 → 60
	balance, err = svc.Add(ctx, "usr_alice", 50, "credit pack")
	require.NoError(t, err)
	assert.Equal(t, 60, balance)

	// 扣减 15 → 45
	balance, err = svc.Deduct(ctx, "usr_alice", 15, "generation")
	require.NoError(t, err)
	assert.Equal(t, 45, balance)

	// 恰好一条数额 15 的 deduction 流水
	var deductions []models.CreditTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", "usr_alice", models.TransactionDeduction).Find(&deductions).Error)
	require.Len(t, deductions, 1)
	assert.Equal(t, 15, deductions[0].Amount)
	assert.Equal(t, "generation", deductions[0].Description)
}

func TestService_Deduct_InvalidAmount(t *testing.T) {
	svc, db := setupService(t)
	seedUser(t, db, "usr_1", 10)

	_, err := svc.Deduct(context.Background(), "usr_1", 0, "noop")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = svc.Deduct(context.Background(), "usr_1", -3, "noop")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = svc.Add(context.Background(), "usr_1", 0, "noop")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestService_Deduct_UnknownUser(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Deduct(context.Background(), "usr_missing", 5, "generation")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInsufficientCredits)
}

func TestService_Balance_UnknownUserIsZero(t *testing.T) {
	svc, _ := setupService(t)

	balance, err := svc.Balance(context.Background(), "usr_missing")
	assert.NoError(t, err)
	assert.Zero(t, balance)
}

func TestService_Deduct_NeverNegative(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	seedUser(t, db, "usr_1", 10)

	// 并发扣减合计会透支时，只允许部分成功，余额不为负
	var wg sync.WaitGroup
	failures := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Deduct(ctx, "usr_1", 4, "race"); err != nil {
				failures <- err
			}
		}()
	}
	wg.Wait()
	close(failures)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "usr_1").Error)
	assert.GreaterOrEqual(t, user.Credits, 0)

	// 成功的扣减数与余额一致：10 - 4*成功数 = 余额
	succeeded := 4 - len(failures)
	assert.Equal(t, 10-4*succeeded, user.Credits)
	for err := range failures {
		assert.ErrorIs(t, err, apperrors.ErrInsufficientCredits)
	}
}

func TestService_LedgerReconciles(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	seedUser(t, db, "usr_1", 0)

	_, err := svc.Add(ctx, "usr_1", 30, "pack")
	require.NoError(t, err)
	_, err = svc.Deduct(ctx, "usr_1", 12, "generation")
	require.NoError(t, err)
	_, err = svc.Refund(ctx, "usr_1", 2, "partial failure")
	require.NoError(t, err)

	txns, err := svc.List(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, txns, 3)

	// 流水加总与余额一致
	sum := 0
	for _, txn := range txns {
		switch txn.Type {
		case models.TransactionDeduction:
			sum -= txn.Amount
		default:
			sum += txn.Amount
		}
	}

	balance, err := svc.Balance(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, balance, sum)
	assert.Equal(t, 20, balance)
}
