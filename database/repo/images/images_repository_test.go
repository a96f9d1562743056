package images

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aivory/fitstudio/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Image{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.User{
		ID:           "usr_1",
		Name:         "Test User",
		Email:        "alice@example.com",
		PasswordHash: "salt:hash",
	}).Error)

	return db
}

func TestRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	img := &models.Image{
		ID:         "img_1",
		UserID:     "usr_1",
		Payload:    "data:image/jpeg;base64,AAAA",
		MimeType:   "image/jpeg",
		IsOriginal: true,
	}
	require.NoError(t, repo.Create(ctx, img))

	got, err := repo.GetByID(ctx, "img_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", got.Payload)
	assert.True(t, got.IsOriginal)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	got, err := repo.GetByID(context.Background(), "img_missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_ListByUser_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now()
	for i, id := range []string{"img_old", "img_mid", "img_new"} {
		require.NoError(t, db.Create(&models.Image{
			ID:        id,
			UserID:    "usr_1",
			Payload:   "data:image/png;base64,AAAA",
			MimeType:  "image/png",
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	list, err := repo.ListByUser(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "img_new", list[0].ID)
	assert.Equal(t, "img_old", list[2].ID)
}
