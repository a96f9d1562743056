package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/aivory/fitstudio/apperrors"
	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/database/repo/history"
	"github.com/aivory/fitstudio/database/repo/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupService 创建基于内存数据库的媒体服务
func setupService(t *testing.T) (*Service, *gorm.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Image{},
		&models.HistoryEntry{},
		&models.HistoryImage{},
	))

	require.NoError(t, db.Create(&models.User{
		ID:           "usr_1",
		Name:         "Test User",
		Email:        "alice@example.com",
		PasswordHash: "salt:hash",
	}).Error)

	return NewService(images.NewRepository(db), history.NewRepository(db)), db
}

func pngB64() string {
	return base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
}

func TestService_SaveImage_NormalizesToDataURI(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// 纯 base64 输入，显式 MIME
	img, err := svc.SaveImage(ctx, "usr_1", pngB64(), "image/jpeg", true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.Payload, "data:image/jpeg;base64,"))
	assert.Equal(t, "image/jpeg", img.MimeType)
	assert.True(t, img.IsOriginal)

	// data-URI 输入，MIME 从前缀提取
	img, err = svc.SaveImage(ctx, "usr_1", "data:image/webp;base64,"+pngB64(), "", false)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", img.MimeType)
	assert.False(t, img.IsOriginal)

	// 无任何 MIME 信息时回退默认值
	img, err = svc.SaveImage(ctx, "usr_1", pngB64(), "", false)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
}

func TestService_SaveImage_RejectsBadPayload(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.SaveImage(ctx, "usr_1", "!!!not-base64!!!", "image/png", false)
	assert.Error(t, err)

	oversize := strings.Repeat("A", 5<<20)
	_, err = svc.SaveImage(ctx, "usr_1", oversize, "image/png", false)
	assert.ErrorIs(t, err, apperrors.ErrImageTooLarge)
}

func TestService_RecordHistory_FirstImageIsThumbnail(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		img, err := svc.SaveImage(ctx, "usr_1", pngB64(), "image/png", false)
		require.NoError(t, err)
		ids = append(ids, img.ID)
	}

	entry, err := svc.RecordHistory(ctx, "usr_1", "2026-08-31", "10:00", ids)
	require.NoError(t, err)
	assert.Equal(t, ids[0], entry.ThumbnailImageID)
	assert.Equal(t, 3, entry.ImageCount)

	ordered, err := svc.HistoryImages(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	for i, img := range ordered {
		assert.Equal(t, ids[i], img.ID)
	}
}

func TestService_RecordHistory_EmptyRejected(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.RecordHistory(context.Background(), "usr_1", "d", "t", nil)
	assert.Error(t, err)
}

func TestService_LoadHistory_HydratesThumbnailsAndImages(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	imgA, err := svc.SaveImage(ctx, "usr_1", pngB64(), "image/png", false)
	require.NoError(t, err)
	imgB, err := svc.SaveImage(ctx, "usr_1", pngB64(), "image/png", false)
	require.NoError(t, err)
	imgC, err := svc.SaveImage(ctx, "usr_1", pngB64(), "image/png", false)
	require.NoError(t, err)

	older, err := svc.RecordHistory(ctx, "usr_1", "d1", "t1", []string{imgA.ID})
	require.NoError(t, err)
	newer, err := svc.RecordHistory(ctx, "usr_1", "d2", "t2", []string{imgB.ID, imgC.ID})
	require.NoError(t, err)
	// created_at 精度内先后可能相同，直接校准
	require.NoError(t, db.Model(&models.HistoryEntry{}).Where("id = ?", newer.ID).
		Update("created_at", gorm.Expr("datetime('now', '+1 hour')")).Error)

	views, err := svc.LoadHistory(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, views, 2)

	// 新在前，缩略图为图片的 data-URI
	assert.Equal(t, newer.ID, views[0].ID)
	assert.Equal(t, imgB.Payload, views[0].Thumbnail)
	assert.Equal(t, older.ID, views[1].ID)
	assert.Equal(t, imgA.Payload, views[1].Thumbnail)

	// 每个条目携带按槽位顺序排列的全部图片
	require.Len(t, views[0].Images, 2)
	assert.Equal(t, imgB.ID, views[0].Images[0].ID)
	assert.Equal(t, imgC.ID, views[0].Images[1].ID)
	require.Len(t, views[1].Images, 1)
	assert.Equal(t, imgA.ID, views[1].Images[0].ID)

	// 缩略图被删掉后条目仍可展示，负载为空，其余图片保留
	require.NoError(t, db.Delete(&models.Image{}, "id = ?", imgB.ID).Error)
	views, err = svc.LoadHistory(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Empty(t, views[0].Thumbnail)
	require.Len(t, views[0].Images, 1)
	assert.Equal(t, imgC.ID, views[0].Images[0].ID)
	assert.Equal(t, imgA.Payload, views[1].Thumbnail)
}

func TestService_DeleteHistory_OwnershipAndImagesSurvive(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	img, err := svc.SaveImage(ctx, "usr_1", pngB64(), "image/png", false)
	require.NoError(t, err)
	entry, err := svc.RecordHistory(ctx, "usr_1", "d", "t", []string{img.ID})
	require.NoError(t, err)

	// 其他用户不能删除
	err = svc.DeleteHistory(ctx, "usr_other", entry.ID)
	assert.Error(t, err)

	require.NoError(t, svc.DeleteHistory(ctx, "usr_1", entry.ID))

	var count int64
	db.Model(&models.HistoryEntry{}).Where("id = ?", entry.ID).Count(&count)
	assert.Zero(t, count)

	// 图片本身保留
	got, err := svc.GetImage(ctx, img.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
