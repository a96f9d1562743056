package images

import (
	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/database/repo/base"
	"gorm.io/gorm"
)

// Repository 图片仓库
type Repository struct {
	*base.Repository[models.Image]
}

// NewRepository 创建新的图片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Repository: base.NewRepository[models.Image](db)}
}
