package transactions

import (
	"github.com/aivory/fitstudio/database/models"
	"github.com/aivory/fitstudio/database/repo/base"
	"gorm.io/gorm"
)

// Repository 积分流水仓库。流水只追加，不提供更新和单独删除。
type Repository struct {
	*base.Repository[models.CreditTransaction]
}

// NewRepository 创建新的流水仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Repository: base.NewRepository[models.CreditTransaction](db)}
}
