package models

import "time"

// 积分流水类型
const (
	TransactionPurchase  = "purchase"
	TransactionDeduction = "deduction"
	TransactionRefund    = "refund"
)

// CreditTransaction 积分流水，只追加：除用户级联删除外不修改不删除
type CreditTransaction struct {
	ID     string `gorm:"primaryKey;size:64"`
	UserID string `gorm:"index;not null"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	// Amount 始终记录为正数，方向由 Type 区分
	Amount int    `gorm:"not null"`
	Type   string `gorm:"not null"`

	Description string

	CreatedAt time.Time
}
