package models

import "time"

type User struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null" json:"-"`

	// ProfileImageID 可选的头像图片引用，空串表示未设置
	ProfileImageID string `gorm:"size:64"`

	// Credits 积分余额，只能通过积分服务变动
	Credits int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
