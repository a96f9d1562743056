package models

import "time"

type Image struct {
	ID     string `gorm:"primaryKey;size:64"`
	UserID string `gorm:"index;not null"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	// Payload 以 data-URI 形式存储的图片数据
	Payload  string `gorm:"type:text;not null"`
	MimeType string `gorm:"not null"`

	// IsOriginal 用户上传的原图为 true，AI 生成的为 false
	IsOriginal bool `gorm:"not null;default:false"`

	CreatedAt time.Time
}
