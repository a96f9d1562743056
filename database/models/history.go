package models

import "time"

// HistoryEntry 一次生成请求成功产出图片的分组
type HistoryEntry struct {
	ID     string `gorm:"primaryKey;size:64"`
	UserID string `gorm:"index;not null"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	// Date / Time 面向展示的日期时间字符串
	Date string `gorm:"not null"`
	Time string `gorm:"not null"`

	// ImageCount 本条目关联的图片数量
	ImageCount int `gorm:"not null"`

	// ThumbnailImageID 首张产出图片的引用，必须是关联集中的一员
	ThumbnailImageID string `gorm:"size:64;not null"`

	CreatedAt time.Time
}

// HistoryImage 历史条目与图片的有序关联，复合主键保证同一条目内图片不重复
type HistoryImage struct {
	HistoryID string `gorm:"primaryKey;size:64"`
	ImageID   string `gorm:"primaryKey;size:64"`

	// SortOrder 槽位顺序，0 起始
	SortOrder int `gorm:"not null"`

	History HistoryEntry `gorm:"foreignKey:HistoryID;constraint:OnDelete:CASCADE" json:"-"`
	Image   Image        `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"-"`
}
