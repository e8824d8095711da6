package models

import (
	"time"
)

// Banner 轮播图
type Banner struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string     `gorm:"type:varchar(100);not null" json:"title"`
	Image      string     `gorm:"type:varchar(255);not null" json:"image"`
	Link       *string    `gorm:"type:varchar(255)" json:"link,omitempty"`
	Sort       int        `gorm:"not null;default:0" json:"sort"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	ClickCount int        `gorm:"not null;default:0" json:"click_count"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Banner) TableName() string {
	return "banners"
}
