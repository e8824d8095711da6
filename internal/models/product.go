package models

import (
	"time"
)

// Category 图书分类
type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Icon      *string   `gorm:"type:varchar(255)" json:"icon,omitempty"`
	Sort      int       `gorm:"not null;default:0" json:"sort"`
	Status    int8      `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// 关联
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// TableName 表名
func (Category) TableName() string {
	return "categories"
}

// CategoryStatus 分类状态
const (
	CategoryStatusDisabled = 0 // 禁用
	CategoryStatusActive   = 1 // 启用
)

// Product 图书商品模型
type Product struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID    int64     `gorm:"index;not null" json:"category_id"`
	Title         string    `gorm:"type:varchar(200);not null" json:"title"`
	Author        string    `gorm:"type:varchar(100);not null;default:''" json:"author"`
	Publisher     *string   `gorm:"type:varchar(100)" json:"publisher,omitempty"`
	Img           string    `gorm:"type:varchar(255);not null" json:"img"`
	Images        JSON      `gorm:"type:jsonb" json:"images,omitempty"`
	Description   *string   `gorm:"type:text" json:"description,omitempty"`
	Price         float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	OriginalPrice *float64  `gorm:"type:decimal(12,2)" json:"original_price,omitempty"`
	CountInStock  int       `gorm:"not null;default:0" json:"count_in_stock"`
	Sales         int       `gorm:"not null;default:0" json:"sales"`
	IsHot         bool      `gorm:"not null;default:false" json:"is_hot"`
	IsNew         bool      `gorm:"not null;default:false" json:"is_new"`
	Sort          int       `gorm:"not null;default:0" json:"sort"`
	Status        int8      `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName 表名
func (Product) TableName() string {
	return "products"
}

// ProductStatus 商品状态
const (
	ProductStatusOffSale = 0 // 下架
	ProductStatusOnSale  = 1 // 上架
)
