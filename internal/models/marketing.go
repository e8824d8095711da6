package models

import (
	"time"
)

// Coupon 优惠券模型
type Coupon struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description string    `gorm:"type:varchar(255);not null;default:''" json:"description"`
	Type        string    `gorm:"type:varchar(20);not null" json:"type"`
	Value       float64   `gorm:"type:decimal(12,2);not null" json:"value"`
	MaxDiscount float64   `gorm:"type:decimal(12,2);not null;default:0" json:"max_discount"`
	MinOrder    float64   `gorm:"type:decimal(12,2);not null;default:0" json:"min_order"`
	StartTime   time.Time `gorm:"not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	UsageLimit  int       `gorm:"not null" json:"usage_limit"`
	UsedCount   int       `gorm:"not null;default:0" json:"used_count"`
	Status      int8      `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	UserCoupons []UserCoupon `gorm:"foreignKey:CouponID" json:"user_coupons,omitempty"`
}

// TableName 表名
func (Coupon) TableName() string {
	return "coupons"
}

// CouponType 优惠券类型
const (
	CouponTypeAmount  = "amount"  // 固定金额
	CouponTypePercent = "percent" // 百分比折扣
)

// CouponStatus 优惠券状态
const (
	CouponStatusDisabled = 0 // 禁用
	CouponStatusActive   = 1 // 启用
)

// UserCoupon 用户优惠券（钱包条目）
// 同一用户对同一优惠券最多持有一条记录，由唯一索引保证
type UserCoupon struct {
	ID       int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64      `gorm:"uniqueIndex:idx_user_coupon;not null" json:"user_id"`
	CouponID int64      `gorm:"uniqueIndex:idx_user_coupon;not null" json:"coupon_id"`
	IsUsed   bool       `gorm:"not null;default:false" json:"is_used"`
	OrderID  *int64     `json:"order_id,omitempty"`
	UsedAt   *time.Time `json:"used_at,omitempty"`
	SavedAt  time.Time  `gorm:"autoCreateTime" json:"saved_at"`

	// 关联
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Coupon *Coupon `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
	Order  *Order  `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// TableName 表名
func (UserCoupon) TableName() string {
	return "user_coupons"
}

// FlashSale 秒杀活动模型
type FlashSale struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Status    int8      `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Items []FlashSaleItem `gorm:"foreignKey:FlashSaleID" json:"items,omitempty"`
}

// TableName 表名
func (FlashSale) TableName() string {
	return "flash_sales"
}

// FlashSaleStatus 秒杀活动状态
const (
	FlashSaleStatusDisabled = 0 // 禁用
	FlashSaleStatusActive   = 1 // 启用
)

// FlashSaleItem 秒杀商品项（归属于活动，无独立生命周期）
// 不变量：sold_count 不得超过 quantity_limit，由存储层条件更新保证
type FlashSaleItem struct {
	ID            int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	FlashSaleID   int64   `gorm:"index;not null" json:"flash_sale_id"`
	ProductID     int64   `gorm:"index;not null" json:"product_id"`
	DiscountPrice float64 `gorm:"type:decimal(12,2);not null" json:"discount_price"`
	QuantityLimit int     `gorm:"not null" json:"quantity_limit"`
	SoldCount     int     `gorm:"not null;default:0" json:"sold_count"`

	// 关联
	FlashSale *FlashSale `gorm:"foreignKey:FlashSaleID" json:"flash_sale,omitempty"`
	Product   *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName 表名
func (FlashSaleItem) TableName() string {
	return "flash_sale_items"
}
