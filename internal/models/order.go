package models

import (
	"time"
)

// Order 订单模型
type Order struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo        string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_no"`
	UserID         int64      `gorm:"index;not null" json:"user_id"`
	Status         int8       `gorm:"type:smallint;not null;default:0" json:"status"`
	TotalAmount    float64    `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	DiscountAmount float64    `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	ActualAmount   float64    `gorm:"type:decimal(12,2);not null" json:"actual_amount"`
	CouponID       *int64     `json:"coupon_id,omitempty"`
	UserCouponID   *int64     `json:"user_coupon_id,omitempty"`
	Address        *string    `gorm:"type:varchar(255)" json:"address,omitempty"`
	Remark         *string    `gorm:"type:varchar(255)" json:"remark,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	User   *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Coupon *Coupon     `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
	Items  []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName 表名
func (Order) TableName() string {
	return "orders"
}

// OrderStatus 订单状态
// 状态机：PENDING → PROCESSING → DELIVERED；PENDING → CANCELLED 为唯一分支，
// DELIVERED 与 CANCELLED 为终态
const (
	OrderStatusPending    = 0 // 待处理
	OrderStatusProcessing = 1 // 处理中
	OrderStatusDelivered  = 2 // 已送达
	OrderStatusCancelled  = 3 // 已取消
)

// OrderItem 订单项（下单时的商品快照，保留历史价格）
type OrderItem struct {
	ID              int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         int64   `gorm:"index;not null" json:"order_id"`
	ProductID       int64   `gorm:"not null" json:"product_id"`
	FlashSaleItemID *int64  `json:"flash_sale_item_id,omitempty"`
	Title           string  `gorm:"type:varchar(200);not null" json:"title"`
	Img             string  `gorm:"type:varchar(255);not null;default:''" json:"img"`
	Price           float64 `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity        int     `gorm:"not null" json:"quantity"`
	Subtotal        float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`

	// 关联
	Order   *Order   `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName 表名
func (OrderItem) TableName() string {
	return "order_items"
}
