// Package marketing 提供营销相关服务
package marketing

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
)

// UserCouponService 用户优惠券钱包服务
type UserCouponService struct {
	db             *gorm.DB
	userCouponRepo *repository.UserCouponRepository
}

// NewUserCouponService 创建用户优惠券钱包服务
func NewUserCouponService(db *gorm.DB, userCouponRepo *repository.UserCouponRepository) *UserCouponService {
	return &UserCouponService{
		db:             db,
		userCouponRepo: userCouponRepo,
	}
}

// WalletEntry 钱包条目
type WalletEntry struct {
	ID            int64      `json:"id"`
	CouponID      int64      `json:"coupon_id"`
	Code          string     `json:"code"`
	Description   string     `json:"description"`
	Type          string     `json:"type"`
	Value         float64    `json:"value"`
	MaxDiscount   float64    `json:"max_discount"`
	MinOrder      float64    `json:"min_order"`
	EndTime       time.Time  `json:"end_time"`
	IsUsed        bool       `json:"is_used"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
	OrderID       *int64     `json:"order_id,omitempty"`
	SavedAt       time.Time  `json:"saved_at"`
	IsAvailable   bool       `json:"is_available"`
	DaysRemaining int        `json:"days_remaining"`
}

// buildWalletEntry 构建钱包条目
func buildWalletEntry(uc *models.UserCoupon, now time.Time) *WalletEntry {
	entry := &WalletEntry{
		ID:       uc.ID,
		CouponID: uc.CouponID,
		IsUsed:   uc.IsUsed,
		UsedAt:   uc.UsedAt,
		OrderID:  uc.OrderID,
		SavedAt:  uc.SavedAt,
	}

	if uc.Coupon != nil {
		c := uc.Coupon
		entry.Code = c.Code
		entry.Description = c.Description
		entry.Type = c.Type
		entry.Value = c.Value
		entry.MaxDiscount = c.MaxDiscount
		entry.MinOrder = c.MinOrder
		entry.EndTime = c.EndTime

		entry.IsAvailable = !uc.IsUsed &&
			c.Status == models.CouponStatusActive &&
			!now.Before(c.StartTime) &&
			!now.After(c.EndTime) &&
			c.UsedCount < c.UsageLimit

		if days := int(time.Until(c.EndTime).Hours() / 24); days > 0 {
			entry.DaysRemaining = days
		}
	}

	return entry
}

// GetWallet 获取用户的优惠券钱包
func (s *UserCouponService) GetWallet(ctx context.Context, userID int64, isUsed *bool, page, pageSize int) ([]*WalletEntry, int64, error) {
	offset := (page - 1) * pageSize

	userCoupons, total, err := s.userCouponRepo.ListByUserID(ctx, userID, isUsed, offset, pageSize)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	now := time.Now()
	list := make([]*WalletEntry, 0, len(userCoupons))
	for _, uc := range userCoupons {
		list = append(list, buildWalletEntry(uc, now))
	}
	return list, total, nil
}
