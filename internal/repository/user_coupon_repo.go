// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/models"
)

// UserCouponRepository 用户优惠券仓储
type UserCouponRepository struct {
	db *gorm.DB
}

// NewUserCouponRepository 创建用户优惠券仓储
func NewUserCouponRepository(db *gorm.DB) *UserCouponRepository {
	return &UserCouponRepository{db: db}
}

// Create 创建用户优惠券记录
func (r *UserCouponRepository) Create(ctx context.Context, uc *models.UserCoupon) error {
	return r.db.WithContext(ctx).Create(uc).Error
}

// GetByID 根据 ID 获取记录
func (r *UserCouponRepository) GetByID(ctx context.Context, id int64) (*models.UserCoupon, error) {
	var uc models.UserCoupon
	err := r.db.WithContext(ctx).First(&uc, id).Error
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

// GetByUserIDAndCouponID 获取用户的某张优惠券
func (r *UserCouponRepository) GetByUserIDAndCouponID(ctx context.Context, userID, couponID int64) (*models.UserCoupon, error) {
	var uc models.UserCoupon
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND coupon_id = ?", userID, couponID).
		First(&uc).Error
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

// Exists 判断用户是否已领取某张优惠券
func (r *UserCouponRepository) Exists(ctx context.Context, userID, couponID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserCoupon{}).
		Where("user_id = ? AND coupon_id = ?", userID, couponID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUserID 获取用户的优惠券列表
func (r *UserCouponRepository) ListByUserID(ctx context.Context, userID int64, isUsed *bool, offset, limit int) ([]*models.UserCoupon, int64, error) {
	var list []*models.UserCoupon
	var total int64

	query := r.db.WithContext(ctx).Model(&models.UserCoupon{}).
		Where("user_id = ?", userID)
	if isUsed != nil {
		query = query.Where("is_used = ?", *isUsed)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Coupon").
		Order("saved_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// MarkUsed 条件标记已使用
// 仅当记录尚未使用时生效；RowsAffected 为 0 表示已被使用
func (r *UserCouponRepository) MarkUsed(tx *gorm.DB, id, orderID int64) error {
	now := time.Now()
	result := tx.Model(&models.UserCoupon{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]interface{}{
			"is_used":  true,
			"order_id": orderID,
			"used_at":  now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkUnused 回退使用标记（订单取消时）
func (r *UserCouponRepository) MarkUnused(tx *gorm.DB, id int64) error {
	return tx.Model(&models.UserCoupon{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_used":  false,
			"order_id": nil,
			"used_at":  nil,
		}).Error
}
