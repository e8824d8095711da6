// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/models"
)

// BannerRepository 轮播图仓储
type BannerRepository struct {
	db *gorm.DB
}

// NewBannerRepository 创建轮播图仓储
func NewBannerRepository(db *gorm.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

// Create 创建轮播图
func (r *BannerRepository) Create(ctx context.Context, banner *models.Banner) error {
	return r.db.WithContext(ctx).Create(banner).Error
}

// GetByID 根据 ID 获取轮播图
func (r *BannerRepository) GetByID(ctx context.Context, id int64) (*models.Banner, error) {
	var banner models.Banner
	err := r.db.WithContext(ctx).First(&banner, id).Error
	if err != nil {
		return nil, err
	}
	return &banner, nil
}

// ListActive 获取当前生效的轮播图（按权重排序）
func (r *BannerRepository) ListActive(ctx context.Context, now time.Time) ([]*models.Banner, error) {
	var banners []*models.Banner
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("start_time IS NULL OR start_time <= ?", now).
		Where("end_time IS NULL OR end_time > ?", now).
		Order("sort ASC, id ASC").
		Find(&banners).Error
	if err != nil {
		return nil, err
	}
	return banners, nil
}

// List 获取轮播图列表（管理端）
func (r *BannerRepository) List(ctx context.Context, offset, limit int) ([]*models.Banner, int64, error) {
	var banners []*models.Banner
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Banner{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("sort ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&banners).Error; err != nil {
		return nil, 0, err
	}

	return banners, total, nil
}

// Update 更新轮播图
func (r *BannerRepository) Update(ctx context.Context, banner *models.Banner) error {
	return r.db.WithContext(ctx).Save(banner).Error
}

// UpdateFields 更新指定字段
func (r *BannerRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Banner{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除轮播图
func (r *BannerRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Banner{}, id).Error
}

// IncrementClickCount 累加点击次数
func (r *BannerRepository) IncrementClickCount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&models.Banner{}).
		Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + 1")).
		Error
}
