// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/models"
)

// FlashSaleRepository 秒杀活动仓储
type FlashSaleRepository struct {
	db *gorm.DB
}

// NewFlashSaleRepository 创建秒杀活动仓储
func NewFlashSaleRepository(db *gorm.DB) *FlashSaleRepository {
	return &FlashSaleRepository{db: db}
}

// Create 创建秒杀活动（含商品项）
func (r *FlashSaleRepository) Create(ctx context.Context, sale *models.FlashSale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// GetByID 根据 ID 获取活动及商品项
func (r *FlashSaleRepository) GetByID(ctx context.Context, id int64) (*models.FlashSale, error) {
	var sale models.FlashSale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&sale, id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListActive 获取当前进行中的秒杀活动
func (r *FlashSaleRepository) ListActive(ctx context.Context, now time.Time) ([]*models.FlashSale, error) {
	var sales []*models.FlashSale
	err := r.db.WithContext(ctx).
		Where("status = ?", models.FlashSaleStatusActive).
		Where("start_time <= ? AND end_time > ?", now, now).
		Preload("Items").
		Preload("Items.Product").
		Order("end_time ASC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// List 获取秒杀活动列表（管理端）
func (r *FlashSaleRepository) List(ctx context.Context, offset, limit int) ([]*models.FlashSale, int64, error) {
	var sales []*models.FlashSale
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FlashSale{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Items").
		Order("start_time DESC").
		Offset(offset).Limit(limit).
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

// UpdateFields 更新指定字段
func (r *FlashSaleRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.FlashSale{}).Where("id = ?", id).Updates(fields).Error
}

// GetItemByID 获取秒杀商品项
func (r *FlashSaleRepository) GetItemByID(ctx context.Context, itemID int64) (*models.FlashSaleItem, error) {
	var item models.FlashSaleItem
	err := r.db.WithContext(ctx).
		Preload("FlashSale").
		First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemByProduct 获取某活动下指定商品的秒杀项
func (r *FlashSaleRepository) GetItemByProduct(ctx context.Context, saleID, productID int64) (*models.FlashSaleItem, error) {
	var item models.FlashSaleItem
	err := r.db.WithContext(ctx).
		Where("flash_sale_id = ? AND product_id = ?", saleID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AllocateStock 条件占用秒杀额度
// 仅当剩余额度足够时累加 sold_count；RowsAffected 为 0 表示已售罄
func (r *FlashSaleRepository) AllocateStock(tx *gorm.DB, itemID int64, quantity int) error {
	result := tx.Model(&models.FlashSaleItem{}).
		Where("id = ? AND sold_count + ? <= quantity_limit", itemID, quantity).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReleaseStock 回退秒杀额度（订单取消时）
func (r *FlashSaleRepository) ReleaseStock(tx *gorm.DB, itemID int64, quantity int) error {
	return tx.Model(&models.FlashSaleItem{}).
		Where("id = ? AND sold_count >= ?", itemID, quantity).
		UpdateColumn("sold_count", gorm.Expr("sold_count - ?", quantity)).
		Error
}
