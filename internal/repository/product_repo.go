// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/models"
)

// ProductRepository 图书商品仓储
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create 创建商品
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID 根据 ID 获取商品
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs 批量获取商品
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Product, error) {
	var products []*models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Update 更新商品
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// UpdateFields 更新指定字段
func (r *ProductRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除商品
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, id).Error
}

// ProductListParams 商品列表查询参数
type ProductListParams struct {
	Offset     int
	Limit      int
	CategoryID *int64
	Keyword    string
	Status     *int8
	IsHot      *bool
	IsNew      *bool
	OrderBy    string
}

// List 获取商品列表
func (r *ProductRepository) List(ctx context.Context, params ProductListParams) ([]*models.Product, int64, error) {
	var products []*models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", kw, kw)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.IsHot != nil {
		query = query.Where("is_hot = ?", *params.IsHot)
	}
	if params.IsNew != nil {
		query = query.Where("is_new = ?", *params.IsNew)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := params.OrderBy
	if orderBy == "" {
		orderBy = "sort ASC, id DESC"
	}
	if err := query.Order(orderBy).Offset(params.Offset).Limit(params.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// DecreaseStock 条件扣减库存
// 仅当剩余库存足够时扣减；RowsAffected 为 0 表示库存不足
// 必须在调用方事务的 tx 上执行，保证失败时整体回滚
func (r *ProductRepository) DecreaseStock(tx *gorm.DB, id int64, quantity int) error {
	result := tx.Model(&models.Product{}).
		Where("id = ? AND count_in_stock >= ?", id, quantity).
		UpdateColumn("count_in_stock", gorm.Expr("count_in_stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncreaseStock 回补库存
func (r *ProductRepository) IncreaseStock(tx *gorm.DB, id int64, quantity int) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("count_in_stock", gorm.Expr("count_in_stock + ?", quantity)).
		Error
}

// IncreaseSales 累加销量
func (r *ProductRepository) IncreaseSales(tx *gorm.DB, id int64, quantity int) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("sales", gorm.Expr("sales + ?", quantity)).
		Error
}

// DecreaseSales 回退销量
func (r *ProductRepository) DecreaseSales(tx *gorm.DB, id int64, quantity int) error {
	return tx.Model(&models.Product{}).
		Where("id = ? AND sales >= ?", id, quantity).
		UpdateColumn("sales", gorm.Expr("sales - ?", quantity)).
		Error
}
