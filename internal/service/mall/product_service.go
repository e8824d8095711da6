// Package mall 提供商城服务
package mall

import (
	"context"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
)

// ProductService 图书商品服务
type ProductService struct {
	db           *gorm.DB
	productRepo  *repository.ProductRepository
	categoryRepo *repository.CategoryRepository
}

// NewProductService 创建商品服务
func NewProductService(db *gorm.DB, productRepo *repository.ProductRepository, categoryRepo *repository.CategoryRepository) *ProductService {
	return &ProductService{
		db:           db,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// ProductListRequest 商品列表请求
type ProductListRequest struct {
	Page       int
	PageSize   int
	CategoryID *int64
	Keyword    string
	IsHot      *bool
	IsNew      *bool
	OrderBy    string
}

// GetProductList 获取在售商品列表（用户端）
func (s *ProductService) GetProductList(ctx context.Context, req *ProductListRequest) ([]*models.Product, int64, error) {
	offset := (req.Page - 1) * req.PageSize
	onSale := int8(models.ProductStatusOnSale)

	products, total, err := s.productRepo.List(ctx, repository.ProductListParams{
		Offset:     offset,
		Limit:      req.PageSize,
		CategoryID: req.CategoryID,
		Keyword:    req.Keyword,
		Status:     &onSale,
		IsHot:      req.IsHot,
		IsNew:      req.IsNew,
		OrderBy:    req.OrderBy,
	})
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return products, total, nil
}

// GetProductDetail 获取商品详情
func (s *ProductService) GetProductDetail(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if product.Status != models.ProductStatusOnSale {
		return nil, errors.ErrProductOffShelf
	}
	return product, nil
}

// CreateProductRequest 创建商品请求（管理端）
type CreateProductRequest struct {
	CategoryID    int64   `json:"category_id" binding:"required"`
	Title         string  `json:"title" binding:"required,max=200"`
	Author        string  `json:"author" binding:"max=100"`
	Publisher     string  `json:"publisher" binding:"max=100"`
	Img           string  `json:"img"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	OriginalPrice float64 `json:"original_price" binding:"gte=0"`
	CountInStock  int     `json:"count_in_stock" binding:"gte=0"`
}

// CreateProduct 创建商品（管理端）
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	product := &models.Product{
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     &req.Publisher,
		Img:           req.Img,
		Description:   &req.Description,
		Price:         req.Price,
		OriginalPrice: &req.OriginalPrice,
		CountInStock:  req.CountInStock,
		Status:        models.ProductStatusOnSale,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return product, nil
}

// UpdateProduct 更新商品字段（管理端）
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, fields map[string]interface{}) (*models.Product, error) {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err := s.productRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.productRepo.GetByID(ctx, id)
}

// DeleteProduct 删除商品（管理端）
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrProductNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return s.productRepo.Delete(ctx, id)
}
