// Package marketing 提供营销相关服务
package marketing

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/common/cache"
	"github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/common/logger"
	"github.com/kieugiathinh/bookstore-backend/internal/common/metrics"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
)

// 活动列表缓存键与有效期
const (
	flashSaleCacheKey    = cache.KeyPrefixFlashSale + "active"
	flashSaleCacheExpire = 30 * time.Second
)

// FlashSaleService 秒杀活动服务
type FlashSaleService struct {
	db            *gorm.DB
	flashSaleRepo *repository.FlashSaleRepository
	productRepo   *repository.ProductRepository
}

// NewFlashSaleService 创建秒杀活动服务
func NewFlashSaleService(db *gorm.DB, flashSaleRepo *repository.FlashSaleRepository, productRepo *repository.ProductRepository) *FlashSaleService {
	return &FlashSaleService{
		db:            db,
		flashSaleRepo: flashSaleRepo,
		productRepo:   productRepo,
	}
}

// FlashSaleItemInfo 秒杀商品项信息
type FlashSaleItemInfo struct {
	ID            int64   `json:"id"`
	ProductID     int64   `json:"product_id"`
	Title         string  `json:"title"`
	Img           string  `json:"img"`
	OriginalPrice float64 `json:"original_price"`
	DiscountPrice float64 `json:"discount_price"`
	QuantityLimit int     `json:"quantity_limit"`
	SoldCount     int     `json:"sold_count"`
	Remaining     int     `json:"remaining"`
}

// FlashSaleInfo 秒杀活动信息
type FlashSaleInfo struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	Status    int8                 `json:"status"`
	Items     []*FlashSaleItemInfo `json:"items"`
}

// buildFlashSaleInfo 构建秒杀活动信息
func buildFlashSaleInfo(sale *models.FlashSale) *FlashSaleInfo {
	info := &FlashSaleInfo{
		ID:        sale.ID,
		Name:      sale.Name,
		StartTime: sale.StartTime,
		EndTime:   sale.EndTime,
		Status:    sale.Status,
		Items:     make([]*FlashSaleItemInfo, 0, len(sale.Items)),
	}
	for i := range sale.Items {
		item := &sale.Items[i]
		remaining := item.QuantityLimit - item.SoldCount
		if remaining < 0 {
			remaining = 0
		}
		itemInfo := &FlashSaleItemInfo{
			ID:            item.ID,
			ProductID:     item.ProductID,
			DiscountPrice: item.DiscountPrice,
			QuantityLimit: item.QuantityLimit,
			SoldCount:     item.SoldCount,
			Remaining:     remaining,
		}
		if item.Product != nil {
			itemInfo.Title = item.Product.Title
			itemInfo.Img = item.Product.Img
			itemInfo.OriginalPrice = item.Product.Price
		}
		info.Items = append(info.Items, itemInfo)
	}
	return info
}

// GetActiveSales 获取进行中的秒杀活动（带缓存）
func (s *FlashSaleService) GetActiveSales(ctx context.Context) ([]*FlashSaleInfo, error) {
	var cached []*FlashSaleInfo
	if err := cache.Get(ctx, flashSaleCacheKey, &cached); err == nil {
		metrics.RecordCacheHitGlobal("flash_sale")
		return cached, nil
	}
	metrics.RecordCacheMissGlobal("flash_sale")

	sales, err := s.flashSaleRepo.ListActive(ctx, time.Now())
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	list := make([]*FlashSaleInfo, 0, len(sales))
	for _, sale := range sales {
		list = append(list, buildFlashSaleInfo(sale))
	}

	if err := cache.Set(ctx, flashSaleCacheKey, list, flashSaleCacheExpire); err != nil {
		logger.Warn("秒杀活动缓存写入失败", logger.Err(err))
	}

	return list, nil
}

// GetSaleDetail 获取秒杀活动详情
func (s *FlashSaleService) GetSaleDetail(ctx context.Context, id int64) (*FlashSaleInfo, error) {
	sale, err := s.flashSaleRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrFlashSaleNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return buildFlashSaleInfo(sale), nil
}

// CreateFlashSaleItemRequest 创建秒杀商品项请求
type CreateFlashSaleItemRequest struct {
	ProductID     int64   `json:"product_id" binding:"required"`
	DiscountPrice float64 `json:"discount_price" binding:"required,gt=0"`
	QuantityLimit int     `json:"quantity_limit" binding:"required,gt=0"`
}

// CreateFlashSaleRequest 创建秒杀活动请求（管理端）
type CreateFlashSaleRequest struct {
	Name      string                       `json:"name" binding:"required,max=100"`
	StartTime time.Time                    `json:"start_time" binding:"required"`
	EndTime   time.Time                    `json:"end_time" binding:"required"`
	Items     []CreateFlashSaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateFlashSale 创建秒杀活动（管理端）
func (s *FlashSaleService) CreateFlashSale(ctx context.Context, req *CreateFlashSaleRequest) (*FlashSaleInfo, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, errors.ErrInvalidParams.WithMessage("结束时间必须晚于开始时间")
	}

	sale := &models.FlashSale{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.FlashSaleStatusActive,
		Items:     make([]models.FlashSaleItem, 0, len(req.Items)),
	}

	for _, item := range req.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.ErrProductNotFound
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if item.DiscountPrice >= product.Price {
			return nil, errors.ErrInvalidParams.WithMessage("秒杀价必须低于原价")
		}
		sale.Items = append(sale.Items, models.FlashSaleItem{
			ProductID:     item.ProductID,
			DiscountPrice: item.DiscountPrice,
			QuantityLimit: item.QuantityLimit,
		})
	}

	if err := s.flashSaleRepo.Create(ctx, sale); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.invalidateCache(ctx)
	return buildFlashSaleInfo(sale), nil
}

// UpdateSaleStatus 启用或停用秒杀活动（管理端）
func (s *FlashSaleService) UpdateSaleStatus(ctx context.Context, id int64, status int8) error {
	if status != models.FlashSaleStatusDisabled && status != models.FlashSaleStatusActive {
		return errors.ErrInvalidParams.WithMessage("无效的状态值")
	}
	if _, err := s.flashSaleRepo.GetByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrFlashSaleNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	if err := s.flashSaleRepo.UpdateFields(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	s.invalidateCache(ctx)
	return nil
}

// GetSaleList 获取秒杀活动列表（管理端）
func (s *FlashSaleService) GetSaleList(ctx context.Context, page, pageSize int) ([]*FlashSaleInfo, int64, error) {
	offset := (page - 1) * pageSize

	sales, total, err := s.flashSaleRepo.List(ctx, offset, pageSize)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	list := make([]*FlashSaleInfo, 0, len(sales))
	for _, sale := range sales {
		list = append(list, buildFlashSaleInfo(sale))
	}
	return list, total, nil
}

// invalidateCache 失效活动列表缓存
func (s *FlashSaleService) invalidateCache(ctx context.Context) {
	if err := cache.Delete(ctx, flashSaleCacheKey); err != nil {
		logger.Warn("秒杀活动缓存失效失败", logger.Err(err))
	}
}
