// Package content 提供内容服务
package content

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/common/cache"
	"github.com/kieugiathinh/bookstore-backend/internal/common/config"
	"github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/common/logger"
	"github.com/kieugiathinh/bookstore-backend/internal/common/metrics"
	"github.com/kieugiathinh/bookstore-backend/internal/common/utils"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
)

// BannerService 轮播图服务
type BannerService struct {
	db         *gorm.DB
	bannerRepo *repository.BannerRepository
}

// NewBannerService 创建轮播图服务
func NewBannerService(db *gorm.DB, bannerRepo *repository.BannerRepository) *BannerService {
	return &BannerService{
		db:         db,
		bannerRepo: bannerRepo,
	}
}

// cacheExpire 轮播图缓存有效期
func cacheExpire() time.Duration {
	return time.Duration(config.Get().Business.Banner.CacheExpire) * time.Second
}

// GetActiveBanners 获取生效的轮播图列表（带缓存）
func (s *BannerService) GetActiveBanners(ctx context.Context) ([]*models.Banner, error) {
	var cached []*models.Banner
	if err := cache.Get(ctx, cache.KeyActiveBanners, &cached); err == nil {
		metrics.RecordCacheHitGlobal("banner")
		return cached, nil
	}
	metrics.RecordCacheMissGlobal("banner")

	banners, err := s.bannerRepo.ListActive(ctx, time.Now())
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if err := cache.Set(ctx, cache.KeyActiveBanners, banners, cacheExpire()); err != nil {
		logger.Warn("轮播图缓存写入失败", logger.Err(err))
	}

	return banners, nil
}

// RecordClick 累加轮播图点击次数
func (s *BannerService) RecordClick(ctx context.Context, id int64) error {
	if _, err := s.bannerRepo.GetByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrBannerNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return s.bannerRepo.IncrementClickCount(ctx, id)
}

// CreateBannerRequest 创建轮播图请求（管理端）
type CreateBannerRequest struct {
	Title     string     `json:"title" binding:"required,max=100"`
	Image     string     `json:"image" binding:"required"`
	Link      string     `json:"link"`
	Sort      int        `json:"sort"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// CreateBanner 创建轮播图（管理端）
func (s *BannerService) CreateBanner(ctx context.Context, req *CreateBannerRequest) (*models.Banner, error) {
	if req.StartTime != nil && req.EndTime != nil && !req.EndTime.After(*req.StartTime) {
		return nil, errors.ErrInvalidParams.WithMessage("结束时间必须晚于开始时间")
	}

	banner := &models.Banner{
		Title:     req.Title,
		Image:     req.Image,
		Sort:      req.Sort,
		IsActive:  true,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if req.Link != "" {
		banner.Link = utils.StringPtr(req.Link)
	}
	if err := s.bannerRepo.Create(ctx, banner); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.invalidateCache(ctx)
	return banner, nil
}

// UpdateBanner 更新轮播图字段（管理端）
func (s *BannerService) UpdateBanner(ctx context.Context, id int64, fields map[string]interface{}) (*models.Banner, error) {
	if _, err := s.bannerRepo.GetByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBannerNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err := s.bannerRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.invalidateCache(ctx)
	return s.bannerRepo.GetByID(ctx, id)
}

// DeleteBanner 删除轮播图（管理端）
func (s *BannerService) DeleteBanner(ctx context.Context, id int64) error {
	if _, err := s.bannerRepo.GetByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrBannerNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	if err := s.bannerRepo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	s.invalidateCache(ctx)
	return nil
}

// GetBannerList 获取轮播图列表（管理端）
func (s *BannerService) GetBannerList(ctx context.Context, page, pageSize int) ([]*models.Banner, int64, error) {
	offset := (page - 1) * pageSize

	banners, total, err := s.bannerRepo.List(ctx, offset, pageSize)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return banners, total, nil
}

// invalidateCache 失效轮播图缓存
func (s *BannerService) invalidateCache(ctx context.Context) {
	if err := cache.Delete(ctx, cache.KeyActiveBanners); err != nil {
		logger.Warn("轮播图缓存失效失败", logger.Err(err))
	}
}
