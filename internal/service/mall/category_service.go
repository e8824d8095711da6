// Package mall 提供商城服务
package mall

import (
	"context"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
)

// CategoryService 图书分类服务
type CategoryService struct {
	db           *gorm.DB
	categoryRepo *repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(db *gorm.DB, categoryRepo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{
		db:           db,
		categoryRepo: categoryRepo,
	}
}

// GetCategories 获取全部启用分类
func (s *CategoryService) GetCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return categories, nil
}

// CreateCategoryRequest 创建分类请求（管理端）
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=50"`
	Icon string `json:"icon"`
	Sort int    `json:"sort"`
}

// CreateCategory 创建分类（管理端）
func (s *CategoryService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	category := &models.Category{
		Name:   req.Name,
		Icon:   &req.Icon,
		Sort:   req.Sort,
		Status: models.CategoryStatusActive,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return category, nil
}

// UpdateCategory 更新分类（管理端）
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, name, icon string, sort int, status int8) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	category.Name = name
	category.Icon = &icon
	category.Sort = sort
	category.Status = status
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return category, nil
}

// DeleteCategory 删除分类（管理端）
// 分类下仍有商品时拒绝删除
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrCategoryNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}

	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if count > 0 {
		return errors.ErrInvalidParams.WithMessage("分类下仍有商品，无法删除")
	}

	return s.categoryRepo.Delete(ctx, id)
}
