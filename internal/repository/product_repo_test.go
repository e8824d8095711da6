// Package repository_test 仓储层测试
package repository_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
)

// setupRepoTestDB 创建测试数据库
func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	err = db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Coupon{},
		&models.UserCoupon{},
	)
	require.NoError(t, err)
	return db
}

// seedRepoProduct 创建测试商品
func seedRepoProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()

	category := &models.Category{Name: "历史", Status: models.CategoryStatusActive}
	require.NoError(t, db.Create(category).Error)

	product := &models.Product{
		CategoryID:   category.ID,
		Title:        "万历十五年",
		Img:          "https://img.test/wanli.jpg",
		Price:        68000,
		CountInStock: stock,
		Status:       models.ProductStatusOnSale,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestProductRepository_DecreaseStock(t *testing.T) {
	t.Run("库存足够时扣减", func(t *testing.T) {
		db := setupRepoTestDB(t)
		repo := repository.NewProductRepository(db)
		product := seedRepoProduct(t, db, 10)

		require.NoError(t, repo.DecreaseStock(db, product.ID, 4))

		var fresh models.Product
		require.NoError(t, db.First(&fresh, product.ID).Error)
		assert.Equal(t, 6, fresh.CountInStock)
	})

	t.Run("库存不足时拒绝且不变", func(t *testing.T) {
		db := setupRepoTestDB(t)
		repo := repository.NewProductRepository(db)
		product := seedRepoProduct(t, db, 3)

		err := repo.DecreaseStock(db, product.ID, 5)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		var fresh models.Product
		require.NoError(t, db.First(&fresh, product.ID).Error)
		assert.Equal(t, 3, fresh.CountInStock)
	})

	t.Run("扣到零为合法边界", func(t *testing.T) {
		db := setupRepoTestDB(t)
		repo := repository.NewProductRepository(db)
		product := seedRepoProduct(t, db, 5)

		require.NoError(t, repo.DecreaseStock(db, product.ID, 5))

		var fresh models.Product
		require.NoError(t, db.First(&fresh, product.ID).Error)
		assert.Equal(t, 0, fresh.CountInStock)

		err := repo.DecreaseStock(db, product.ID, 1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestCouponRepository_GetByCode(t *testing.T) {
	t.Run("券码匹配不区分大小写", func(t *testing.T) {
		db := setupRepoTestDB(t)
		repo := repository.NewCouponRepository(db)

		coupon := &models.Coupon{
			Code:       "WELCOME5",
			Type:       models.CouponTypeAmount,
			Value:      5000,
			StartTime:  time.Now(),
			EndTime:    time.Now().Add(time.Hour),
			UsageLimit: 10,
			Status:     models.CouponStatusActive,
		}
		require.NoError(t, db.Create(coupon).Error)

		found, err := repo.GetByCode(context.Background(), "welcome5")
		require.NoError(t, err)
		assert.Equal(t, coupon.ID, found.ID)
	})
}

func TestCouponRepository_IncrementUsedCount(t *testing.T) {
	t.Run("额度用尽时拒绝递增", func(t *testing.T) {
		db := setupRepoTestDB(t)
		repo := repository.NewCouponRepository(db)

		coupon := &models.Coupon{
			Code:       "LAST1",
			Type:       models.CouponTypeAmount,
			Value:      5000,
			StartTime:  time.Now(),
			EndTime:    time.Now().Add(time.Hour),
			UsageLimit: 1,
			Status:     models.CouponStatusActive,
		}
		require.NoError(t, db.Create(coupon).Error)

		require.NoError(t, repo.IncrementUsedCount(db, coupon.ID))
		err := repo.IncrementUsedCount(db, coupon.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		var fresh models.Coupon
		require.NoError(t, db.First(&fresh, coupon.ID).Error)
		assert.Equal(t, 1, fresh.UsedCount)
	})
}

func TestUserCouponRepository_MarkUsed(t *testing.T) {
	t.Run("重复标记被条件更新挡住", func(t *testing.T) {
		db := setupRepoTestDB(t)
		repo := repository.NewUserCouponRepository(db)

		uc := &models.UserCoupon{UserID: 1, CouponID: 1}
		require.NoError(t, db.Create(uc).Error)

		require.NoError(t, repo.MarkUsed(db, uc.ID, 100))
		err := repo.MarkUsed(db, uc.ID, 200)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		var fresh models.UserCoupon
		require.NoError(t, db.First(&fresh, uc.ID).Error)
		require.NotNil(t, fresh.OrderID)
		assert.Equal(t, int64(100), *fresh.OrderID)
	})
}
