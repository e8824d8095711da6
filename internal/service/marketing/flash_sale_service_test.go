// Package marketing_test 秒杀活动服务测试
package marketing_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kieugiathinh/bookstore-backend/internal/common/cache"
	apperrors "github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
	"github.com/kieugiathinh/bookstore-backend/internal/service/marketing"
)

// setupFlashSaleTestDB 创建测试数据库和 Redis
func setupFlashSaleTestDB(t *testing.T) (*gorm.DB, *miniredis.Miniredis) {
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
		&models.FlashSale{},
		&models.FlashSaleItem{},
	)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	return db, mr
}

// newFlashSaleService 创建测试服务
func newFlashSaleService(db *gorm.DB) *marketing.FlashSaleService {
	return marketing.NewFlashSaleService(db,
		repository.NewFlashSaleRepository(db),
		repository.NewProductRepository(db))
}

// seedProduct 创建测试商品
func seedProduct(t *testing.T, db *gorm.DB, price float64) *models.Product {
	t.Helper()

	category := &models.Category{Name: "文学", Status: models.CategoryStatusActive}
	require.NoError(t, db.Create(category).Error)

	product := &models.Product{
		CategoryID:   category.ID,
		Title:        "活着",
		Author:       "余华",
		Img:          "https://img.test/huozhe.jpg",
		Price:        price,
		CountInStock: 100,
		Status:       models.ProductStatusOnSale,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// seedSale 创建进行中的秒杀活动
func seedSale(t *testing.T, db *gorm.DB, productID int64, opts ...func(*models.FlashSale)) *models.FlashSale {
	t.Helper()

	sale := &models.FlashSale{
		Name:      "午夜场秒杀",
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
		Status:    models.FlashSaleStatusActive,
		Items: []models.FlashSaleItem{
			{ProductID: productID, DiscountPrice: 50000, QuantityLimit: 20},
		},
	}
	for _, opt := range opts {
		opt(sale)
	}
	require.NoError(t, db.Create(sale).Error)
	return sale
}

func TestFlashSaleService_GetActiveSales(t *testing.T) {
	ctx := context.Background()

	t.Run("只返回进行中的活动", func(t *testing.T) {
		db, _ := setupFlashSaleTestDB(t)
		svc := newFlashSaleService(db)
		product := seedProduct(t, db, 100000)

		seedSale(t, db, product.ID)
		seedSale(t, db, product.ID, func(s *models.FlashSale) {
			s.Name = "已结束"
			s.StartTime = time.Now().Add(-3 * time.Hour)
			s.EndTime = time.Now().Add(-time.Hour)
		})

		list, err := svc.GetActiveSales(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "午夜场秒杀", list[0].Name)
		require.Len(t, list[0].Items, 1)
		assert.Equal(t, "活着", list[0].Items[0].Title)
		assert.Equal(t, float64(100000), list[0].Items[0].OriginalPrice)
		assert.Equal(t, float64(50000), list[0].Items[0].DiscountPrice)
		assert.Equal(t, 20, list[0].Items[0].Remaining)
	})

	t.Run("第二次读取命中缓存", func(t *testing.T) {
		db, mr := setupFlashSaleTestDB(t)
		svc := newFlashSaleService(db)
		product := seedProduct(t, db, 100000)
		seedSale(t, db, product.ID)

		first, err := svc.GetActiveSales(ctx)
		require.NoError(t, err)
		assert.True(t, mr.Exists("flashsale:active"))

		// 直接改库不会反映在缓存期内的读取中
		require.NoError(t, db.Model(&models.FlashSale{}).
			Where("name = ?", "午夜场秒杀").
			Update("status", models.FlashSaleStatusDisabled).Error)

		second, err := svc.GetActiveSales(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(first), len(second))
	})

	t.Run("缓存过期后回源", func(t *testing.T) {
		db, mr := setupFlashSaleTestDB(t)
		svc := newFlashSaleService(db)
		product := seedProduct(t, db, 100000)
		seedSale(t, db, product.ID)

		_, err := svc.GetActiveSales(ctx)
		require.NoError(t, err)

		require.NoError(t, db.Model(&models.FlashSale{}).
			Where("name = ?", "午夜场秒杀").
			Update("status", models.FlashSaleStatusDisabled).Error)
		mr.FastForward(time.Minute)

		list, err := svc.GetActiveSales(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestFlashSaleService_CreateFlashSale(t *testing.T) {
	ctx := context.Background()

	t.Run("正常创建并失效缓存", func(t *testing.T) {
		db, mr := setupFlashSaleTestDB(t)
		svc := newFlashSaleService(db)
		product := seedProduct(t, db, 100000)

		// 预热缓存
		_, err := svc.GetActiveSales(ctx)
		require.NoError(t, err)
		require.True(t, mr.Exists("flashsale:active"))

		info, err := svc.CreateFlashSale(ctx, &marketing.CreateFlashSaleRequest{
			Name:      "新书首发",
			StartTime: time.Now(),
			EndTime:   time.Now().Add(2 * time.Hour),
			Items: []marketing.CreateFlashSaleItemRequest{
				{ProductID: product.ID, DiscountPrice: 60000, QuantityLimit: 10},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "新书首发", info.Name)
		require.Len(t, info.Items, 1)
		assert.Equal(t, 10, info.Items[0].Remaining)

		assert.False(t, mr.Exists("flashsale:active"))
	})

	t.Run("秒杀价不得高于原价", func(t *testing.T) {
		db, _ := setupFlashSaleTestDB(t)
		svc := newFlashSaleService(db)
		product := seedProduct(t, db, 100000)

		_, err := svc.CreateFlashSale(ctx, &marketing.CreateFlashSaleRequest{
			Name:      "非法价格",
			StartTime: time.Now(),
			EndTime:   time.Now().Add(time.Hour),
			Items: []marketing.CreateFlashSaleItemRequest{
				{ProductID: product.ID, DiscountPrice: 100000, QuantityLimit: 10},
			},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
	})

	t.Run("商品不存在", func(t *testing.T) {
		db, _ := setupFlashSaleTestDB(t)
		svc := newFlashSaleService(db)

		_, err := svc.CreateFlashSale(ctx, &marketing.CreateFlashSaleRequest{
			Name:      "幽灵商品",
			StartTime: time.Now(),
			EndTime:   time.Now().Add(time.Hour),
			Items: []marketing.CreateFlashSaleItemRequest{
				{ProductID: 999, DiscountPrice: 1000, QuantityLimit: 10},
			},
		})
		assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	})
}

func TestFlashSaleService_UpdateSaleStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("停用后不再出现在活动列表", func(t *testing.T) {
		db, _ := setupFlashSaleTestDB(t)
		svc := newFlashSaleService(db)
		product := seedProduct(t, db, 100000)
		sale := seedSale(t, db, product.ID)

		require.NoError(t, svc.UpdateSaleStatus(ctx, sale.ID, models.FlashSaleStatusDisabled))

		list, err := svc.GetActiveSales(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("活动不存在", func(t *testing.T) {
		db, _ := setupFlashSaleTestDB(t)
		svc := newFlashSaleService(db)

		err := svc.UpdateSaleStatus(ctx, 999, models.FlashSaleStatusDisabled)
		assert.ErrorIs(t, err, apperrors.ErrFlashSaleNotFound)
	})
}
