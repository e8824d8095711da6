// Package marketing_test 优惠券服务测试
package marketing_test

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

	apperrors "github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
	"github.com/kieugiathinh/bookstore-backend/internal/service/marketing"
)

// setupCouponTestDB 创建测试数据库
func setupCouponTestDB(t *testing.T) *gorm.DB {
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
		&models.User{},
		&models.Coupon{},
		&models.UserCoupon{},
	)
	require.NoError(t, err)

	return db
}

// newCouponService 创建测试服务
func newCouponService(db *gorm.DB) *marketing.CouponService {
	couponRepo := repository.NewCouponRepository(db)
	userCouponRepo := repository.NewUserCouponRepository(db)
	return marketing.NewCouponService(db, couponRepo, userCouponRepo)
}

// createUser 创建测试用户
func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Email:    fmt.Sprintf("%s@test.local", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "_"))),
		Password: "hashed",
		Name:     "测试用户",
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createCoupon 创建测试优惠券
func createCoupon(t *testing.T, db *gorm.DB, opts ...func(*models.Coupon)) *models.Coupon {
	t.Helper()

	coupon := &models.Coupon{
		Code:       "SALE10",
		Type:       models.CouponTypePercent,
		Value:      10,
		MinOrder:   0,
		StartTime:  time.Now().Add(-time.Hour),
		EndTime:    time.Now().Add(24 * time.Hour),
		UsageLimit: 100,
		Status:     models.CouponStatusActive,
	}
	for _, opt := range opts {
		opt(coupon)
	}

	// GORM 跳过零值字段，禁用状态需要显式更新
	originalStatus := coupon.Status
	require.NoError(t, db.Create(coupon).Error)
	if originalStatus == models.CouponStatusDisabled {
		require.NoError(t, db.Model(coupon).Update("status", originalStatus).Error)
	}
	return coupon
}

// saveToWallet 将优惠券放入用户钱包
func saveToWallet(t *testing.T, db *gorm.DB, userID, couponID int64, opts ...func(*models.UserCoupon)) *models.UserCoupon {
	t.Helper()

	uc := &models.UserCoupon{
		UserID:   userID,
		CouponID: couponID,
	}
	for _, opt := range opts {
		opt(uc)
	}
	require.NoError(t, db.Create(uc).Error)
	return uc
}

func applyReq(code string, cartTotal float64) *marketing.ApplyCouponRequest {
	return &marketing.ApplyCouponRequest{CouponCode: code, CartTotal: cartTotal}
}

func TestCouponService_ApplyCoupon_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("券码不存在", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)

		_, err := svc.ApplyCoupon(ctx, user.ID, applyReq("NOPE", 100000))
		assert.ErrorIs(t, err, apperrors.ErrCouponNotFound)
	})

	t.Run("未领取到钱包", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		createCoupon(t, db)

		_, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 100000))
		assert.ErrorIs(t, err, apperrors.ErrCouponNotSaved)
	})

	t.Run("已使用", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db)
		saveToWallet(t, db, user.ID, coupon.ID, func(uc *models.UserCoupon) {
			uc.IsUsed = true
		})

		_, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 100000))
		assert.ErrorIs(t, err, apperrors.ErrCouponUsed)
	})

	t.Run("已停用", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.Status = models.CouponStatusDisabled
		})
		saveToWallet(t, db, user.ID, coupon.ID)

		_, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 100000))
		assert.ErrorIs(t, err, apperrors.ErrCouponDisabled)
	})

	t.Run("活动未开始", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.StartTime = time.Now().Add(time.Hour)
			c.EndTime = time.Now().Add(48 * time.Hour)
		})
		saveToWallet(t, db, user.ID, coupon.ID)

		_, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 100000))
		assert.ErrorIs(t, err, apperrors.ErrCouponNotStarted)
	})

	t.Run("已过期", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.StartTime = time.Now().Add(-48 * time.Hour)
			c.EndTime = time.Now().Add(-time.Hour)
		})
		saveToWallet(t, db, user.ID, coupon.ID)

		_, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 100000))
		assert.ErrorIs(t, err, apperrors.ErrCouponExpired)
	})

	t.Run("全局额度用尽", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.UsageLimit = 5
			c.UsedCount = 5
		})
		saveToWallet(t, db, user.ID, coupon.ID)

		_, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 100000))
		assert.ErrorIs(t, err, apperrors.ErrCouponExhausted)
	})

	t.Run("未达使用门槛时提示门槛金额", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.MinOrder = 100000
		})
		saveToWallet(t, db, user.ID, coupon.ID)

		_, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 99999))
		assert.ErrorIs(t, err, apperrors.ErrCouponMinNotMet)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Message, "100000")
	})

	t.Run("已使用优先于已过期", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.StartTime = time.Now().Add(-48 * time.Hour)
			c.EndTime = time.Now().Add(-time.Hour)
		})
		saveToWallet(t, db, user.ID, coupon.ID, func(uc *models.UserCoupon) {
			uc.IsUsed = true
		})

		_, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 100000))
		assert.ErrorIs(t, err, apperrors.ErrCouponUsed)
	})

	t.Run("券码大小写不敏感", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db)
		saveToWallet(t, db, user.ID, coupon.ID)

		result, err := svc.ApplyCoupon(ctx, user.ID, applyReq("sale10", 100000))
		require.NoError(t, err)
		assert.Equal(t, "SALE10", result.CouponCode)
	})
}

func TestCouponService_ApplyCoupon_Discount(t *testing.T) {
	ctx := context.Background()

	t.Run("百分比折扣", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db)
		saveToWallet(t, db, user.ID, coupon.ID)

		result, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 250000))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, float64(25000), result.DiscountAmount)
		assert.Equal(t, float64(225000), result.FinalPrice)
	})

	t.Run("百分比折扣受封顶限制", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.MaxDiscount = 20000
		})
		saveToWallet(t, db, user.ID, coupon.ID)

		result, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 500000))
		require.NoError(t, err)
		assert.Equal(t, float64(20000), result.DiscountAmount)
		assert.Equal(t, float64(480000), result.FinalPrice)
	})

	t.Run("封顶为零时不限制", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.MaxDiscount = 0
		})
		saveToWallet(t, db, user.ID, coupon.ID)

		result, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 500000))
		require.NoError(t, err)
		assert.Equal(t, float64(50000), result.DiscountAmount)
	})

	t.Run("固定金额折扣", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.Code = "MINUS30K"
			c.Type = models.CouponTypeAmount
			c.Value = 30000
		})
		saveToWallet(t, db, user.ID, coupon.ID)

		result, err := svc.ApplyCoupon(ctx, user.ID, applyReq("MINUS30K", 100000))
		require.NoError(t, err)
		assert.Equal(t, float64(30000), result.DiscountAmount)
		assert.Equal(t, float64(70000), result.FinalPrice)
	})

	t.Run("折扣不超过购物车总额", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.Code = "MINUS50K"
			c.Type = models.CouponTypeAmount
			c.Value = 50000
		})
		saveToWallet(t, db, user.ID, coupon.ID)

		result, err := svc.ApplyCoupon(ctx, user.ID, applyReq("MINUS50K", 30000))
		require.NoError(t, err)
		assert.Equal(t, float64(30000), result.DiscountAmount)
		assert.Equal(t, float64(0), result.FinalPrice)
	})

	t.Run("重复校验无副作用", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db)
		saveToWallet(t, db, user.ID, coupon.ID)

		first, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 250000))
		require.NoError(t, err)
		second, err := svc.ApplyCoupon(ctx, user.ID, applyReq("SALE10", 250000))
		require.NoError(t, err)
		assert.Equal(t, first.DiscountAmount, second.DiscountAmount)

		var fresh models.Coupon
		require.NoError(t, db.First(&fresh, coupon.ID).Error)
		assert.Equal(t, 0, fresh.UsedCount)

		var uc models.UserCoupon
		require.NoError(t, db.Where("user_id = ? AND coupon_id = ?", user.ID, coupon.ID).First(&uc).Error)
		assert.False(t, uc.IsUsed)
	})
}

func TestCouponService_SaveCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("正常领取", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db)

		uc, err := svc.SaveCoupon(ctx, user.ID, coupon.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, uc.UserID)
		assert.Equal(t, coupon.ID, uc.CouponID)
		assert.False(t, uc.IsUsed)
	})

	t.Run("重复领取不改变钱包", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db)

		_, err := svc.SaveCoupon(ctx, user.ID, coupon.ID)
		require.NoError(t, err)

		_, err = svc.SaveCoupon(ctx, user.ID, coupon.ID)
		assert.ErrorIs(t, err, apperrors.ErrCouponDuplicate)

		var count int64
		require.NoError(t, db.Model(&models.UserCoupon{}).
			Where("user_id = ? AND coupon_id = ?", user.ID, coupon.ID).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("优惠券不存在", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)

		_, err := svc.SaveCoupon(ctx, user.ID, 999)
		assert.ErrorIs(t, err, apperrors.ErrCouponNotFound)
	})

	t.Run("已过期不可领取", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		user := createUser(t, db)
		coupon := createCoupon(t, db, func(c *models.Coupon) {
			c.StartTime = time.Now().Add(-48 * time.Hour)
			c.EndTime = time.Now().Add(-time.Hour)
		})

		_, err := svc.SaveCoupon(ctx, user.ID, coupon.ID)
		assert.ErrorIs(t, err, apperrors.ErrCouponExpired)
	})
}

func TestCouponService_CreateCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("正常创建", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)

		info, err := svc.CreateCoupon(ctx, &marketing.CreateCouponRequest{
			Code:       "NEWYEAR",
			Type:       models.CouponTypeAmount,
			Value:      20000,
			MinOrder:   100000,
			StartTime:  time.Now(),
			EndTime:    time.Now().Add(72 * time.Hour),
			UsageLimit: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, "NEWYEAR", info.Code)
		assert.Equal(t, 50, info.Remaining)
	})

	t.Run("未指定券码时自动生成", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)

		info, err := svc.CreateCoupon(ctx, &marketing.CreateCouponRequest{
			Type:       models.CouponTypeAmount,
			Value:      10000,
			StartTime:  time.Now(),
			EndTime:    time.Now().Add(72 * time.Hour),
			UsageLimit: 10,
		})
		require.NoError(t, err)
		assert.Len(t, info.Code, 8)
		for _, c := range "0OI1" {
			assert.NotContains(t, info.Code, string(c))
		}

		// 生成的券码可以正常走申请校验
		var coupon models.Coupon
		require.NoError(t, db.Where("code = ?", info.Code).First(&coupon).Error)
	})

	t.Run("券码重复", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)
		createCoupon(t, db)

		_, err := svc.CreateCoupon(ctx, &marketing.CreateCouponRequest{
			Code:       "SALE10",
			Type:       models.CouponTypePercent,
			Value:      10,
			StartTime:  time.Now(),
			EndTime:    time.Now().Add(time.Hour),
			UsageLimit: 10,
		})
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	})

	t.Run("结束时间早于开始时间", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)

		_, err := svc.CreateCoupon(ctx, &marketing.CreateCouponRequest{
			Code:       "BADTIME",
			Type:       models.CouponTypePercent,
			Value:      10,
			StartTime:  time.Now().Add(time.Hour),
			EndTime:    time.Now(),
			UsageLimit: 10,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
	})

	t.Run("折扣比例超过100", func(t *testing.T) {
		db := setupCouponTestDB(t)
		svc := newCouponService(db)

		_, err := svc.CreateCoupon(ctx, &marketing.CreateCouponRequest{
			Code:       "BADPCT",
			Type:       models.CouponTypePercent,
			Value:      120,
			StartTime:  time.Now(),
			EndTime:    time.Now().Add(time.Hour),
			UsageLimit: 10,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
	})
}
