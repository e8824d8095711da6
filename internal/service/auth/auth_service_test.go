// Package auth_test 认证服务测试
package auth_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/common/jwt"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
	authService "github.com/kieugiathinh/bookstore-backend/internal/service/auth"
)

// setupAuthTestDB 创建测试数据库
func setupAuthTestDB(t *testing.T) *gorm.DB {
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

	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

// newAuthService 创建测试服务
func newAuthService(db *gorm.DB) *authService.AuthService {
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            "test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "bookstore-test",
	})
	return authService.NewAuthService(db, repository.NewUserRepository(db), jwtManager, bcrypt.MinCost)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("正常注册", func(t *testing.T) {
		db := setupAuthTestDB(t)
		svc := newAuthService(db)

		result, err := svc.Register(ctx, &authService.RegisterRequest{
			Email:    "reader@test.local",
			Password: "secret123",
			Name:     "读者",
		})
		require.NoError(t, err)
		assert.Equal(t, "reader@test.local", result.Email)
		assert.False(t, result.IsAdmin)
		require.NotNil(t, result.Token)
		assert.NotEmpty(t, result.Token.AccessToken)
		assert.NotEmpty(t, result.Token.RefreshToken)

		// 密码不落明文
		var user models.User
		require.NoError(t, db.First(&user, result.UserID).Error)
		assert.NotEqual(t, "secret123", user.Password)
	})

	t.Run("邮箱重复", func(t *testing.T) {
		db := setupAuthTestDB(t)
		svc := newAuthService(db)

		_, err := svc.Register(ctx, &authService.RegisterRequest{
			Email:    "reader@test.local",
			Password: "secret123",
			Name:     "读者",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, &authService.RegisterRequest{
			Email:    "reader@test.local",
			Password: "another",
			Name:     "冒充者",
		})
		assert.ErrorIs(t, err, apperrors.ErrEmailExists)
	})

	t.Run("手机号格式错误", func(t *testing.T) {
		db := setupAuthTestDB(t)
		svc := newAuthService(db)

		_, err := svc.Register(ctx, &authService.RegisterRequest{
			Email:    "reader@test.local",
			Password: "secret123",
			Name:     "读者",
			Phone:    "12345",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, svc *authService.AuthService) {
		t.Helper()
		_, err := svc.Register(ctx, &authService.RegisterRequest{
			Email:    "reader@test.local",
			Password: "secret123",
			Name:     "读者",
		})
		require.NoError(t, err)
	}

	t.Run("正常登录", func(t *testing.T) {
		db := setupAuthTestDB(t)
		svc := newAuthService(db)
		register(t, svc)

		result, err := svc.Login(ctx, &authService.LoginRequest{
			Email:    "reader@test.local",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token.AccessToken)
	})

	t.Run("密码错误与用户不存在返回同一错误", func(t *testing.T) {
		db := setupAuthTestDB(t)
		svc := newAuthService(db)
		register(t, svc)

		_, badPwd := svc.Login(ctx, &authService.LoginRequest{
			Email:    "reader@test.local",
			Password: "wrong",
		})
		_, noUser := svc.Login(ctx, &authService.LoginRequest{
			Email:    "ghost@test.local",
			Password: "whatever",
		})
		assert.ErrorIs(t, badPwd, apperrors.ErrPasswordError)
		assert.ErrorIs(t, noUser, apperrors.ErrPasswordError)
	})

	t.Run("禁用账号不可登录", func(t *testing.T) {
		db := setupAuthTestDB(t)
		svc := newAuthService(db)
		register(t, svc)

		require.NoError(t, db.Model(&models.User{}).
			Where("email = ?", "reader@test.local").
			Update("status", models.UserStatusDisabled).Error)

		_, err := svc.Login(ctx, &authService.LoginRequest{
			Email:    "reader@test.local",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, apperrors.ErrUserDisabled)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("刷新令牌", func(t *testing.T) {
		db := setupAuthTestDB(t)
		svc := newAuthService(db)

		result, err := svc.Register(ctx, &authService.RegisterRequest{
			Email:    "reader@test.local",
			Password: "secret123",
			Name:     "读者",
		})
		require.NoError(t, err)

		pair, err := svc.RefreshToken(result.Token.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("非法令牌", func(t *testing.T) {
		db := setupAuthTestDB(t)
		svc := newAuthService(db)

		_, err := svc.RefreshToken("not-a-token")
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}
