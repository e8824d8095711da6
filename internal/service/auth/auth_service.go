// Package auth 提供认证服务
package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/common/jwt"
	"github.com/kieugiathinh/bookstore-backend/internal/common/logger"
	"github.com/kieugiathinh/bookstore-backend/internal/common/utils"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
)

// AuthService 认证服务
type AuthService struct {
	db         *gorm.DB
	userRepo   *repository.UserRepository
	jwtManager *jwt.Manager
	bcryptCost int
}

// NewAuthService 创建认证服务
func NewAuthService(db *gorm.DB, userRepo *repository.UserRepository, jwtManager *jwt.Manager, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		db:         db,
		userRepo:   userRepo,
		jwtManager: jwtManager,
		bcryptCost: bcryptCost,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=64"`
	Name     string `json:"name" binding:"required,max=50"`
	Phone    string `json:"phone"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult 认证结果
type AuthResult struct {
	UserID  int64          `json:"user_id"`
	Email   string         `json:"email"`
	Name    string         `json:"name"`
	IsAdmin bool           `json:"is_admin"`
	Token   *jwt.TokenPair `json:"token"`
}

// Register 注册新用户
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if req.Phone != "" && !utils.ValidatePhone(req.Phone) {
		return nil, errors.ErrInvalidParams.WithMessage("手机号格式错误")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	user := &models.User{
		Email:    req.Email,
		Password: string(hashed),
		Name:     req.Name,
		Status:   models.UserStatusActive,
	}
	if req.Phone != "" {
		user.Phone = utils.StringPtr(req.Phone)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		return nil, errors.ErrEmailExists.WithError(err)
	}

	logger.Info("用户已注册", logger.UserID(user.ID), logger.String("email", user.Email))

	return s.issueToken(user)
}

// Login 登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPasswordError
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.ErrPasswordError
	}

	if user.Status != models.UserStatusActive {
		return nil, errors.ErrUserDisabled
	}

	logger.Info("用户已登录", logger.UserID(user.ID))

	return s.issueToken(user)
}

// RefreshToken 刷新令牌
func (s *AuthService) RefreshToken(refreshToken string) (*jwt.TokenPair, error) {
	pair, err := s.jwtManager.RefreshToken(refreshToken)
	if err != nil {
		return nil, errors.ErrTokenInvalid.WithError(err)
	}
	return pair, nil
}

// issueToken 签发令牌
func (s *AuthService) issueToken(user *models.User) (*AuthResult, error) {
	userType := jwt.UserTypeUser
	if user.IsAdmin {
		userType = jwt.UserTypeAdmin
	}

	pair, err := s.jwtManager.GenerateTokenPair(user.ID, userType)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	return &AuthResult{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
		Token:   pair,
	}, nil
}
