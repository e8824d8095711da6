// Package marketing 提供营销相关服务
package marketing

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/common/logger"
	"github.com/kieugiathinh/bookstore-backend/internal/common/metrics"
	"github.com/kieugiathinh/bookstore-backend/internal/common/utils"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
)

// CouponService 优惠券服务
type CouponService struct {
	db             *gorm.DB
	couponRepo     *repository.CouponRepository
	userCouponRepo *repository.UserCouponRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(db *gorm.DB, couponRepo *repository.CouponRepository, userCouponRepo *repository.UserCouponRepository) *CouponService {
	return &CouponService{
		db:             db,
		couponRepo:     couponRepo,
		userCouponRepo: userCouponRepo,
	}
}

// ApplyCouponRequest 优惠券校验请求
type ApplyCouponRequest struct {
	CouponCode string  `json:"coupon_code" binding:"required"`
	CartTotal  float64 `json:"cart_total" binding:"required,gt=0"`
}

// ApplyCouponResult 优惠券校验结果
type ApplyCouponResult struct {
	Success        bool    `json:"success"`
	CouponCode     string  `json:"coupon_code"`
	CouponID       int64   `json:"coupon_id"`
	UserCouponID   int64   `json:"user_coupon_id"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalPrice     float64 `json:"final_price"`
	Message        string  `json:"message"`
}

// ApplyCoupon 校验优惠券并计算折扣
// 纯计算操作：不写任何状态，购物车变化时可反复调用
func (s *CouponService) ApplyCoupon(ctx context.Context, userID int64, req *ApplyCouponRequest) (*ApplyCouponResult, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, req.CouponCode)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			metrics.GetMetrics().RecordCouponApplied("not_found")
			return nil, errors.ErrCouponNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	uc, err := s.userCouponRepo.GetByUserIDAndCouponID(ctx, userID, coupon.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			metrics.GetMetrics().RecordCouponApplied("not_saved")
			return nil, errors.ErrCouponNotSaved
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if err := validateCoupon(coupon, uc, req.CartTotal, time.Now()); err != nil {
		metrics.GetMetrics().RecordCouponApplied("rejected")
		return nil, err
	}

	discount := calculateDiscount(coupon, req.CartTotal)
	metrics.GetMetrics().RecordCouponApplied("ok")

	logger.Info("优惠券校验通过",
		logger.UserID(userID),
		logger.CouponCode(coupon.Code),
		logger.Float64("cart_total", req.CartTotal),
		logger.Float64("discount", discount),
	)

	return &ApplyCouponResult{
		Success:        true,
		CouponCode:     coupon.Code,
		CouponID:       coupon.ID,
		UserCouponID:   uc.ID,
		DiscountAmount: discount,
		FinalPrice:     req.CartTotal - discount,
		Message:        "优惠券可用",
	}, nil
}

// validateCoupon 按固定顺序校验优惠券可用性
// 顺序：已使用 → 已停用 → 未开始 → 已过期 → 额度用尽 → 未达门槛
func validateCoupon(coupon *models.Coupon, uc *models.UserCoupon, cartTotal float64, now time.Time) error {
	if uc.IsUsed {
		return errors.ErrCouponUsed
	}
	if coupon.Status != models.CouponStatusActive {
		return errors.ErrCouponDisabled
	}
	if now.Before(coupon.StartTime) {
		return errors.ErrCouponNotStarted
	}
	if now.After(coupon.EndTime) {
		return errors.ErrCouponExpired
	}
	if coupon.UsedCount >= coupon.UsageLimit {
		return errors.ErrCouponExhausted.WithMessage("优惠券使用次数已达上限")
	}
	if cartTotal < coupon.MinOrder {
		return errors.ErrCouponMinNotMet.
			WithMessagef("订单满 %s 元才能使用该优惠券", utils.FormatAmount(coupon.MinOrder))
	}
	return nil
}

// calculateDiscount 计算折扣金额
// PERCENT 按百分比计算并受 max_discount 封顶（0 表示不封顶），
// 最终折扣不超过购物车总额
func calculateDiscount(coupon *models.Coupon, cartTotal float64) float64 {
	var raw float64
	switch coupon.Type {
	case models.CouponTypePercent:
		raw = cartTotal * coupon.Value / 100
		if coupon.MaxDiscount > 0 && raw > coupon.MaxDiscount {
			raw = coupon.MaxDiscount
		}
	case models.CouponTypeAmount:
		raw = coupon.Value
	default:
		return 0
	}

	return utils.Min(raw, cartTotal)
}

// SaveCoupon 领取优惠券到钱包
func (s *CouponService) SaveCoupon(ctx context.Context, userID, couponID int64) (*models.UserCoupon, error) {
	coupon, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCouponNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	now := time.Now()
	if coupon.Status != models.CouponStatusActive {
		return nil, errors.ErrCouponDisabled
	}
	if now.After(coupon.EndTime) {
		return nil, errors.ErrCouponExpired
	}
	if coupon.UsedCount >= coupon.UsageLimit {
		return nil, errors.ErrCouponExhausted
	}

	exists, err := s.userCouponRepo.Exists(ctx, userID, couponID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrCouponDuplicate
	}

	uc := &models.UserCoupon{
		UserID:   userID,
		CouponID: couponID,
	}
	if err := s.userCouponRepo.Create(ctx, uc); err != nil {
		// 并发领取时由唯一索引兜底
		return nil, errors.ErrCouponDuplicate.WithError(err)
	}

	logger.Info("优惠券已领取",
		logger.UserID(userID),
		logger.CouponCode(coupon.Code),
	)

	return uc, nil
}

// UseCoupon 在订单事务内标记优惠券使用
// 两步条件更新：钱包条目翻转 is_used，优惠券全局计数递增；
// 任一步 RowsAffected 为 0 说明并发竞争失败，整个事务回滚
func (s *CouponService) UseCoupon(tx *gorm.DB, userCouponID, couponID, orderID int64) error {
	if err := s.userCouponRepo.MarkUsed(tx, userCouponID, orderID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrCouponUsed
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	if err := s.couponRepo.IncrementUsedCount(tx, couponID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrCouponExhausted.WithMessage("优惠券使用次数已达上限")
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// ReleaseCoupon 在订单取消事务内回退优惠券使用
func (s *CouponService) ReleaseCoupon(tx *gorm.DB, userCouponID, couponID int64) error {
	if err := s.userCouponRepo.MarkUnused(tx, userCouponID); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if err := s.couponRepo.DecrementUsedCount(tx, couponID); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// CouponInfo 优惠券信息
type CouponInfo struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Value       float64   `json:"value"`
	MaxDiscount float64   `json:"max_discount"`
	MinOrder    float64   `json:"min_order"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	UsageLimit  int       `json:"usage_limit"`
	UsedCount   int       `json:"used_count"`
	Status      int8      `json:"status"`
	Remaining   int       `json:"remaining"`
}

// buildCouponInfo 构建优惠券信息
func buildCouponInfo(c *models.Coupon) *CouponInfo {
	remaining := c.UsageLimit - c.UsedCount
	if remaining < 0 {
		remaining = 0
	}
	return &CouponInfo{
		ID:          c.ID,
		Code:        c.Code,
		Description: c.Description,
		Type:        c.Type,
		Value:       c.Value,
		MaxDiscount: c.MaxDiscount,
		MinOrder:    c.MinOrder,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		UsageLimit:  c.UsageLimit,
		UsedCount:   c.UsedCount,
		Status:      c.Status,
		Remaining:   remaining,
	}
}

// GetActiveCoupons 获取当前可领取的优惠券列表（用户端）
func (s *CouponService) GetActiveCoupons(ctx context.Context, page, pageSize int) ([]*CouponInfo, int64, error) {
	offset := (page - 1) * pageSize

	coupons, total, err := s.couponRepo.ListActive(ctx, offset, pageSize)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	list := make([]*CouponInfo, 0, len(coupons))
	for _, c := range coupons {
		list = append(list, buildCouponInfo(c))
	}
	return list, total, nil
}

// CreateCouponRequest 创建优惠券请求（管理端）
type CreateCouponRequest struct {
	Code        string    `json:"code" binding:"omitempty,min=3,max=50"`
	Description string    `json:"description"`
	Type        string    `json:"type" binding:"required,oneof=amount percent"`
	Value       float64   `json:"value" binding:"required,gt=0"`
	MaxDiscount float64   `json:"max_discount" binding:"gte=0"`
	MinOrder    float64   `json:"min_order" binding:"gte=0"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	UsageLimit  int       `json:"usage_limit" binding:"required,gt=0"`
}

// CreateCoupon 创建优惠券（管理端）
func (s *CouponService) CreateCoupon(ctx context.Context, req *CreateCouponRequest) (*CouponInfo, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, errors.ErrInvalidParams.WithMessage("结束时间必须晚于开始时间")
	}
	if req.Type == models.CouponTypePercent && req.Value > 100 {
		return nil, errors.ErrInvalidParams.WithMessage("折扣比例不能超过100")
	}

	// 未指定券码时自动生成
	code := req.Code
	if code == "" {
		code = utils.GenerateCouponCode(8)
	}

	if _, err := s.couponRepo.GetByCode(ctx, code); err == nil {
		return nil, errors.ErrAlreadyExists.WithMessage("券码已存在")
	} else if err != gorm.ErrRecordNotFound {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	coupon := &models.Coupon{
		Code:        code,
		Description: req.Description,
		Type:        req.Type,
		Value:       req.Value,
		MaxDiscount: req.MaxDiscount,
		MinOrder:    req.MinOrder,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		UsageLimit:  req.UsageLimit,
		Status:      models.CouponStatusActive,
	}
	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	return buildCouponInfo(coupon), nil
}

// CouponListRequest 优惠券列表请求（管理端）
type CouponListRequest struct {
	Page     int
	PageSize int
	Status   *int8
	Type     string
	Keyword  string
}

// GetCouponList 获取优惠券列表（管理端）
func (s *CouponService) GetCouponList(ctx context.Context, req *CouponListRequest) ([]*CouponInfo, int64, error) {
	offset := (req.Page - 1) * req.PageSize

	coupons, total, err := s.couponRepo.List(ctx, repository.CouponListParams{
		Offset:  offset,
		Limit:   req.PageSize,
		Status:  req.Status,
		Type:    req.Type,
		Keyword: req.Keyword,
	})
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	list := make([]*CouponInfo, 0, len(coupons))
	for _, c := range coupons {
		list = append(list, buildCouponInfo(c))
	}
	return list, total, nil
}

// UpdateCouponStatus 启用或停用优惠券（管理端）
// 优惠券永不删除，只做状态标记
func (s *CouponService) UpdateCouponStatus(ctx context.Context, id int64, status int8) error {
	if status != models.CouponStatusDisabled && status != models.CouponStatusActive {
		return errors.ErrInvalidParams.WithMessage("无效的状态值")
	}
	if _, err := s.couponRepo.GetByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrCouponNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return s.couponRepo.UpdateFields(ctx, id, map[string]interface{}{"status": status})
}
