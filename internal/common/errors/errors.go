// Package errors 定义业务错误码和错误处理
package errors

import (
	"fmt"
	"net/http"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误（默认映射为 400）
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// NewStatus 创建指定 HTTP 状态码的应用错误
func NewStatus(status, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Status:  status,
		Message: message,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Status:  e.Status,
		Message: message,
		Err:     e.Err,
	}
}

// WithMessagef 格式化修改错误消息
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Status:  e.Status,
		Message: e.Message,
		Err:     err,
	}
}

// Is 支持 errors.Is 按错误码比较
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown       = NewStatus(http.StatusInternalServerError, 1000, "未知错误")
	ErrInvalidParams = New(1001, "参数错误")
	ErrNotFound      = NewStatus(http.StatusNotFound, 1002, "资源不存在")
	ErrAlreadyExists = New(1003, "资源已存在")
	ErrDatabaseError = NewStatus(http.StatusInternalServerError, 1004, "数据库错误")
	ErrCacheError    = NewStatus(http.StatusInternalServerError, 1005, "缓存错误")
	ErrInternalError = NewStatus(http.StatusInternalServerError, 1006, "内部错误")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = NewStatus(http.StatusUnauthorized, 2000, "未登录")
	ErrTokenExpired     = NewStatus(http.StatusUnauthorized, 2001, "登录已过期")
	ErrTokenInvalid     = NewStatus(http.StatusUnauthorized, 2002, "无效的令牌")
	ErrPermissionDenied = NewStatus(http.StatusForbidden, 2003, "权限不足")
	ErrPasswordError    = New(2004, "邮箱或密码错误")
)

// 用户错误码 (3000-3999)
var (
	ErrUserNotFound = NewStatus(http.StatusNotFound, 3000, "用户不存在")
	ErrEmailExists  = New(3001, "邮箱已被注册")
	ErrUserDisabled = NewStatus(http.StatusForbidden, 3002, "账号已禁用")
)

// 商品与订单错误码 (5000-5999)
var (
	ErrOrderNotFound     = NewStatus(http.StatusNotFound, 5000, "订单不存在")
	ErrOrderForbidden    = NewStatus(http.StatusForbidden, 5001, "无权操作该订单")
	ErrOrderStatusError  = New(5002, "订单状态不允许该操作")
	ErrOrderCannotCancel = New(5003, "已确认的订单无法取消")
	ErrProductNotFound   = NewStatus(http.StatusNotFound, 5004, "商品不存在")
	ErrProductOffShelf   = New(5005, "商品已下架")
	ErrStockInsufficient = New(5006, "库存不足")
	ErrCategoryNotFound  = NewStatus(http.StatusNotFound, 5007, "分类不存在")
)

// 营销错误码 (9000-9999)
var (
	ErrCouponNotFound    = NewStatus(http.StatusNotFound, 9000, "优惠券不存在")
	ErrCouponNotSaved    = NewStatus(http.StatusForbidden, 9001, "您尚未领取该优惠券")
	ErrCouponUsed        = New(9002, "优惠券已使用")
	ErrCouponDisabled    = New(9003, "优惠券已停用")
	ErrCouponNotStarted  = New(9004, "优惠券活动未开始")
	ErrCouponExpired     = New(9005, "优惠券已过期")
	ErrCouponExhausted   = New(9006, "优惠券已被领完")
	ErrCouponMinNotMet   = New(9007, "未达到优惠券使用门槛")
	ErrCouponDuplicate   = New(9008, "已领取过该优惠券")
	ErrFlashSaleNotFound = NewStatus(http.StatusNotFound, 9009, "秒杀活动不存在")
	ErrFlashSaleSoldOut  = New(9010, "秒杀商品已售罄")
	ErrFlashSaleInactive = New(9011, "秒杀活动未在进行中")
	ErrBannerNotFound    = NewStatus(http.StatusNotFound, 9012, "轮播图不存在")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrUnknown.WithError(err)
}
