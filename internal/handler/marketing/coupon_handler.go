// Package marketing 提供营销相关的 HTTP Handler
package marketing

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kieugiathinh/bookstore-backend/internal/common/handler"
	"github.com/kieugiathinh/bookstore-backend/internal/common/response"
	marketingService "github.com/kieugiathinh/bookstore-backend/internal/service/marketing"
)

// CouponHandler 优惠券处理器
type CouponHandler struct {
	couponService     *marketingService.CouponService
	userCouponService *marketingService.UserCouponService
}

// NewCouponHandler 创建优惠券处理器
func NewCouponHandler(couponSvc *marketingService.CouponService, userCouponSvc *marketingService.UserCouponService) *CouponHandler {
	return &CouponHandler{
		couponService:     couponSvc,
		userCouponService: userCouponSvc,
	}
}

// GetCoupons 获取可领取的优惠券列表
// @Summary 获取可领取的优惠券列表
// @Tags 营销-优惠券
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/coupons [get]
func (h *CouponHandler) GetCoupons(c *gin.Context) {
	p := handler.BindPagination(c)

	list, total, err := h.couponService.GetActiveCoupons(c.Request.Context(), p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// ApplyCoupon 校验优惠券并计算折扣
// @Summary 校验优惠券并计算折扣
// @Tags 营销-优惠券
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body marketing.ApplyCouponRequest true "校验请求"
// @Success 200 {object} response.Response{data=marketing.ApplyCouponResult}
// @Router /api/v1/coupons/apply [post]
func (h *CouponHandler) ApplyCoupon(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req marketingService.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.couponService.ApplyCoupon(c.Request.Context(), userID, &req)
	handler.MustSucceed(c, err, result)
}

// SaveCoupon 领取优惠券到钱包
// @Summary 领取优惠券到钱包
// @Tags 营销-优惠券
// @Produce json
// @Security Bearer
// @Param id path int true "优惠券ID"
// @Success 200 {object} response.Response
// @Router /api/v1/coupons/{id}/save [post]
func (h *CouponHandler) SaveCoupon(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	couponID, ok := handler.ParseID(c, "优惠券")
	if !ok {
		return
	}

	uc, err := h.couponService.SaveCoupon(c.Request.Context(), userID, couponID)
	if handler.HandleError(c, err) {
		return
	}

	response.SuccessWithMessage(c, "领取成功", uc)
}

// GetWallet 获取优惠券钱包
// @Summary 获取优惠券钱包
// @Tags 营销-优惠券
// @Produce json
// @Security Bearer
// @Param is_used query bool false "按使用状态过滤"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/coupons/wallet [get]
func (h *CouponHandler) GetWallet(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	p := handler.BindPagination(c)

	var isUsed *bool
	if v := c.Query("is_used"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "无效的使用状态")
			return
		}
		isUsed = &b
	}

	list, total, err := h.userCouponService.GetWallet(c.Request.Context(), userID, isUsed, p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// AdminCreateCoupon 创建优惠券
// @Summary 创建优惠券
// @Tags 管理-优惠券
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body marketing.CreateCouponRequest true "创建请求"
// @Success 200 {object} response.Response{data=marketing.CouponInfo}
// @Router /api/v1/admin/coupons [post]
func (h *CouponHandler) AdminCreateCoupon(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	var req marketingService.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), &req)
	handler.MustSucceed(c, err, coupon)
}

// AdminGetCoupons 获取优惠券列表
// @Summary 获取优惠券列表
// @Tags 管理-优惠券
// @Produce json
// @Security Bearer
// @Param status query int false "状态过滤"
// @Param type query string false "类型过滤"
// @Param keyword query string false "关键词"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/admin/coupons [get]
func (h *CouponHandler) AdminGetCoupons(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	p := handler.BindPagination(c)

	req := &marketingService.CouponListRequest{
		Page:     p.Page,
		PageSize: p.PageSize,
		Type:     c.Query("type"),
		Keyword:  c.Query("keyword"),
	}
	if v := c.Query("status"); v != "" {
		status, err := strconv.ParseInt(v, 10, 8)
		if err != nil {
			response.BadRequest(c, "无效的状态值")
			return
		}
		s := int8(status)
		req.Status = &s
	}

	list, total, err := h.couponService.GetCouponList(c.Request.Context(), req)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// AdminUpdateCouponStatus 启用或停用优惠券
// @Summary 启用或停用优惠券
// @Tags 管理-优惠券
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "优惠券ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/coupons/{id}/status [put]
func (h *CouponHandler) AdminUpdateCouponStatus(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	couponID, ok := handler.ParseID(c, "优惠券")
	if !ok {
		return
	}

	var req struct {
		Status int8 `json:"status" binding:"oneof=0 1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	err := h.couponService.UpdateCouponStatus(c.Request.Context(), couponID, req.Status)
	handler.MustSucceedWithMessage(c, err, "状态已更新", nil)
}
