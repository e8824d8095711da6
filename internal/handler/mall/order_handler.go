// Package mall 提供商城相关的 HTTP Handler
package mall

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kieugiathinh/bookstore-backend/internal/common/handler"
	"github.com/kieugiathinh/bookstore-backend/internal/common/response"
	mallService "github.com/kieugiathinh/bookstore-backend/internal/service/mall"
)

// OrderHandler 订单处理器
type OrderHandler struct {
	orderService *mallService.OrderService
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(orderSvc *mallService.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderSvc}
}

// CreateOrder 创建订单
// @Summary 创建订单
// @Tags 商城-订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body mall.CreateOrderRequest true "下单请求"
// @Success 200 {object} response.Response{data=mall.OrderInfo}
// @Router /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req mallService.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if handler.HandleError(c, err) {
		return
	}

	response.SuccessWithMessage(c, "下单成功", order)
}

// CancelOrder 取消订单
// @Summary 取消订单
// @Tags 商城-订单
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=mall.OrderInfo}
// @Router /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	orderID, ok := handler.ParseID(c, "订单")
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), userID, orderID)
	if handler.HandleError(c, err) {
		return
	}

	response.SuccessWithMessage(c, "订单已取消", order)
}

// GetOrderDetail 获取订单详情
// @Summary 获取订单详情
// @Tags 商城-订单
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=mall.OrderInfo}
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrderDetail(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	orderID, ok := handler.ParseID(c, "订单")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderDetail(c.Request.Context(), userID, orderID)
	handler.MustSucceed(c, err, order)
}

// GetOrders 获取订单列表
// @Summary 获取订单列表
// @Tags 商城-订单
// @Produce json
// @Security Bearer
// @Param status query int false "状态过滤"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/orders [get]
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	list, total, err := h.orderService.GetUserOrders(c.Request.Context(), userID, status, p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// AdminGetOrders 获取订单列表（管理端）
// @Summary 获取订单列表
// @Tags 管理-订单
// @Produce json
// @Security Bearer
// @Param status query int false "状态过滤"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/admin/orders [get]
func (h *OrderHandler) AdminGetOrders(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	p := handler.BindPagination(c)
	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	list, total, err := h.orderService.GetOrderList(c.Request.Context(), status, p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// AdminUpdateOrderStatus 更新订单状态
// @Summary 更新订单状态
// @Tags 管理-订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=mall.OrderInfo}
// @Router /api/v1/admin/orders/{id}/status [put]
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	orderID, ok := handler.ParseID(c, "订单")
	if !ok {
		return
	}

	var req struct {
		Status int8 `json:"status" binding:"oneof=1 2 3"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	handler.MustSucceed(c, err, order)
}

// parseStatusQuery 解析状态过滤参数
func parseStatusQuery(c *gin.Context) (*int8, bool) {
	v := c.Query("status")
	if v == "" {
		return nil, true
	}
	status, err := strconv.ParseInt(v, 10, 8)
	if err != nil {
		response.BadRequest(c, "无效的状态值")
		return nil, false
	}
	s := int8(status)
	return &s, true
}
