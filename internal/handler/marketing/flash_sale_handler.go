// Package marketing 提供营销相关的 HTTP Handler
package marketing

import (
	"github.com/gin-gonic/gin"

	"github.com/kieugiathinh/bookstore-backend/internal/common/handler"
	"github.com/kieugiathinh/bookstore-backend/internal/common/response"
	marketingService "github.com/kieugiathinh/bookstore-backend/internal/service/marketing"
)

// FlashSaleHandler 秒杀活动处理器
type FlashSaleHandler struct {
	flashSaleService *marketingService.FlashSaleService
}

// NewFlashSaleHandler 创建秒杀活动处理器
func NewFlashSaleHandler(flashSaleSvc *marketingService.FlashSaleService) *FlashSaleHandler {
	return &FlashSaleHandler{flashSaleService: flashSaleSvc}
}

// GetActiveSales 获取进行中的秒杀活动
// @Summary 获取进行中的秒杀活动
// @Tags 营销-秒杀
// @Produce json
// @Success 200 {object} response.Response{data=[]marketing.FlashSaleInfo}
// @Router /api/v1/flash-sales [get]
func (h *FlashSaleHandler) GetActiveSales(c *gin.Context) {
	list, err := h.flashSaleService.GetActiveSales(c.Request.Context())
	handler.MustSucceed(c, err, list)
}

// GetSaleDetail 获取秒杀活动详情
// @Summary 获取秒杀活动详情
// @Tags 营销-秒杀
// @Produce json
// @Param id path int true "活动ID"
// @Success 200 {object} response.Response{data=marketing.FlashSaleInfo}
// @Router /api/v1/flash-sales/{id} [get]
func (h *FlashSaleHandler) GetSaleDetail(c *gin.Context) {
	saleID, ok := handler.ParseID(c, "秒杀活动")
	if !ok {
		return
	}

	sale, err := h.flashSaleService.GetSaleDetail(c.Request.Context(), saleID)
	handler.MustSucceed(c, err, sale)
}

// AdminCreateSale 创建秒杀活动
// @Summary 创建秒杀活动
// @Tags 管理-秒杀
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body marketing.CreateFlashSaleRequest true "创建请求"
// @Success 200 {object} response.Response{data=marketing.FlashSaleInfo}
// @Router /api/v1/admin/flash-sales [post]
func (h *FlashSaleHandler) AdminCreateSale(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	var req marketingService.CreateFlashSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	sale, err := h.flashSaleService.CreateFlashSale(c.Request.Context(), &req)
	handler.MustSucceed(c, err, sale)
}

// AdminGetSales 获取秒杀活动列表
// @Summary 获取秒杀活动列表
// @Tags 管理-秒杀
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/admin/flash-sales [get]
func (h *FlashSaleHandler) AdminGetSales(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	p := handler.BindPagination(c)

	list, total, err := h.flashSaleService.GetSaleList(c.Request.Context(), p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// AdminUpdateSaleStatus 启用或停用秒杀活动
// @Summary 启用或停用秒杀活动
// @Tags 管理-秒杀
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "活动ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/flash-sales/{id}/status [put]
func (h *FlashSaleHandler) AdminUpdateSaleStatus(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	saleID, ok := handler.ParseID(c, "秒杀活动")
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

	err := h.flashSaleService.UpdateSaleStatus(c.Request.Context(), saleID, req.Status)
	handler.MustSucceedWithMessage(c, err, "状态已更新", nil)
}
