// Package content 提供内容相关的 HTTP Handler
package content

import (
	"github.com/gin-gonic/gin"

	"github.com/kieugiathinh/bookstore-backend/internal/common/handler"
	"github.com/kieugiathinh/bookstore-backend/internal/common/response"
	contentService "github.com/kieugiathinh/bookstore-backend/internal/service/content"
)

// BannerHandler 轮播图处理器
type BannerHandler struct {
	bannerService *contentService.BannerService
}

// NewBannerHandler 创建轮播图处理器
func NewBannerHandler(bannerSvc *contentService.BannerService) *BannerHandler {
	return &BannerHandler{bannerService: bannerSvc}
}

// GetActiveBanners 获取生效中的轮播图
// @Summary 获取轮播图
// @Tags 内容-轮播图
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Banner}
// @Router /api/v1/banners [get]
func (h *BannerHandler) GetActiveBanners(c *gin.Context) {
	banners, err := h.bannerService.GetActiveBanners(c.Request.Context())
	handler.MustSucceed(c, err, banners)
}

// RecordClick 记录轮播图点击
// @Summary 记录轮播图点击
// @Tags 内容-轮播图
// @Produce json
// @Param id path int true "轮播图ID"
// @Success 200 {object} response.Response
// @Router /api/v1/banners/{id}/click [post]
func (h *BannerHandler) RecordClick(c *gin.Context) {
	id, ok := handler.ParseID(c, "轮播图")
	if !ok {
		return
	}

	err := h.bannerService.RecordClick(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// AdminCreateBanner 创建轮播图
// @Summary 创建轮播图
// @Tags 管理-轮播图
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body content.CreateBannerRequest true "轮播图信息"
// @Success 200 {object} response.Response{data=models.Banner}
// @Router /api/v1/admin/banners [post]
func (h *BannerHandler) AdminCreateBanner(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	var req contentService.CreateBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	banner, err := h.bannerService.CreateBanner(c.Request.Context(), &req)
	if handler.HandleError(c, err) {
		return
	}

	response.SuccessWithMessage(c, "创建成功", banner)
}

// AdminUpdateBanner 更新轮播图
// @Summary 更新轮播图
// @Tags 管理-轮播图
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "轮播图ID"
// @Success 200 {object} response.Response{data=models.Banner}
// @Router /api/v1/admin/banners/{id} [put]
func (h *BannerHandler) AdminUpdateBanner(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	id, ok := handler.ParseID(c, "轮播图")
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	banner, err := h.bannerService.UpdateBanner(c.Request.Context(), id, fields)
	handler.MustSucceedWithMessage(c, err, "更新成功", banner)
}

// AdminDeleteBanner 删除轮播图
// @Summary 删除轮播图
// @Tags 管理-轮播图
// @Produce json
// @Security Bearer
// @Param id path int true "轮播图ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/banners/{id} [delete]
func (h *BannerHandler) AdminDeleteBanner(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	id, ok := handler.ParseID(c, "轮播图")
	if !ok {
		return
	}

	err := h.bannerService.DeleteBanner(c.Request.Context(), id)
	handler.MustSucceedWithMessage(c, err, "删除成功", nil)
}

// AdminGetBanners 获取轮播图列表
// @Summary 获取轮播图列表
// @Tags 管理-轮播图
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/admin/banners [get]
func (h *BannerHandler) AdminGetBanners(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	p := handler.BindPagination(c)
	list, total, err := h.bannerService.GetBannerList(c.Request.Context(), p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}
