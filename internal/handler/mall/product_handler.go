// Package mall 提供商城相关的 HTTP Handler
package mall

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kieugiathinh/bookstore-backend/internal/common/handler"
	"github.com/kieugiathinh/bookstore-backend/internal/common/response"
	mallService "github.com/kieugiathinh/bookstore-backend/internal/service/mall"
)

// ProductHandler 商品处理器
type ProductHandler struct {
	productService  *mallService.ProductService
	categoryService *mallService.CategoryService
}

// NewProductHandler 创建商品处理器
func NewProductHandler(productSvc *mallService.ProductService, categorySvc *mallService.CategoryService) *ProductHandler {
	return &ProductHandler{
		productService:  productSvc,
		categoryService: categorySvc,
	}
}

// GetProducts 获取商品列表
// @Summary 获取商品列表
// @Tags 商城-商品
// @Produce json
// @Param category_id query int false "分类过滤"
// @Param keyword query string false "书名或作者关键词"
// @Param is_hot query bool false "热门过滤"
// @Param is_new query bool false "新书过滤"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/products [get]
func (h *ProductHandler) GetProducts(c *gin.Context) {
	p := handler.BindPagination(c)

	req := &mallService.ProductListRequest{
		Page:     p.Page,
		PageSize: p.PageSize,
		Keyword:  c.Query("keyword"),
		OrderBy:  c.Query("order_by"),
	}

	categoryID, ok := handler.ParseQueryID(c, "category_id", "分类")
	if !ok {
		return
	}
	req.CategoryID = categoryID

	if v := c.Query("is_hot"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "无效的热门过滤值")
			return
		}
		req.IsHot = &b
	}
	if v := c.Query("is_new"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "无效的新书过滤值")
			return
		}
		req.IsNew = &b
	}

	list, total, err := h.productService.GetProductList(c.Request.Context(), req)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// GetProductDetail 获取商品详情
// @Summary 获取商品详情
// @Tags 商城-商品
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} response.Response{data=models.Product}
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProductDetail(c *gin.Context) {
	productID, ok := handler.ParseID(c, "商品")
	if !ok {
		return
	}

	product, err := h.productService.GetProductDetail(c.Request.Context(), productID)
	handler.MustSucceed(c, err, product)
}

// GetCategories 获取分类列表
// @Summary 获取分类列表
// @Tags 商城-分类
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Category}
// @Router /api/v1/categories [get]
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.GetCategories(c.Request.Context())
	handler.MustSucceed(c, err, categories)
}

// AdminCreateProduct 创建商品
// @Summary 创建商品
// @Tags 管理-商品
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body mall.CreateProductRequest true "创建请求"
// @Success 200 {object} response.Response{data=models.Product}
// @Router /api/v1/admin/products [post]
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	var req mallService.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	handler.MustSucceed(c, err, product)
}

// AdminUpdateProduct 更新商品
// @Summary 更新商品
// @Tags 管理-商品
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "商品ID"
// @Success 200 {object} response.Response{data=models.Product}
// @Router /api/v1/admin/products/{id} [put]
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	productID, ok := handler.ParseID(c, "商品")
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), productID, fields)
	handler.MustSucceed(c, err, product)
}

// AdminDeleteProduct 删除商品
// @Summary 删除商品
// @Tags 管理-商品
// @Produce json
// @Security Bearer
// @Param id path int true "商品ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/products/{id} [delete]
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	productID, ok := handler.ParseID(c, "商品")
	if !ok {
		return
	}

	err := h.productService.DeleteProduct(c.Request.Context(), productID)
	handler.MustSucceedWithMessage(c, err, "删除成功", nil)
}

// AdminCreateCategory 创建分类
// @Summary 创建分类
// @Tags 管理-分类
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body mall.CreateCategoryRequest true "创建请求"
// @Success 200 {object} response.Response{data=models.Category}
// @Router /api/v1/admin/categories [post]
func (h *ProductHandler) AdminCreateCategory(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	var req mallService.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), &req)
	handler.MustSucceed(c, err, category)
}

// AdminDeleteCategory 删除分类
// @Summary 删除分类
// @Tags 管理-分类
// @Produce json
// @Security Bearer
// @Param id path int true "分类ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/categories/{id} [delete]
func (h *ProductHandler) AdminDeleteCategory(c *gin.Context) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	categoryID, ok := handler.ParseID(c, "分类")
	if !ok {
		return
	}

	err := h.categoryService.DeleteCategory(c.Request.Context(), categoryID)
	handler.MustSucceedWithMessage(c, err, "删除成功", nil)
}
