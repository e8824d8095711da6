// Package main 是应用程序入口
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/common/config"
	"github.com/kieugiathinh/bookstore-backend/internal/common/jwt"
	"github.com/kieugiathinh/bookstore-backend/internal/common/metrics"
	authHandler "github.com/kieugiathinh/bookstore-backend/internal/handler/auth"
	contentHandler "github.com/kieugiathinh/bookstore-backend/internal/handler/content"
	mallHandler "github.com/kieugiathinh/bookstore-backend/internal/handler/mall"
	marketingHandler "github.com/kieugiathinh/bookstore-backend/internal/handler/marketing"
	"github.com/kieugiathinh/bookstore-backend/internal/middleware"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
	authService "github.com/kieugiathinh/bookstore-backend/internal/service/auth"
	contentService "github.com/kieugiathinh/bookstore-backend/internal/service/content"
	mallService "github.com/kieugiathinh/bookstore-backend/internal/service/mall"
	marketingService "github.com/kieugiathinh/bookstore-backend/internal/service/marketing"
)

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
) {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	// 初始化仓储
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	userCouponRepo := repository.NewUserCouponRepository(db)
	flashSaleRepo := repository.NewFlashSaleRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	bannerRepo := repository.NewBannerRepository(db)

	// 初始化服务
	authSvc := authService.NewAuthService(db, userRepo, jwtManager, cfg.Crypto.BcryptCost)

	productSvc := mallService.NewProductService(db, productRepo, categoryRepo)
	categorySvc := mallService.NewCategoryService(db, categoryRepo)

	couponSvc := marketingService.NewCouponService(db, couponRepo, userCouponRepo)
	userCouponSvc := marketingService.NewUserCouponService(db, userCouponRepo)
	flashSaleSvc := marketingService.NewFlashSaleService(db, flashSaleRepo, productRepo)

	orderSvc := mallService.NewOrderService(db, orderRepo, productRepo, flashSaleRepo, couponSvc)

	bannerSvc := contentService.NewBannerService(db, bannerRepo)

	// 初始化处理器
	authH := authHandler.NewAuthHandler(authSvc)
	productH := mallHandler.NewProductHandler(productSvc, categorySvc)
	orderH := mallHandler.NewOrderHandler(orderSvc)
	couponH := marketingHandler.NewCouponHandler(couponSvc, userCouponSvc)
	flashSaleH := marketingHandler.NewFlashSaleHandler(flashSaleSvc)
	bannerH := contentHandler.NewBannerHandler(bannerSvc)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(&middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	r.Use(middleware.AccessLog(logger))
	if cfg.Metrics.Enabled {
		r.Use(metrics.GetMetrics().Middleware())
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Prometheus 指标
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 公开接口（无需认证）
		public := v1.Group("")
		{
			public.POST("/auth/register", authH.Register)
			public.POST("/auth/login", authH.Login)
			public.POST("/auth/refresh", authH.RefreshToken)

			public.GET("/products", productH.GetProducts)
			public.GET("/products/:id", productH.GetProductDetail)
			public.GET("/categories", productH.GetCategories)

			public.GET("/coupons", couponH.GetCoupons)

			public.GET("/flash-sales", flashSaleH.GetActiveSales)
			public.GET("/flash-sales/:id", flashSaleH.GetSaleDetail)

			public.GET("/banners", bannerH.GetActiveBanners)
			public.POST("/banners/:id/click", bannerH.RecordClick)
		}

		// 用户端接口（需要用户认证）
		user := v1.Group("")
		user.Use(middleware.UserAuth(jwtManager))
		{
			user.POST("/coupons/apply", couponH.ApplyCoupon)
			user.POST("/coupons/:id/save", couponH.SaveCoupon)
			user.GET("/coupons/wallet", couponH.GetWallet)

			user.POST("/orders", orderH.CreateOrder)
			user.GET("/orders", orderH.GetOrders)
			user.GET("/orders/:id", orderH.GetOrderDetail)
			user.POST("/orders/:id/cancel", orderH.CancelOrder)
		}

		// 管理端接口（需要管理员认证）
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(jwtManager))
		{
			admin.POST("/products", productH.AdminCreateProduct)
			admin.PUT("/products/:id", productH.AdminUpdateProduct)
			admin.DELETE("/products/:id", productH.AdminDeleteProduct)

			admin.POST("/categories", productH.AdminCreateCategory)
			admin.DELETE("/categories/:id", productH.AdminDeleteCategory)

			admin.GET("/coupons", couponH.AdminGetCoupons)
			admin.POST("/coupons", couponH.AdminCreateCoupon)
			admin.PUT("/coupons/:id/status", couponH.AdminUpdateCouponStatus)

			admin.GET("/flash-sales", flashSaleH.AdminGetSales)
			admin.POST("/flash-sales", flashSaleH.AdminCreateSale)
			admin.PUT("/flash-sales/:id/status", flashSaleH.AdminUpdateSaleStatus)

			admin.GET("/orders", orderH.AdminGetOrders)
			admin.PUT("/orders/:id/status", orderH.AdminUpdateOrderStatus)

			admin.GET("/banners", bannerH.AdminGetBanners)
			admin.POST("/banners", bannerH.AdminCreateBanner)
			admin.PUT("/banners/:id", bannerH.AdminUpdateBanner)
			admin.DELETE("/banners/:id", bannerH.AdminDeleteBanner)
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    404,
			"message": "接口不存在",
		})
	})
}
