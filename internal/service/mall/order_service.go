// Package mall 提供商城服务
package mall

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kieugiathinh/bookstore-backend/internal/common/config"
	"github.com/kieugiathinh/bookstore-backend/internal/common/errors"
	"github.com/kieugiathinh/bookstore-backend/internal/common/logger"
	"github.com/kieugiathinh/bookstore-backend/internal/common/metrics"
	"github.com/kieugiathinh/bookstore-backend/internal/common/utils"
	"github.com/kieugiathinh/bookstore-backend/internal/models"
	"github.com/kieugiathinh/bookstore-backend/internal/repository"
	"github.com/kieugiathinh/bookstore-backend/internal/service/marketing"
)

// OrderService 订单服务
type OrderService struct {
	db            *gorm.DB
	orderRepo     *repository.OrderRepository
	productRepo   *repository.ProductRepository
	flashSaleRepo *repository.FlashSaleRepository
	couponService *marketing.CouponService
}

// NewOrderService 创建订单服务
func NewOrderService(
	db *gorm.DB,
	orderRepo *repository.OrderRepository,
	productRepo *repository.ProductRepository,
	flashSaleRepo *repository.FlashSaleRepository,
	couponService *marketing.CouponService,
) *OrderService {
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		flashSaleRepo: flashSaleRepo,
		couponService: couponService,
	}
}

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID       int64  `json:"product_id" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	FlashSaleItemID *int64 `json:"flash_sale_item_id"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	CouponCode *string            `json:"coupon_code"`
	Address    string             `json:"address" binding:"required,max=255"`
	Remark     string             `json:"remark" binding:"max=255"`
}

// OrderItemInfo 订单项信息
type OrderItemInfo struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Img       string  `json:"img"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// OrderInfo 订单信息
type OrderInfo struct {
	ID             int64            `json:"id"`
	OrderNo        string           `json:"order_no"`
	Status         int8             `json:"status"`
	StatusName     string           `json:"status_name"`
	TotalAmount    float64          `json:"total_amount"`
	DiscountAmount float64          `json:"discount_amount"`
	ActualAmount   float64          `json:"actual_amount"`
	CouponID       *int64           `json:"coupon_id,omitempty"`
	Address        string           `json:"address"`
	Remark         string           `json:"remark,omitempty"`
	Items          []*OrderItemInfo `json:"items"`
	DeliveredAt    *time.Time       `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// statusNames 订单状态展示名
var statusNames = map[int8]string{
	models.OrderStatusPending:    "待处理",
	models.OrderStatusProcessing: "处理中",
	models.OrderStatusDelivered:  "已送达",
	models.OrderStatusCancelled:  "已取消",
}

// buildOrderInfo 构建订单信息
func buildOrderInfo(order *models.Order) *OrderInfo {
	info := &OrderInfo{
		ID:             order.ID,
		OrderNo:        order.OrderNo,
		Status:         order.Status,
		StatusName:     statusNames[order.Status],
		TotalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		ActualAmount:   order.ActualAmount,
		CouponID:       order.CouponID,
		Address:        utils.SafeString(order.Address),
		Remark:         utils.SafeString(order.Remark),
		DeliveredAt:    order.DeliveredAt,
		CancelledAt:    order.CancelledAt,
		CreatedAt:      order.CreatedAt,
		Items:          make([]*OrderItemInfo, 0, len(order.Items)),
	}
	for i := range order.Items {
		item := &order.Items[i]
		info.Items = append(info.Items, &OrderItemInfo{
			ProductID: item.ProductID,
			Title:     item.Title,
			Img:       item.Img,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	return info
}

// validatedItem 校验阶段的订单项快照
type validatedItem struct {
	product       *models.Product
	quantity      int
	price         float64
	flashSaleItem *models.FlashSaleItem
}

// CreateOrder 创建订单
// 两阶段：先只读校验全部订单项，再在单个事务内条件扣减并落库；
// 任一扣减失败整个事务回滚，不留下部分扣减
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, req *CreateOrderRequest) (*OrderInfo, error) {
	// 阶段一：只读校验
	validated := make([]*validatedItem, 0, len(req.Items))
	var totalAmount float64
	now := time.Now()

	for _, item := range req.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.ErrProductNotFound.WithMessagef("商品 %d 不存在", item.ProductID)
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if product.Status != models.ProductStatusOnSale {
			return nil, errors.ErrProductOffShelf.WithMessagef("商品《%s》已下架", product.Title)
		}
		if product.CountInStock < item.Quantity {
			metrics.GetMetrics().RecordStockRejection()
			return nil, errors.ErrStockInsufficient.
				WithMessagef("商品《%s》库存不足，仅剩 %d 件", product.Title, product.CountInStock)
		}

		v := &validatedItem{
			product:  product,
			quantity: item.Quantity,
			price:    product.Price,
		}

		// 秒杀价校验
		if item.FlashSaleItemID != nil {
			fsItem, err := s.flashSaleRepo.GetItemByID(ctx, *item.FlashSaleItemID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil, errors.ErrFlashSaleNotFound
				}
				return nil, errors.ErrDatabaseError.WithError(err)
			}
			if fsItem.ProductID != item.ProductID {
				return nil, errors.ErrInvalidParams.WithMessage("秒杀商品与订单商品不匹配")
			}
			sale := fsItem.FlashSale
			if sale == nil || sale.Status != models.FlashSaleStatusActive ||
				now.Before(sale.StartTime) || now.After(sale.EndTime) {
				return nil, errors.ErrFlashSaleInactive
			}
			if fsItem.SoldCount+item.Quantity > fsItem.QuantityLimit {
				return nil, errors.ErrFlashSaleSoldOut
			}
			v.price = fsItem.DiscountPrice
			v.flashSaleItem = fsItem
		}

		totalAmount += v.price * float64(v.quantity)
		validated = append(validated, v)
	}

	// 优惠券校验（纯计算，不写状态）
	var discountAmount float64
	var couponID, userCouponID *int64
	if req.CouponCode != nil && *req.CouponCode != "" {
		applied, err := s.couponService.ApplyCoupon(ctx, userID, &marketing.ApplyCouponRequest{
			CouponCode: *req.CouponCode,
			CartTotal:  totalAmount,
		})
		if err != nil {
			return nil, err
		}
		discountAmount = applied.DiscountAmount
		couponID = &applied.CouponID
		userCouponID = &applied.UserCouponID
	}

	// 阶段二：事务内条件扣减并落库
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderItems := make([]models.OrderItem, 0, len(validated))

		for _, v := range validated {
			if err := s.productRepo.DecreaseStock(tx, v.product.ID, v.quantity); err != nil {
				if err == gorm.ErrRecordNotFound {
					// 并发下库存在校验后被抢占，读取当前值给出准确提示
					metrics.GetMetrics().RecordStockRejection()
					return errors.ErrStockInsufficient.
						WithMessagef("商品《%s》库存不足，仅剩 %d 件", v.product.Title, s.currentStock(tx, v.product.ID))
				}
				return errors.ErrDatabaseError.WithError(err)
			}
			if err := s.productRepo.IncreaseSales(tx, v.product.ID, v.quantity); err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}

			if v.flashSaleItem != nil {
				if err := s.flashSaleRepo.AllocateStock(tx, v.flashSaleItem.ID, v.quantity); err != nil {
					if err == gorm.ErrRecordNotFound {
						return errors.ErrFlashSaleSoldOut
					}
					return errors.ErrDatabaseError.WithError(err)
				}
				metrics.GetMetrics().RecordFlashSaleSold(v.quantity)
			}

			subtotal := v.price * float64(v.quantity)
			orderItem := models.OrderItem{
				ProductID: v.product.ID,
				Title:     v.product.Title,
				Img:       v.product.Img,
				Price:     v.price,
				Quantity:  v.quantity,
				Subtotal:  subtotal,
			}
			if v.flashSaleItem != nil {
				orderItem.FlashSaleItemID = &v.flashSaleItem.ID
			}
			orderItems = append(orderItems, orderItem)
		}

		order = &models.Order{
			OrderNo:        utils.GenerateOrderNo(config.Get().Business.Order.NoPrefix),
			UserID:         userID,
			Status:         models.OrderStatusPending,
			TotalAmount:    totalAmount,
			DiscountAmount: discountAmount,
			ActualAmount:   totalAmount - discountAmount,
			CouponID:       couponID,
			UserCouponID:   userCouponID,
			Address:        utils.StringPtr(req.Address),
			Items:          orderItems,
		}
		if req.Remark != "" {
			order.Remark = utils.StringPtr(req.Remark)
		}
		if err := s.orderRepo.Create(tx, order); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}

		// 优惠券在同一事务内标记使用，失败则整单回滚
		if userCouponID != nil {
			if err := s.couponService.UseCoupon(tx, *userCouponID, *couponID, order.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.GetMetrics().RecordOrder("created")
	logger.Info("订单已创建",
		logger.UserID(userID),
		logger.OrderNo(order.OrderNo),
		logger.Float64("actual_amount", order.ActualAmount),
		logger.Int("item_count", len(order.Items)),
	)

	return buildOrderInfo(order), nil
}

// currentStock 读取事务内的当前库存，用于错误提示
func (s *OrderService) currentStock(tx *gorm.DB, productID int64) int {
	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		return 0
	}
	return product.CountInStock
}

// CancelOrder 取消订单并回补库存
// 仅允许取消本人的 PENDING 订单；回补与下单扣减严格对称
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID int64) (*OrderInfo, error) {
	order, err := s.orderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if order.UserID != userID {
		return nil, errors.ErrOrderForbidden
	}
	if order.Status != models.OrderStatusPending {
		return nil, errors.ErrOrderCannotCancel
	}

	if err := s.cancelTx(ctx, order); err != nil {
		return nil, err
	}

	metrics.GetMetrics().RecordOrder("cancelled")
	logger.Info("订单已取消",
		logger.UserID(userID),
		logger.OrderNo(order.OrderNo),
	)

	return buildOrderInfo(order), nil
}

// cancelTx 在单个事务内完成状态转移与回补
func (s *OrderService) cancelTx(ctx context.Context, order *models.Order) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 条件状态转移，挡住并发重复取消
		if err := s.orderRepo.UpdateStatus(tx, order.ID,
			models.OrderStatusPending, models.OrderStatusCancelled,
			map[string]interface{}{"cancelled_at": now}); err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrOrderCannotCancel
			}
			return errors.ErrDatabaseError.WithError(err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			if err := s.productRepo.IncreaseStock(tx, item.ProductID, item.Quantity); err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
			if err := s.productRepo.DecreaseSales(tx, item.ProductID, item.Quantity); err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
			if item.FlashSaleItemID != nil {
				if err := s.flashSaleRepo.ReleaseStock(tx, *item.FlashSaleItemID, item.Quantity); err != nil {
					return errors.ErrDatabaseError.WithError(err)
				}
			}
		}

		if order.UserCouponID != nil && order.CouponID != nil {
			if err := s.couponService.ReleaseCoupon(tx, *order.UserCouponID, *order.CouponID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	order.Status = models.OrderStatusCancelled
	order.CancelledAt = &now
	return nil
}

// canTransition 订单状态机转移表
// PENDING → PROCESSING → DELIVERED；PENDING → CANCELLED 为唯一分支
func canTransition(from, to int8) bool {
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusProcessing || to == models.OrderStatusCancelled
	case models.OrderStatusProcessing:
		return to == models.OrderStatusDelivered
	default:
		// DELIVERED 和 CANCELLED 为终态
		return false
	}
}

// UpdateOrderStatus 更新订单状态（管理端）
// 转移到 CANCELLED 时走完整的回补流程
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, newStatus int8) (*OrderInfo, error) {
	order, err := s.orderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if !canTransition(order.Status, newStatus) {
		return nil, errors.ErrOrderStatusError.
			WithMessagef("订单不能从「%s」转移到「%s」", statusNames[order.Status], statusNames[newStatus])
	}

	if newStatus == models.OrderStatusCancelled {
		if err := s.cancelTx(ctx, order); err != nil {
			return nil, err
		}
		metrics.GetMetrics().RecordOrder("cancelled")
		return buildOrderInfo(order), nil
	}

	now := time.Now()
	extra := map[string]interface{}{}
	if newStatus == models.OrderStatusDelivered {
		extra["delivered_at"] = now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.UpdateStatus(tx, orderID, order.Status, newStatus, extra); err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrOrderStatusError
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = newStatus
	if newStatus == models.OrderStatusDelivered {
		order.DeliveredAt = &now
		metrics.GetMetrics().RecordOrder("delivered")
	} else {
		metrics.GetMetrics().RecordOrder("processing")
	}

	return buildOrderInfo(order), nil
}

// GetOrderDetail 获取订单详情（校验归属）
func (s *OrderService) GetOrderDetail(ctx context.Context, userID, orderID int64) (*OrderInfo, error) {
	order, err := s.orderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if order.UserID != userID {
		return nil, errors.ErrOrderForbidden
	}
	return buildOrderInfo(order), nil
}

// GetUserOrders 获取用户订单列表
func (s *OrderService) GetUserOrders(ctx context.Context, userID int64, status *int8, page, pageSize int) ([]*OrderInfo, int64, error) {
	offset := (page - 1) * pageSize

	orders, total, err := s.orderRepo.List(ctx, repository.OrderListParams{
		Offset: offset,
		Limit:  pageSize,
		UserID: &userID,
		Status: status,
	})
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	list := make([]*OrderInfo, 0, len(orders))
	for _, order := range orders {
		list = append(list, buildOrderInfo(order))
	}
	return list, total, nil
}

// GetOrderList 获取订单列表（管理端）
func (s *OrderService) GetOrderList(ctx context.Context, status *int8, page, pageSize int) ([]*OrderInfo, int64, error) {
	offset := (page - 1) * pageSize

	orders, total, err := s.orderRepo.List(ctx, repository.OrderListParams{
		Offset: offset,
		Limit:  pageSize,
		Status: status,
	})
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	list := make([]*OrderInfo, 0, len(orders))
	for _, order := range orders {
		list = append(list, buildOrderInfo(order))
	}
	return list, total, nil
}

// GetOrderByNo 根据订单号获取订单（管理端）
func (s *OrderService) GetOrderByNo(ctx context.Context, orderNo string) (*OrderInfo, error) {
	order, err := s.orderRepo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	full, err := s.orderRepo.GetByIDWithItems(ctx, order.ID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return buildOrderInfo(full), nil
}
