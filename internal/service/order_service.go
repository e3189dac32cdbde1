package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/tokogaya/backend/internal/cache"
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/queue"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	orderNoMaxAttempts   = 5
	idempotencyKeyTTL    = 10 * time.Minute
	defaultExpireMinutes = 120
)

// OrderService 订单服务：结算物化与订单查询
type OrderService struct {
	orderRepo       repository.OrderRepository
	stockRepo       repository.StockRepository
	cartRepo        repository.CartRepository
	addressRepo     repository.AddressRepository
	couponUserRepo  repository.CouponUserRepository
	cartService     *CartService
	couponService   *CouponService
	shippingService *ShippingService
	queueClient     *queue.Client
	expireMinutes   int
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	stockRepo repository.StockRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	couponUserRepo repository.CouponUserRepository,
	cartService *CartService,
	couponService *CouponService,
	shippingService *ShippingService,
	queueClient *queue.Client,
	expireMinutes int,
) *OrderService {
	if expireMinutes <= 0 {
		expireMinutes = defaultExpireMinutes
	}
	return &OrderService{
		orderRepo:       orderRepo,
		stockRepo:       stockRepo,
		cartRepo:        cartRepo,
		addressRepo:     addressRepo,
		couponUserRepo:  couponUserRepo,
		cartService:     cartService,
		couponService:   couponService,
		shippingService: shippingService,
		queueClient:     queueClient,
		expireMinutes:   expireMinutes,
	}
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	UserID           uint
	AddressID        uint // 0 表示使用默认地址
	ShippingTypeCode string
	CouponCodes      []string
	ClientIP         string
	IdempotencyKey   string
}

// Checkout 结算：读取购物车快照、核算折扣与运费，在单事务内物化订单。
// 订单行、快照、扣库存、清购物车、券核销、配送记录任一步失败整体回滚。
func (s *OrderService) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		acquired, err := cache.AcquireOnce(ctx, fmt.Sprintf("checkout:%d:%s", input.UserID, key), idempotencyKeyTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, ErrIdempotencyConflict
		}
	}

	snapshot, err := s.cartService.BuildSnapshot(input.UserID)
	if err != nil {
		return nil, err
	}

	couponResult, err := s.couponService.Resolve(snapshot.Subtotal, input.CouponCodes, input.UserID)
	if err != nil {
		return nil, err
	}

	address, err := s.resolveAddress(input.UserID, input.AddressID)
	if err != nil {
		return nil, err
	}

	quote, err := s.shippingService.Quote(ctx, address.RouteCode, input.ShippingTypeCode, snapshot.TotalWeightGram)
	if err != nil {
		return nil, err
	}

	// total = ceil(max(subtotal - discount, 0)) + shipping + tax
	tax := decimal.Zero
	paid := snapshot.Subtotal.Decimal.Sub(couponResult.Discount.Decimal)
	if paid.LessThan(decimal.Zero) {
		paid = decimal.Zero
	}
	total := paid.Ceil().Add(quote.Amount.Decimal).Add(tax)

	orderNo, err := s.generateOrderNo()
	if err != nil {
		return nil, err
	}

	shippingTypeName := quote.ShippingType
	if st, err := s.shippingService.shippingRepo.GetTypeByCode(quote.ShippingType); err == nil && st != nil {
		shippingTypeName = st.Name
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(s.expireMinutes) * time.Minute)
	order := &models.Order{
		OrderNo:        orderNo,
		UserID:         input.UserID,
		Status:         models.OrderStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
		SubtotalAmount: snapshot.Subtotal,
		DiscountAmount: couponResult.Discount,
		ShippingAmount: quote.Amount,
		TaxAmount:      models.NewMoneyFromDecimal(tax),
		TotalAmount:    models.NewMoneyFromDecimal(total),
		TotalWeight:    snapshot.TotalWeightGram,
		ClientIP:       strings.TrimSpace(input.ClientIP),
		ExpiresAt:      &expiresAt,
	}
	for i, applied := range couponResult.Applied {
		switch i {
		case 0:
			order.CouponCode1 = applied.FullCode
		case 1:
			order.CouponCode2 = applied.FullCode
		}
	}

	items := make([]models.OrderItem, 0, len(snapshot.Lines))
	cartItemIDs := make([]uint, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		items = append(items, models.OrderItem{
			ProductID:       line.Product.ID,
			StockID:         line.Stock.ID,
			ProductName:     line.Product.Name,
			Size:            line.Stock.Size,
			Color:           line.Stock.Color,
			Variant:         line.Stock.Variant,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.Stock.DiscountPercent,
			Quantity:        line.Item.Quantity,
			TotalPrice:      line.LineTotal,
			WeightGram:      line.Stock.WeightGram,
			LengthCM:        line.Stock.LengthCM,
			WidthCM:         line.Stock.WidthCM,
			HeightCM:        line.Stock.HeightCM,
		})
		cartItemIDs = append(cartItemIDs, line.Item.ID)
	}

	materialize := func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		stockRepo := s.stockRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)
		couponUserRepo := s.couponUserRepo.WithTx(tx)

		if err := orderRepo.Create(order, items); err != nil {
			return err
		}

		for _, line := range snapshot.Lines {
			affected, err := stockRepo.DecrementQuantity(line.Stock.ID, line.Item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrStockInsufficient
			}
		}

		if err := cartRepo.DeleteByIDs(cartItemIDs); err != nil {
			return err
		}

		for _, applied := range couponResult.Applied {
			if !applied.Coupon.IsLimited {
				continue
			}
			record := &models.CouponUser{
				CouponID: applied.Coupon.ID,
				UserID:   input.UserID,
				OrderID:  order.ID,
			}
			if err := couponUserRepo.Create(record); err != nil {
				if repository.IsDuplicateKeyError(err) {
					return ErrCouponAlreadyUsed
				}
				return err
			}
		}

		shipping := &models.OrderShipping{
			OrderID:          order.ID,
			ReceiverName:     address.ReceiverName,
			ReceiverPhone:    address.ReceiverPhone,
			Address:          address.Address,
			RouteCode:        address.RouteCode,
			ShippingTypeCode: quote.ShippingType,
			ShippingTypeName: shippingTypeName,
			ShippingCost:     quote.Amount,
			EstimatedSLA:     quote.EstimatedSLA,
		}
		if err := orderRepo.CreateShipping(shipping); err != nil {
			return err
		}
		order.Shipping = shipping
		return nil
	}

	// 编号在查重与落库之间被并发占用时换号重试整个事务
	for attempt := 0; ; attempt++ {
		err = models.DB.Transaction(materialize)
		if err == nil {
			break
		}
		if !repository.IsDuplicateKeyError(err) || attempt >= orderNoMaxAttempts-1 {
			return nil, err
		}
		order.ID = 0
		order.Shipping = nil
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = 0
		}
		if order.OrderNo, err = s.generateOrderNo(); err != nil {
			return nil, err
		}
	}
	order.Items = items

	if s.queueClient != nil && s.queueClient.Enabled() {
		_ = s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
			OrderID: order.ID,
			Status:  order.Status,
		})
		_ = s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
			OrderID: order.ID,
		}, time.Until(expiresAt))
	}

	return order, nil
}

func (s *OrderService) resolveAddress(userID, addressID uint) (*models.ShippingAddress, error) {
	if addressID != 0 {
		address, err := s.addressRepo.GetByIDAndUser(addressID, userID)
		if err != nil {
			return nil, err
		}
		if address == nil {
			return nil, ErrShippingAddressNotFound
		}
		return address, nil
	}
	address, err := s.addressRepo.GetDefaultByUser(userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrShippingAddressRequired
	}
	return address, nil
}

// generateOrderNo 生成订单编号；编号冲突时重试
func (s *OrderService) generateOrderNo() (string, error) {
	for attempt := 0; attempt < orderNoMaxAttempts; attempt++ {
		no := fmt.Sprintf("TG%s%s", time.Now().Format("20060102150405"), randNumeric(6))
		exists, err := s.orderRepo.ExistsOrderNo(no)
		if err != nil {
			return "", err
		}
		if !exists {
			return no, nil
		}
	}
	return "", fmt.Errorf("order no generation exhausted after %d attempts", orderNoMaxAttempts)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String()
}

// CancelPendingOrder 取消待支付订单并回补库存；已结算或非待支付状态不处理。
// 超时任务与用户主动取消共用。
func (s *OrderService) CancelPendingOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != models.OrderStatusPending {
		return order, nil
	}
	if order.PaymentStatus == models.PaymentStatusSettlement {
		return order, nil
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		stockRepo := s.stockRepo.WithTx(tx)

		if err := orderRepo.UpdateStatus(order.ID, models.OrderStatusCancelled, map[string]interface{}{
			"canceled_at": now,
		}); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := stockRepo.RestoreQuantity(item.StockID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCancelled
	order.CanceledAt = &now
	return order, nil
}

// CancelOrderByUser 用户取消自己的待支付订单
func (s *OrderService) CancelOrderByUser(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != models.OrderStatusPending {
		return nil, ErrOrderStatusInvalid
	}
	return s.CancelPendingOrder(order.ID)
}
