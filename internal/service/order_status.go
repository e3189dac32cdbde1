package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tokogaya/backend/internal/carrier/lionparcel"
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/queue"
	"github.com/tokogaya/backend/internal/repository"
)

// allowedTransitions 订单状态流转表
var allowedTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusShipping},
	models.OrderStatusShipping:  {models.OrderStatusComplete},
	models.OrderStatusComplete:  {models.OrderStatusReturned, models.OrderStatusRefunded},
}

func isTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	for _, next := range allowedTransitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// BookingProvider 承运商下单与轨迹查询接口
type BookingProvider interface {
	CreateBooking(ctx context.Context, req lionparcel.BookingRequest) (*lionparcel.BookingResult, error)
	Track(ctx context.Context, sttNo string) (*lionparcel.TrackResult, error)
}

// OrderStatusService 订单状态机：确认、发货、妥投、轨迹
type OrderStatusService struct {
	orderRepo   repository.OrderRepository
	carrier     BookingProvider
	queueClient *queue.Client
}

// NewOrderStatusService 创建订单状态服务
func NewOrderStatusService(orderRepo repository.OrderRepository, carrier BookingProvider, queueClient *queue.Client) *OrderStatusService {
	return &OrderStatusService{
		orderRepo:   orderRepo,
		carrier:     carrier,
		queueClient: queueClient,
	}
}

// transition 校验并写入状态流转
func (s *OrderStatusService) transition(order *models.Order, target string, updates map[string]interface{}) error {
	if !isTransitionAllowed(order.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrOrderStatusInvalid, order.Status, target)
	}
	if err := s.orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
		return err
	}
	order.Status = target
	s.notifyStatus(order.ID, target)
	return nil
}

func (s *OrderStatusService) notifyStatus(orderID uint, status string) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	_ = s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  status,
	})
}

// ConfirmOrder 管理端确认订单；仅支付状态为 settlement 的待处理订单可确认
func (s *OrderStatusService) ConfirmOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", ErrOrderStatusInvalid, order.Status, models.OrderStatusConfirmed)
	}
	if order.PaymentStatus != models.PaymentStatusSettlement {
		return nil, ErrPaymentNotSettled
	}
	if err := s.transition(order, models.OrderStatusConfirmed, nil); err != nil {
		return nil, err
	}
	return order, nil
}

// BookShipmentInput 承运下单的发货方信息
type BookShipmentInput struct {
	SenderName  string
	SenderPhone string
}

// BookShipment 已确认订单向承运商下运单并流转到配送中。
// 承运商下单非幂等：已有运单号的订单直接拒绝，失败后由管理员人工重试。
func (s *OrderStatusService) BookShipment(ctx context.Context, orderID uint, input BookShipmentInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != models.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrOrderStatusInvalid, order.Status, models.OrderStatusShipping)
	}
	shipping := order.Shipping
	if shipping == nil {
		shipping, err = s.orderRepo.GetShippingByOrderID(order.ID)
		if err != nil {
			return nil, err
		}
	}
	if shipping == nil {
		return nil, ErrShippingAddressRequired
	}
	if strings.TrimSpace(shipping.BookingCode) != "" {
		return nil, ErrOrderAlreadyBooked
	}
	if s.carrier == nil {
		return nil, ErrShippingProviderUnavailable
	}

	pieces := make([]lionparcel.BookingPiece, 0, len(order.Items))
	for _, item := range order.Items {
		pieces = append(pieces, lionparcel.BookingPiece{
			Quantity:   item.Quantity,
			WeightGram: item.WeightGram,
			LengthCM:   item.LengthCM,
			WidthCM:    item.WidthCM,
			HeightCM:   item.HeightCM,
		})
	}

	result, err := s.carrier.CreateBooking(ctx, lionparcel.BookingRequest{
		OrderNo:        order.OrderNo,
		GoodsValue:     order.SubtotalAmount.IntPart(),
		Destination:    shipping.RouteCode,
		SenderName:     input.SenderName,
		SenderPhone:    input.SenderPhone,
		RecipientName:  shipping.ReceiverName,
		RecipientPhone: shipping.ReceiverPhone,
		RecipientAddr:  shipping.Address,
		ProductType:    shipping.ShippingTypeCode,
		Pieces:         pieces,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShippingProviderUnavailable, err)
	}

	now := time.Now()
	shipping.BookingCode = result.STTNo
	shipping.BookedAt = &now
	if err := s.orderRepo.UpdateShipping(shipping); err != nil {
		return nil, err
	}
	if err := s.transition(order, models.OrderStatusShipping, nil); err != nil {
		return nil, err
	}
	order.Shipping = shipping
	return order, nil
}

// HandleDeliveryStatus 承运商回调：POD 状态将配送中订单流转为已完成
func (s *OrderStatusService) HandleDeliveryStatus(bookingCode, statusCode string) (*models.Order, error) {
	shipping, err := s.orderRepo.GetShippingByBookingCode(bookingCode)
	if err != nil {
		return nil, err
	}
	if shipping == nil {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(shipping.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if !strings.EqualFold(strings.TrimSpace(statusCode), lionparcel.StatusPOD) {
		return order, nil
	}
	// POD 回调可能重复投递，已完成的订单直接返回
	if order.Status == models.OrderStatusComplete {
		return order, nil
	}
	if order.Status != models.OrderStatusShipping {
		return nil, fmt.Errorf("%w: %s -> %s", ErrOrderStatusInvalid, order.Status, models.OrderStatusComplete)
	}

	now := time.Now()
	shipping.DeliveredAt = &now
	if err := s.orderRepo.UpdateShipping(shipping); err != nil {
		return nil, err
	}
	if err := s.transition(order, models.OrderStatusComplete, nil); err != nil {
		return nil, err
	}
	order.Shipping = shipping
	return order, nil
}

// TrackOrder 查询用户订单的承运商轨迹
func (s *OrderStatusService) TrackOrder(ctx context.Context, orderID, userID uint) (*lionparcel.TrackResult, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	shipping := order.Shipping
	if shipping == nil {
		shipping, err = s.orderRepo.GetShippingByOrderID(order.ID)
		if err != nil {
			return nil, err
		}
	}
	if shipping == nil || strings.TrimSpace(shipping.BookingCode) == "" {
		return nil, ErrOrderNotFound
	}
	if s.carrier == nil {
		return nil, ErrShippingProviderUnavailable
	}
	result, err := s.carrier.Track(ctx, shipping.BookingCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShippingProviderUnavailable, err)
	}
	return result, nil
}
