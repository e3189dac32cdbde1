package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"time"

	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/queue"
	"github.com/tokogaya/backend/internal/repository"
)

// PaymentNotification 支付网关回调载荷
type PaymentNotification struct {
	OrderNo           string `json:"order_id" binding:"required"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key" binding:"required"`
	TransactionTime   string `json:"transaction_time"`
}

// 网关 transaction_status 到本地支付状态的映射
var paymentStatusMapping = map[string]string{
	"pending":        models.PaymentStatusPending,
	"capture":        models.PaymentStatusCapture,
	"settlement":     models.PaymentStatusSettlement,
	"cancel":         models.PaymentStatusCancel,
	"expire":         models.PaymentStatusExpired,
	"deny":           models.PaymentStatusDeny,
	"refund":         models.PaymentStatusRefund,
	"partial_refund": models.PaymentStatusPartialRefund,
}

// PaymentWebhookService 支付回调服务；支付状态的唯一写入口
type PaymentWebhookService struct {
	orderRepo   repository.OrderRepository
	serverKey   string
	queueClient *queue.Client
}

// NewPaymentWebhookService 创建支付回调服务
func NewPaymentWebhookService(orderRepo repository.OrderRepository, serverKey string, queueClient *queue.Client) *PaymentWebhookService {
	return &PaymentWebhookService{
		orderRepo:   orderRepo,
		serverKey:   strings.TrimSpace(serverKey),
		queueClient: queueClient,
	}
}

// verifySignature 校验网关签名 sha512(order_no + gross_amount + server_key)
func (s *PaymentWebhookService) verifySignature(n PaymentNotification) bool {
	if s.serverKey == "" {
		return false
	}
	sum := sha512.Sum512([]byte(n.OrderNo + n.GrossAmount + s.serverKey))
	expected := hex.EncodeToString(sum[:])
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(n.SignatureKey))))
}

// HandleNotification 处理支付回调：验签、映射状态并落库。
// capture 需要 fraud_status=accept 才按已结算处理。
func (s *PaymentWebhookService) HandleNotification(n PaymentNotification) (*models.Order, error) {
	if !s.verifySignature(n) {
		return nil, ErrPaymentSignatureInvalid
	}

	status, ok := paymentStatusMapping[strings.ToLower(strings.TrimSpace(n.TransactionStatus))]
	if !ok {
		return nil, ErrPaymentStatusUnknown
	}
	if status == models.PaymentStatusCapture && strings.EqualFold(strings.TrimSpace(n.FraudStatus), "accept") {
		status = models.PaymentStatusSettlement
	}

	order, err := s.orderRepo.GetByOrderNo(n.OrderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	updates := map[string]interface{}{}
	if status == models.PaymentStatusSettlement && order.PaidAt == nil {
		now := time.Now()
		updates["paid_at"] = now
		order.PaidAt = &now
	}
	if err := s.orderRepo.UpdatePaymentStatus(order.ID, status, updates); err != nil {
		return nil, err
	}
	order.PaymentStatus = status

	if status == models.PaymentStatusSettlement && s.queueClient != nil && s.queueClient.Enabled() {
		_ = s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
			OrderID: order.ID,
			Status:  order.Status,
		})
	}
	return order, nil
}
