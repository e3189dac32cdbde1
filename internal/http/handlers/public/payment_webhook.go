package public

import (
	"errors"

	"github.com/tokogaya/backend/internal/http/response"
	"github.com/tokogaya/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentWebhook 支付网关状态回调。
// 签名校验失败直接拒绝，不回显细节。
func (h *Handler) PaymentWebhook(c *gin.Context) {
	log := requestLog(c)
	var notification service.PaymentNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		log.Warnw("payment_webhook_body_invalid", "error", err)
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	log.Infow("payment_webhook_received",
		"order_no", notification.OrderNo,
		"transaction_status", notification.TransactionStatus,
	)

	order, err := h.PaymentWebhookService.HandleNotification(notification)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentSignatureInvalid):
			log.Warnw("payment_webhook_signature_invalid", "order_no", notification.OrderNo)
			respondError(c, response.CodeBadRequest, "signature invalid", nil)
		case errors.Is(err, service.ErrPaymentStatusUnknown):
			log.Warnw("payment_webhook_status_unknown",
				"order_no", notification.OrderNo,
				"transaction_status", notification.TransactionStatus,
			)
			respondError(c, response.CodeBadRequest, "transaction status unknown", nil)
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		default:
			respondError(c, response.CodeInternal, "payment webhook failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"order_no":       order.OrderNo,
		"payment_status": order.PaymentStatus,
	})
}

// ShippingWebhookRequest 承运商配送状态回调载荷。
type ShippingWebhookRequest struct {
	STTNo  string `json:"stt_no" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// ShippingWebhook 承运商配送状态回调；POD 状态驱动订单完成。
func (h *Handler) ShippingWebhook(c *gin.Context) {
	log := requestLog(c)
	var req ShippingWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnw("shipping_webhook_body_invalid", "error", err)
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	log.Infow("shipping_webhook_received", "stt_no", req.STTNo, "status", req.Status)

	order, err := h.OrderStatusService.HandleDeliveryStatus(req.STTNo, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "order status invalid", nil)
		default:
			respondError(c, response.CodeInternal, "shipping webhook failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"order_no": order.OrderNo,
		"status":   order.Status,
	})
}
