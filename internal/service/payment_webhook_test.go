package service

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const webhookTestServerKey = "test-server-key"

func signNotification(orderNo, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderNo + grossAmount + webhookTestServerKey))
	return hex.EncodeToString(sum[:])
}

func openWebhookTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:webhook_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderShipping{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createWebhookTestOrder(t *testing.T, db *gorm.DB, orderNo string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       orderNo,
		UserID:        1,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		TotalAmount:   models.NewMoneyFromInt(260000),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestHandleNotificationSettlement(t *testing.T) {
	db := openWebhookTestDB(t, "settlement")
	createWebhookTestOrder(t, db, "TG20260830100001")

	svc := NewPaymentWebhookService(repository.NewOrderRepository(db), webhookTestServerKey, nil)

	order, err := svc.HandleNotification(PaymentNotification{
		OrderNo:           "TG20260830100001",
		TransactionStatus: "settlement",
		GrossAmount:       "260000.00",
		SignatureKey:      signNotification("TG20260830100001", "260000.00"),
	})
	if err != nil {
		t.Fatalf("handle notification failed: %v", err)
	}
	if order.PaymentStatus != models.PaymentStatusSettlement {
		t.Fatalf("payment status want settlement got %s", order.PaymentStatus)
	}
	if order.PaidAt == nil {
		t.Fatalf("paid_at should be set on settlement")
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.PaymentStatus != models.PaymentStatusSettlement || stored.PaidAt == nil {
		t.Fatalf("settlement not persisted: status=%s paid_at=%v", stored.PaymentStatus, stored.PaidAt)
	}
}

func TestHandleNotificationRejectsBadSignature(t *testing.T) {
	db := openWebhookTestDB(t, "badsig")
	createWebhookTestOrder(t, db, "TG20260830100002")

	svc := NewPaymentWebhookService(repository.NewOrderRepository(db), webhookTestServerKey, nil)

	_, err := svc.HandleNotification(PaymentNotification{
		OrderNo:           "TG20260830100002",
		TransactionStatus: "settlement",
		GrossAmount:       "260000.00",
		SignatureKey:      "deadbeef",
	})
	if !errors.Is(err, ErrPaymentSignatureInvalid) {
		t.Fatalf("expected signature invalid, got: %v", err)
	}

	var stored models.Order
	if err := db.Where("order_no = ?", "TG20260830100002").First(&stored).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("rejected notification must not change payment status, got %s", stored.PaymentStatus)
	}
}

func TestHandleNotificationUnknownStatus(t *testing.T) {
	db := openWebhookTestDB(t, "unknown")
	createWebhookTestOrder(t, db, "TG20260830100003")

	svc := NewPaymentWebhookService(repository.NewOrderRepository(db), webhookTestServerKey, nil)

	_, err := svc.HandleNotification(PaymentNotification{
		OrderNo:           "TG20260830100003",
		TransactionStatus: "authorize",
		GrossAmount:       "260000.00",
		SignatureKey:      signNotification("TG20260830100003", "260000.00"),
	})
	if !errors.Is(err, ErrPaymentStatusUnknown) {
		t.Fatalf("expected unknown status error, got: %v", err)
	}
}

func TestHandleNotificationCaptureAcceptSettles(t *testing.T) {
	db := openWebhookTestDB(t, "capture")
	createWebhookTestOrder(t, db, "TG20260830100004")

	svc := NewPaymentWebhookService(repository.NewOrderRepository(db), webhookTestServerKey, nil)

	order, err := svc.HandleNotification(PaymentNotification{
		OrderNo:           "TG20260830100004",
		TransactionStatus: "capture",
		FraudStatus:       "accept",
		GrossAmount:       "260000.00",
		SignatureKey:      signNotification("TG20260830100004", "260000.00"),
	})
	if err != nil {
		t.Fatalf("handle capture failed: %v", err)
	}
	if order.PaymentStatus != models.PaymentStatusSettlement {
		t.Fatalf("accepted capture should settle, got %s", order.PaymentStatus)
	}
}

func TestHandleNotificationExpireKeepsPaidAtEmpty(t *testing.T) {
	db := openWebhookTestDB(t, "expire")
	createWebhookTestOrder(t, db, "TG20260830100005")

	svc := NewPaymentWebhookService(repository.NewOrderRepository(db), webhookTestServerKey, nil)

	order, err := svc.HandleNotification(PaymentNotification{
		OrderNo:           "TG20260830100005",
		TransactionStatus: "expire",
		GrossAmount:       "260000.00",
		SignatureKey:      signNotification("TG20260830100005", "260000.00"),
	})
	if err != nil {
		t.Fatalf("handle expire failed: %v", err)
	}
	if order.PaymentStatus != models.PaymentStatusExpired {
		t.Fatalf("payment status want expired got %s", order.PaymentStatus)
	}
	if order.PaidAt != nil {
		t.Fatalf("expired notification must not set paid_at")
	}
}
