package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openReturnTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:return_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{}, &models.OrderItem{}, &models.OrderShipping{},
		&models.ReturnOrder{}, &models.RefundOrder{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	// 审批流程在事务内同时更新退货单与订单
	prev := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prev })
	return db
}

func newReturnTestService(db *gorm.DB) *ReturnService {
	return NewReturnService(repository.NewReturnRepository(db), repository.NewOrderRepository(db), nil)
}

func createReturnTestOrder(t *testing.T, db *gorm.DB, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       fmt.Sprintf("TG%d", time.Now().UnixNano()),
		UserID:        1,
		Status:        status,
		PaymentStatus: models.PaymentStatusSettlement,
		TotalAmount:   models.NewMoneyFromInt(260000),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestCreateReturnOnlyForCompletedOrder(t *testing.T) {
	db := openReturnTestDB(t, "incomplete")
	order := createReturnTestOrder(t, db, models.OrderStatusShipping)
	svc := newReturnTestService(db)

	_, err := svc.CreateReturn(1, CreateReturnInput{OrderID: order.ID, Reason: "salah ukuran"})
	if !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected status invalid for shipping order, got: %v", err)
	}
}

func TestCreateReturnOncePerOrder(t *testing.T) {
	db := openReturnTestDB(t, "once")
	order := createReturnTestOrder(t, db, models.OrderStatusComplete)
	svc := newReturnTestService(db)

	first, err := svc.CreateReturn(1, CreateReturnInput{OrderID: order.ID, Reason: "salah ukuran", WantRefund: true})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}
	if first.Status != models.ReturnStatusPending {
		t.Fatalf("return status want pending got %s", first.Status)
	}

	_, err = svc.CreateReturn(1, CreateReturnInput{OrderID: order.ID, Reason: "berubah pikiran"})
	if !errors.Is(err, ErrReturnExists) {
		t.Fatalf("expected return exists, got: %v", err)
	}
}

func TestReviewReturnApproveWithRefundMovesOrderReturned(t *testing.T) {
	db := openReturnTestDB(t, "approve")
	order := createReturnTestOrder(t, db, models.OrderStatusComplete)
	svc := newReturnTestService(db)

	ro, err := svc.CreateReturn(1, CreateReturnInput{OrderID: order.ID, Reason: "cacat produksi", WantRefund: true})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}

	reviewed, err := svc.ReviewReturn(ro.ID, true)
	if err != nil {
		t.Fatalf("review return failed: %v", err)
	}
	if reviewed.Status != models.ReturnStatusConfirmed {
		t.Fatalf("return status want confirmed got %s", reviewed.Status)
	}
	if reviewed.ConfirmedAt == nil {
		t.Fatalf("confirmed_at should be set")
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.Status != models.OrderStatusReturned {
		t.Fatalf("order status want returned got %s", stored.Status)
	}

	// 已审批的申请不可重复审批
	if _, err := svc.ReviewReturn(ro.ID, false); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected status invalid for re-review, got: %v", err)
	}
}

func TestCreateRefundRequiresConfirmedReturn(t *testing.T) {
	db := openReturnTestDB(t, "refund")
	order := createReturnTestOrder(t, db, models.OrderStatusComplete)
	svc := newReturnTestService(db)

	ro, err := svc.CreateReturn(1, CreateReturnInput{OrderID: order.ID, Reason: "cacat produksi"})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}

	_, err = svc.CreateRefund(1, CreateRefundInput{OrderID: order.ID})
	if !errors.Is(err, ErrReturnNotConfirmed) {
		t.Fatalf("expected return not confirmed, got: %v", err)
	}

	if _, err := svc.ReviewReturn(ro.ID, true); err != nil {
		t.Fatalf("review return failed: %v", err)
	}

	refund, err := svc.CreateRefund(1, CreateRefundInput{OrderID: order.ID})
	if err != nil {
		t.Fatalf("create refund failed: %v", err)
	}
	if !refund.Amount.Decimal.Equal(order.TotalAmount.Decimal) {
		t.Fatalf("refund amount want order total, got %s", refund.Amount.Decimal.String())
	}

	_, err = svc.CreateRefund(1, CreateRefundInput{OrderID: order.ID})
	if !errors.Is(err, ErrRefundExists) {
		t.Fatalf("expected refund exists, got: %v", err)
	}
}

func TestReviewRefundApproveMovesOrderRefunded(t *testing.T) {
	db := openReturnTestDB(t, "refund_approve")
	order := createReturnTestOrder(t, db, models.OrderStatusComplete)
	svc := newReturnTestService(db)

	ro, err := svc.CreateReturn(1, CreateReturnInput{OrderID: order.ID, Reason: "cacat produksi"})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}
	if _, err := svc.ReviewReturn(ro.ID, true); err != nil {
		t.Fatalf("review return failed: %v", err)
	}
	refund, err := svc.CreateRefund(1, CreateRefundInput{OrderID: order.ID})
	if err != nil {
		t.Fatalf("create refund failed: %v", err)
	}

	reviewed, err := svc.ReviewRefund(refund.ID, true, "RCP-001")
	if err != nil {
		t.Fatalf("review refund failed: %v", err)
	}
	if reviewed.Status != models.ReturnStatusConfirmed {
		t.Fatalf("refund status want confirmed got %s", reviewed.Status)
	}
	if reviewed.ReceiptNo != "RCP-001" {
		t.Fatalf("receipt no want RCP-001 got %s", reviewed.ReceiptNo)
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.Status != models.OrderStatusRefunded {
		t.Fatalf("order status want refunded got %s", stored.Status)
	}
}
