package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tokogaya/backend/internal/carrier/lionparcel"
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type stubBookingProvider struct {
	bookResult  *lionparcel.BookingResult
	bookErr     error
	trackResult *lionparcel.TrackResult
	trackErr    error
}

func (s *stubBookingProvider) CreateBooking(_ context.Context, _ lionparcel.BookingRequest) (*lionparcel.BookingResult, error) {
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return s.bookResult, nil
}

func (s *stubBookingProvider) Track(_ context.Context, _ string) (*lionparcel.TrackResult, error) {
	if s.trackErr != nil {
		return nil, s.trackErr
	}
	return s.trackResult, nil
}

func openOrderStatusTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:order_status_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderShipping{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createStatusTestOrder(t *testing.T, db *gorm.DB, status, paymentStatus string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:        fmt.Sprintf("TG%d", time.Now().UnixNano()),
		UserID:         1,
		Status:         status,
		PaymentStatus:  paymentStatus,
		SubtotalAmount: models.NewMoneyFromInt(200000),
		TotalAmount:    models.NewMoneyFromInt(220000),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func createStatusTestShipping(t *testing.T, db *gorm.DB, orderID uint, bookingCode string) *models.OrderShipping {
	t.Helper()
	shipping := &models.OrderShipping{
		OrderID:          orderID,
		ReceiverName:     "Budi",
		ReceiverPhone:    "081234567890",
		Address:          "Jl. Braga No. 1",
		RouteCode:        "BDO40000",
		ShippingTypeCode: "REGPACK",
		ShippingCost:     models.NewMoneyFromInt(20000),
		BookingCode:      bookingCode,
	}
	if err := db.Create(shipping).Error; err != nil {
		t.Fatalf("create order shipping failed: %v", err)
	}
	return shipping
}

func TestConfirmOrderRequiresSettledPayment(t *testing.T) {
	db := openOrderStatusTestDB(t, "confirm_unpaid")
	order := createStatusTestOrder(t, db, models.OrderStatusPending, models.PaymentStatusPending)

	svc := NewOrderStatusService(repository.NewOrderRepository(db), nil, nil)

	_, err := svc.ConfirmOrder(order.ID)
	if !errors.Is(err, ErrPaymentNotSettled) {
		t.Fatalf("expected payment not settled, got: %v", err)
	}
}

func TestConfirmOrderSettled(t *testing.T) {
	db := openOrderStatusTestDB(t, "confirm_paid")
	order := createStatusTestOrder(t, db, models.OrderStatusPending, models.PaymentStatusSettlement)

	svc := NewOrderStatusService(repository.NewOrderRepository(db), nil, nil)

	got, err := svc.ConfirmOrder(order.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if got.Status != models.OrderStatusConfirmed {
		t.Fatalf("status want confirmed got %s", got.Status)
	}

	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.Status != models.OrderStatusConfirmed {
		t.Fatalf("stored status want confirmed got %s", stored.Status)
	}
}

func TestBookShipmentTransitionsToShipping(t *testing.T) {
	db := openOrderStatusTestDB(t, "book")
	order := createStatusTestOrder(t, db, models.OrderStatusConfirmed, models.PaymentStatusSettlement)
	createStatusTestShipping(t, db, order.ID, "")

	carrier := &stubBookingProvider{bookResult: &lionparcel.BookingResult{STTNo: "11LP1234567890"}}
	svc := NewOrderStatusService(repository.NewOrderRepository(db), carrier, nil)

	got, err := svc.BookShipment(context.Background(), order.ID, BookShipmentInput{
		SenderName:  "Toko Gaya",
		SenderPhone: "0218888888",
	})
	if err != nil {
		t.Fatalf("book shipment failed: %v", err)
	}
	if got.Status != models.OrderStatusShipping {
		t.Fatalf("status want shipping got %s", got.Status)
	}
	if got.Shipping == nil || got.Shipping.BookingCode != "11LP1234567890" {
		t.Fatalf("booking code not persisted: %+v", got.Shipping)
	}
}

func TestBookShipmentRejectsDuplicateBooking(t *testing.T) {
	db := openOrderStatusTestDB(t, "book_dup")
	order := createStatusTestOrder(t, db, models.OrderStatusConfirmed, models.PaymentStatusSettlement)
	createStatusTestShipping(t, db, order.ID, "11LP0000000001")

	carrier := &stubBookingProvider{bookResult: &lionparcel.BookingResult{STTNo: "11LP9999999999"}}
	svc := NewOrderStatusService(repository.NewOrderRepository(db), carrier, nil)

	_, err := svc.BookShipment(context.Background(), order.ID, BookShipmentInput{})
	if !errors.Is(err, ErrOrderAlreadyBooked) {
		t.Fatalf("expected already booked, got: %v", err)
	}
}

func TestBookShipmentProviderUnavailable(t *testing.T) {
	db := openOrderStatusTestDB(t, "book_noprov")
	order := createStatusTestOrder(t, db, models.OrderStatusConfirmed, models.PaymentStatusSettlement)
	createStatusTestShipping(t, db, order.ID, "")

	svc := NewOrderStatusService(repository.NewOrderRepository(db), nil, nil)

	_, err := svc.BookShipment(context.Background(), order.ID, BookShipmentInput{})
	if !errors.Is(err, ErrShippingProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got: %v", err)
	}
}

func TestHandleDeliveryStatusPODCompletesOnce(t *testing.T) {
	db := openOrderStatusTestDB(t, "pod")
	order := createStatusTestOrder(t, db, models.OrderStatusShipping, models.PaymentStatusSettlement)
	createStatusTestShipping(t, db, order.ID, "11LP1234567890")

	svc := NewOrderStatusService(repository.NewOrderRepository(db), nil, nil)

	got, err := svc.HandleDeliveryStatus("11LP1234567890", "POD")
	if err != nil {
		t.Fatalf("handle pod failed: %v", err)
	}
	if got.Status != models.OrderStatusComplete {
		t.Fatalf("status want complete got %s", got.Status)
	}
	if got.Shipping == nil || got.Shipping.DeliveredAt == nil {
		t.Fatalf("delivered_at should be set")
	}

	// 回调重复投递：已完成订单直接返回
	again, err := svc.HandleDeliveryStatus("11LP1234567890", "POD")
	if err != nil {
		t.Fatalf("duplicate pod should be ignored: %v", err)
	}
	if again.Status != models.OrderStatusComplete {
		t.Fatalf("duplicate pod status want complete got %s", again.Status)
	}
}

func TestHandleDeliveryStatusIgnoresTransitCodes(t *testing.T) {
	db := openOrderStatusTestDB(t, "transit")
	order := createStatusTestOrder(t, db, models.OrderStatusShipping, models.PaymentStatusSettlement)
	createStatusTestShipping(t, db, order.ID, "11LP1234567890")

	svc := NewOrderStatusService(repository.NewOrderRepository(db), nil, nil)

	got, err := svc.HandleDeliveryStatus("11LP1234567890", "DEL")
	if err != nil {
		t.Fatalf("handle transit status failed: %v", err)
	}
	if got.Status != models.OrderStatusShipping {
		t.Fatalf("transit status should not change order, got %s", got.Status)
	}
}

func TestTrackOrderRequiresBookingCode(t *testing.T) {
	db := openOrderStatusTestDB(t, "track")
	order := createStatusTestOrder(t, db, models.OrderStatusConfirmed, models.PaymentStatusSettlement)
	createStatusTestShipping(t, db, order.ID, "")

	carrier := &stubBookingProvider{trackResult: &lionparcel.TrackResult{STTNo: "11LP1234567890"}}
	svc := NewOrderStatusService(repository.NewOrderRepository(db), carrier, nil)

	_, err := svc.TrackOrder(context.Background(), order.ID, order.UserID)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found for unbooked order, got: %v", err)
	}
}
