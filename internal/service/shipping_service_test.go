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

type stubTariffProvider struct {
	result  *lionparcel.TariffResult
	err     error
	lastReq lionparcel.TariffRequest
}

func (s *stubTariffProvider) GetTariff(_ context.Context, req lionparcel.TariffRequest) (*lionparcel.TariffResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func openShippingTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:shipping_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.ShippingRoute{},
		&models.ShippingType{},
		&models.ShippingGroup{},
		&models.ShippingGroupItem{},
		&models.ShippingGroupTariff{},
		&models.ShippingAddress{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func seedShippingBase(t *testing.T, db *gorm.DB) (models.ShippingRoute, models.ShippingType) {
	t.Helper()
	route := models.ShippingRoute{RouteCode: "BDO40000", City: "Bandung", Province: "Jawa Barat"}
	if err := db.Create(&route).Error; err != nil {
		t.Fatalf("create route failed: %v", err)
	}
	shippingType := models.ShippingType{Code: "REGPACK", Name: "Reguler", IsActive: true}
	if err := db.Create(&shippingType).Error; err != nil {
		t.Fatalf("create shipping type failed: %v", err)
	}
	return route, shippingType
}

func TestWeightToKG(t *testing.T) {
	cases := []struct {
		grams int
		want  int
	}{
		{grams: 0, want: 1},
		{grams: 1, want: 1},
		{grams: 999, want: 1},
		{grams: 1000, want: 1},
		{grams: 1001, want: 2},
		{grams: 2500, want: 3},
	}
	for _, tc := range cases {
		if got := WeightToKG(tc.grams); got != tc.want {
			t.Fatalf("WeightToKG(%d) want %d got %d", tc.grams, tc.want, got)
		}
	}
}

func TestQuoteUsesCarrierTariff(t *testing.T) {
	db := openShippingTestDB(t, "carrier")
	seedShippingBase(t, db)

	carrier := &stubTariffProvider{result: &lionparcel.TariffResult{
		Entries: []lionparcel.TariffEntry{
			{ProductCode: "REGPACK", TotalTariff: 25000, EstimatedSLA: "2 - 3 hari"},
		},
	}}
	svc := NewShippingService(repository.NewShippingRepository(db), repository.NewAddressRepository(db), carrier)

	quote, err := svc.Quote(context.Background(), "BDO40000", "regpack", 1600)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.WeightKG != 2 {
		t.Fatalf("weight want 2kg got %d", quote.WeightKG)
	}
	if carrier.lastReq.WeightKG != 2 {
		t.Fatalf("carrier should receive rounded weight, got %d", carrier.lastReq.WeightKG)
	}
	if !quote.Amount.Decimal.Equal(models.NewMoneyFromInt(25000).Decimal) {
		t.Fatalf("amount want 25000 got %s", quote.Amount.Decimal.String())
	}
	if quote.Negotiated {
		t.Fatalf("quote without contract group should not be negotiated")
	}
	if quote.EstimatedSLA != "2 - 3 hari" {
		t.Fatalf("sla want carrier estimate got %s", quote.EstimatedSLA)
	}
}

func TestQuoteNegotiatedRateOverridesCarrier(t *testing.T) {
	db := openShippingTestDB(t, "negotiated")
	route, shippingType := seedShippingBase(t, db)

	group := models.ShippingGroup{Name: "Kontrak Jawa"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}
	if err := db.Create(&models.ShippingGroupItem{GroupID: group.ID, RouteID: route.ID}).Error; err != nil {
		t.Fatalf("create group item failed: %v", err)
	}
	if err := db.Create(&models.ShippingGroupTariff{
		GroupID:        group.ID,
		ShippingTypeID: shippingType.ID,
		RatePerKG:      models.NewMoneyFromInt(8000),
	}).Error; err != nil {
		t.Fatalf("create group tariff failed: %v", err)
	}

	carrier := &stubTariffProvider{result: &lionparcel.TariffResult{
		Entries: []lionparcel.TariffEntry{
			{ProductCode: "REGPACK", TotalTariff: 40000, EstimatedSLA: "2 - 3 hari"},
		},
	}}
	svc := NewShippingService(repository.NewShippingRepository(db), repository.NewAddressRepository(db), carrier)

	quote, err := svc.Quote(context.Background(), "BDO40000", "REGPACK", 2300)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.WeightKG != 3 {
		t.Fatalf("weight want 3kg got %d", quote.WeightKG)
	}
	if !quote.Negotiated {
		t.Fatalf("quote should hit negotiated rate")
	}
	if !quote.Amount.Decimal.Equal(models.NewMoneyFromInt(24000).Decimal) {
		t.Fatalf("amount want 24000 got %s", quote.Amount.Decimal.String())
	}
	// 协议价只覆盖金额，时效仍取承运商报价
	if quote.EstimatedSLA != "2 - 3 hari" {
		t.Fatalf("sla want carrier estimate got %s", quote.EstimatedSLA)
	}
}

func TestQuoteProviderUnavailable(t *testing.T) {
	db := openShippingTestDB(t, "noprovider")
	seedShippingBase(t, db)

	svc := NewShippingService(repository.NewShippingRepository(db), repository.NewAddressRepository(db), nil)

	_, err := svc.Quote(context.Background(), "BDO40000", "REGPACK", 1000)
	if !errors.Is(err, ErrShippingProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got: %v", err)
	}
}

func TestQuoteEmbargoedType(t *testing.T) {
	db := openShippingTestDB(t, "embargo")
	seedShippingBase(t, db)

	carrier := &stubTariffProvider{result: &lionparcel.TariffResult{
		Entries: []lionparcel.TariffEntry{
			{ProductCode: "REGPACK", TotalTariff: 25000, IsEmbargo: true},
		},
	}}
	svc := NewShippingService(repository.NewShippingRepository(db), repository.NewAddressRepository(db), carrier)

	_, err := svc.Quote(context.Background(), "BDO40000", "REGPACK", 1000)
	if !errors.Is(err, ErrShippingTypeNotFound) {
		t.Fatalf("expected shipping type not found for embargoed route, got: %v", err)
	}
}

func TestCreateAddressDefaultsAndLimit(t *testing.T) {
	db := openShippingTestDB(t, "address")
	seedShippingBase(t, db)

	svc := NewShippingService(repository.NewShippingRepository(db), repository.NewAddressRepository(db), nil)

	input := AddressInput{
		ReceiverName:  "Budi",
		ReceiverPhone: "081234567890",
		Address:       "Jl. Braga No. 1",
		RouteCode:     "BDO40000",
	}

	first, err := svc.CreateAddress(1, input)
	if err != nil {
		t.Fatalf("create first address failed: %v", err)
	}
	if !first.IsDefault {
		t.Fatalf("first address should become default")
	}

	for i := 0; i < 4; i++ {
		if _, err := svc.CreateAddress(1, input); err != nil {
			t.Fatalf("create address %d failed: %v", i+2, err)
		}
	}

	_, err = svc.CreateAddress(1, input)
	if !errors.Is(err, ErrShippingAddressLimit) {
		t.Fatalf("expected address limit error, got: %v", err)
	}
}

func TestDeleteDefaultAddressPromotesRemaining(t *testing.T) {
	db := openShippingTestDB(t, "promote")
	seedShippingBase(t, db)

	svc := NewShippingService(repository.NewShippingRepository(db), repository.NewAddressRepository(db), nil)

	input := AddressInput{
		ReceiverName:  "Budi",
		ReceiverPhone: "081234567890",
		Address:       "Jl. Braga No. 1",
		RouteCode:     "BDO40000",
	}
	first, err := svc.CreateAddress(2, input)
	if err != nil {
		t.Fatalf("create first address failed: %v", err)
	}
	if _, err := svc.CreateAddress(2, input); err != nil {
		t.Fatalf("create second address failed: %v", err)
	}

	if err := svc.DeleteAddress(2, first.ID); err != nil {
		t.Fatalf("delete default address failed: %v", err)
	}

	fallback, err := svc.GetDefaultAddress(2)
	if err != nil {
		t.Fatalf("get default address failed: %v", err)
	}
	if fallback == nil {
		t.Fatalf("remaining address should be promoted to default")
	}
}
