package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tokogaya/backend/internal/carrier/lionparcel"
	"github.com/tokogaya/backend/internal/couponcode"
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type checkoutTestEnv struct {
	db       *gorm.DB
	keeper   couponcode.Keeper
	carrier  *stubTariffProvider
	cart     *CartService
	coupon   *CouponService
	shipping *ShippingService
	orders   *OrderService
}

func newCheckoutTestEnv(t *testing.T, name string) *checkoutTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:checkout_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{}, &models.Product{}, &models.Stock{}, &models.CartItem{},
		&models.Coupon{}, &models.CouponUser{},
		&models.ShippingRoute{}, &models.ShippingType{},
		&models.ShippingGroup{}, &models.ShippingGroupItem{}, &models.ShippingGroupTariff{},
		&models.ShippingAddress{},
		&models.Order{}, &models.OrderItem{}, &models.OrderShipping{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	// 订单物化在单事务内完成
	prev := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prev })

	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	carrier := &stubTariffProvider{result: &lionparcel.TariffResult{
		Entries: []lionparcel.TariffEntry{
			{ProductCode: "REGPACK", TotalTariff: 20000, EstimatedSLA: "2 - 3 hari"},
		},
	}}

	cartRepo := repository.NewCartRepository(db)
	stockRepo := repository.NewStockRepository(db)
	cartService := NewCartService(cartRepo, stockRepo)
	couponService := NewCouponService(
		repository.NewCouponRepository(db),
		repository.NewCouponUserRepository(db),
		keeper,
		CouponPolicy{},
	)
	shippingService := NewShippingService(repository.NewShippingRepository(db), repository.NewAddressRepository(db), carrier)
	orderService := NewOrderService(
		repository.NewOrderRepository(db),
		stockRepo,
		cartRepo,
		repository.NewAddressRepository(db),
		repository.NewCouponUserRepository(db),
		cartService,
		couponService,
		shippingService,
		nil,
		30,
	)

	return &checkoutTestEnv{
		db:       db,
		keeper:   keeper,
		carrier:  carrier,
		cart:     cartService,
		coupon:   couponService,
		shipping: shippingService,
		orders:   orderService,
	}
}

// seedCheckoutFixtures 准备商品、购物车与默认地址：2 件 120000 的商品，单件 800 克
func (env *checkoutTestEnv) seedCheckoutFixtures(t *testing.T) models.Stock {
	t.Helper()
	category := models.Category{Slug: "kemeja", Name: "Kemeja"}
	if err := env.db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := models.Product{
		CategoryID: category.ID,
		Slug:       "kemeja-batik-parang",
		Name:       "Kemeja Batik Parang",
		IsActive:   true,
	}
	if err := env.db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	stock := models.Stock{
		ProductID:   product.ID,
		Size:        "L",
		Color:       "Coklat",
		PriceAmount: models.NewMoneyFromInt(120000),
		Quantity:    10,
		WeightGram:  800,
		IsActive:    true,
	}
	if err := env.db.Create(&stock).Error; err != nil {
		t.Fatalf("create stock failed: %v", err)
	}

	if _, err := env.cart.AddItem(1, stock.ID, 2); err != nil {
		t.Fatalf("add cart item failed: %v", err)
	}

	route := models.ShippingRoute{RouteCode: "BDO40000", City: "Bandung", Province: "Jawa Barat"}
	if err := env.db.Create(&route).Error; err != nil {
		t.Fatalf("create route failed: %v", err)
	}
	shippingType := models.ShippingType{Code: "REGPACK", Name: "Reguler", IsActive: true}
	if err := env.db.Create(&shippingType).Error; err != nil {
		t.Fatalf("create shipping type failed: %v", err)
	}
	address := models.ShippingAddress{
		UserID:        1,
		ReceiverName:  "Budi",
		ReceiverPhone: "081234567890",
		Address:       "Jl. Braga No. 1",
		RouteCode:     "BDO40000",
		IsDefault:     true,
	}
	if err := env.db.Create(&address).Error; err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	return stock
}

func TestCheckoutMaterializesOrder(t *testing.T) {
	env := newCheckoutTestEnv(t, "happy")
	stock := env.seedCheckoutFixtures(t)

	order, err := env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if order.Status != models.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	if !order.SubtotalAmount.Decimal.Equal(models.NewMoneyFromInt(240000).Decimal) {
		t.Fatalf("subtotal want 240000 got %s", order.SubtotalAmount.Decimal.String())
	}
	if !order.ShippingAmount.Decimal.Equal(models.NewMoneyFromInt(20000).Decimal) {
		t.Fatalf("shipping want 20000 got %s", order.ShippingAmount.Decimal.String())
	}
	if !order.TotalAmount.Decimal.Equal(models.NewMoneyFromInt(260000).Decimal) {
		t.Fatalf("total want 260000 got %s", order.TotalAmount.Decimal.String())
	}
	if order.TotalWeight != 1600 {
		t.Fatalf("total weight want 1600g got %d", order.TotalWeight)
	}
	if env.carrier.lastReq.WeightKG != 2 {
		t.Fatalf("carrier should receive 2kg, got %d", env.carrier.lastReq.WeightKG)
	}
	if order.ExpiresAt == nil {
		t.Fatalf("pending order should carry payment deadline")
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}
	if order.Shipping == nil || order.Shipping.RouteCode != "BDO40000" {
		t.Fatalf("shipping record missing: %+v", order.Shipping)
	}

	var storedStock models.Stock
	if err := env.db.First(&storedStock, stock.ID).Error; err != nil {
		t.Fatalf("load stock failed: %v", err)
	}
	if storedStock.Quantity != 8 {
		t.Fatalf("stock want 8 after checkout got %d", storedStock.Quantity)
	}

	var cartCount int64
	if err := env.db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart items failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("cart should be cleared after checkout, got %d rows", cartCount)
	}
}

func TestCheckoutWithLimitedCouponWritesRedemption(t *testing.T) {
	env := newCheckoutTestEnv(t, "coupon")
	env.seedCheckoutFixtures(t)

	issued, err := couponcode.Issue(env.keeper)
	if err != nil {
		t.Fatalf("issue coupon failed: %v", err)
	}
	coupon := models.Coupon{
		Prefix:      issued.Prefix,
		Code:        issued.Secret,
		Name:        "private 10k",
		IsPrivate:   true,
		IsLimited:   true,
		IsActive:    true,
		MaxPurchase: models.NewMoneyFromInt(10000),
	}
	if err := env.db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	order, err := env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
		CouponCodes:      []string{issued.FullCode},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if !order.DiscountAmount.Decimal.Equal(models.NewMoneyFromInt(10000).Decimal) {
		t.Fatalf("discount want 10000 got %s", order.DiscountAmount.Decimal.String())
	}
	if !order.TotalAmount.Decimal.Equal(models.NewMoneyFromInt(250000).Decimal) {
		t.Fatalf("total want 250000 got %s", order.TotalAmount.Decimal.String())
	}
	if order.CouponCode1 != issued.FullCode {
		t.Fatalf("coupon code should be recorded on order")
	}

	var redemption models.CouponUser
	if err := env.db.Where("coupon_id = ? AND user_id = ?", coupon.ID, 1).First(&redemption).Error; err != nil {
		t.Fatalf("redemption record missing: %v", err)
	}
	if redemption.OrderID != order.ID {
		t.Fatalf("redemption order id want %d got %d", order.ID, redemption.OrderID)
	}
}

func TestCheckoutKeepsMoneyIdentityWithFractionalDiscount(t *testing.T) {
	env := newCheckoutTestEnv(t, "identity")
	stock := env.seedCheckoutFixtures(t)

	// 单价 120001 × 2 = 240002，10% 折扣产生小数
	if err := env.db.Model(&models.Stock{}).Where("id = ?", stock.ID).
		Update("price_amount", models.NewMoneyFromInt(120001)).Error; err != nil {
		t.Fatalf("update stock price failed: %v", err)
	}
	issued, err := couponcode.Issue(env.keeper)
	if err != nil {
		t.Fatalf("issue coupon failed: %v", err)
	}
	coupon := models.Coupon{
		Prefix:        issued.Prefix,
		Code:          issued.Secret,
		Name:          "diskon 10",
		DiscountValue: 10,
		IsActive:      true,
	}
	if err := env.db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	order, err := env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
		CouponCodes:      []string{issued.FullCode},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if !order.DiscountAmount.Decimal.Equal(models.NewMoneyFromInt(24001).Decimal) {
		t.Fatalf("discount want 24001 got %s", order.DiscountAmount.Decimal.String())
	}
	if !order.TotalAmount.Decimal.Equal(models.NewMoneyFromInt(236001).Decimal) {
		t.Fatalf("total want 236001 got %s", order.TotalAmount.Decimal.String())
	}
	identity := order.SubtotalAmount.Decimal.
		Sub(order.DiscountAmount.Decimal).
		Add(order.ShippingAmount.Decimal).
		Add(order.TaxAmount.Decimal)
	if !order.TotalAmount.Decimal.Equal(identity) {
		t.Fatalf("total %s != subtotal-discount+shipping+tax %s",
			order.TotalAmount.Decimal.String(), identity.String())
	}
}

func TestCheckoutRollsBackWhenStockSoldOutMidway(t *testing.T) {
	env := newCheckoutTestEnv(t, "sellout")
	stock := env.seedCheckoutFixtures(t)

	// 订单行落库后、扣库存前另一笔结算卖空了库存
	sold := false
	env.db.Callback().Create().After("gorm:create").Register("checkout_rival_sale", func(tx *gorm.DB) {
		if sold || tx.Statement == nil || tx.Statement.Table != "orders" {
			return
		}
		sold = true
		tx.Session(&gorm.Session{NewDB: true}).Model(&models.Stock{}).
			Where("id = ?", stock.ID).Update("quantity", 0)
	})

	_, err := env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
	})
	if !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected stock insufficient, got: %v", err)
	}

	// 整个事务回滚，不留任何写入
	var orderCount int64
	if err := env.db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("failed checkout must not create order, got %d", orderCount)
	}
	var cartCount int64
	if err := env.db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart items failed: %v", err)
	}
	if cartCount != 1 {
		t.Fatalf("cart must survive failed checkout, got %d rows", cartCount)
	}
	var storedStock models.Stock
	if err := env.db.First(&storedStock, stock.ID).Error; err != nil {
		t.Fatalf("load stock failed: %v", err)
	}
	if storedStock.Quantity != 10 {
		t.Fatalf("stock want 10 after rollback got %d", storedStock.Quantity)
	}
}

func TestCheckoutRollsBackWhenCouponRedeemedMidway(t *testing.T) {
	env := newCheckoutTestEnv(t, "coupon_race")
	stock := env.seedCheckoutFixtures(t)

	issued, err := couponcode.Issue(env.keeper)
	if err != nil {
		t.Fatalf("issue coupon failed: %v", err)
	}
	coupon := models.Coupon{
		Prefix:      issued.Prefix,
		Code:        issued.Secret,
		Name:        "private 10k",
		IsPrivate:   true,
		IsLimited:   true,
		IsActive:    true,
		MaxPurchase: models.NewMoneyFromInt(10000),
	}
	if err := env.db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	// 校验通过后、核销落库前，同一账号的另一笔结算先核销了限量券
	raced := false
	env.db.Callback().Create().After("gorm:create").Register("checkout_rival_redeem", func(tx *gorm.DB) {
		if raced || tx.Statement == nil || tx.Statement.Table != "orders" {
			return
		}
		raced = true
		tx.Session(&gorm.Session{NewDB: true}).Create(&models.CouponUser{CouponID: coupon.ID, UserID: 1})
	})

	_, err = env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
		CouponCodes:      []string{issued.FullCode},
	})
	if !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("expected coupon already used, got: %v", err)
	}

	var orderCount int64
	if err := env.db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("failed checkout must not create order, got %d", orderCount)
	}
	var redemptionCount int64
	if err := env.db.Model(&models.CouponUser{}).Count(&redemptionCount).Error; err != nil {
		t.Fatalf("count redemptions failed: %v", err)
	}
	if redemptionCount != 0 {
		t.Fatalf("rolled back checkout must not leave redemption rows, got %d", redemptionCount)
	}
	var storedStock models.Stock
	if err := env.db.First(&storedStock, stock.ID).Error; err != nil {
		t.Fatalf("load stock failed: %v", err)
	}
	if storedStock.Quantity != 10 {
		t.Fatalf("stock want 10 after rollback got %d", storedStock.Quantity)
	}
}

func TestCheckoutRetriesOrderNoCollision(t *testing.T) {
	env := newCheckoutTestEnv(t, "orderno_race")
	stock := env.seedCheckoutFixtures(t)

	// 编号查重之后、落库之前被另一笔订单抢占同一编号
	var firstNo string
	env.db.Callback().Create().Before("gorm:create").Register("checkout_rival_order_no", func(tx *gorm.DB) {
		if firstNo != "" || tx.Statement == nil || tx.Statement.Table != "orders" {
			return
		}
		rival, ok := tx.Statement.Dest.(*models.Order)
		if !ok {
			return
		}
		firstNo = rival.OrderNo
		tx.Session(&gorm.Session{NewDB: true}).Create(&models.Order{
			OrderNo:       rival.OrderNo,
			UserID:        99,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
		})
	})

	order, err := env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
	})
	if err != nil {
		t.Fatalf("checkout should retry with a fresh order no: %v", err)
	}
	if firstNo == "" {
		t.Fatalf("rival order no was never taken")
	}
	if order.OrderNo == firstNo {
		t.Fatalf("order no %s should differ from the taken %s", order.OrderNo, firstNo)
	}

	var orderCount int64
	if err := env.db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("want exactly one order after retry, got %d", orderCount)
	}
	var storedStock models.Stock
	if err := env.db.First(&storedStock, stock.ID).Error; err != nil {
		t.Fatalf("load stock failed: %v", err)
	}
	if storedStock.Quantity != 8 {
		t.Fatalf("stock want 8 after successful retry got %d", storedStock.Quantity)
	}
}

func TestCheckoutRequiresSelectedCartItems(t *testing.T) {
	env := newCheckoutTestEnv(t, "emptycart")

	_, err := env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
	})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected cart empty, got: %v", err)
	}
}

func TestCheckoutRequiresDefaultAddress(t *testing.T) {
	env := newCheckoutTestEnv(t, "noaddress")
	env.seedCheckoutFixtures(t)
	if err := env.db.Where("user_id = ?", 1).Delete(&models.ShippingAddress{}).Error; err != nil {
		t.Fatalf("delete address failed: %v", err)
	}

	_, err := env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
	})
	if !errors.Is(err, ErrShippingAddressRequired) {
		t.Fatalf("expected address required, got: %v", err)
	}
}

func TestCheckoutFailsWhenCarrierDown(t *testing.T) {
	env := newCheckoutTestEnv(t, "carrierdown")
	stock := env.seedCheckoutFixtures(t)
	env.carrier.err = errors.New("dial tcp: timeout")

	_, err := env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
	})
	if !errors.Is(err, ErrShippingProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got: %v", err)
	}

	// 失败的结算不得留下任何痕迹
	var orderCount int64
	if err := env.db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("failed checkout must not create order, got %d", orderCount)
	}
	var storedStock models.Stock
	if err := env.db.First(&storedStock, stock.ID).Error; err != nil {
		t.Fatalf("load stock failed: %v", err)
	}
	if storedStock.Quantity != 10 {
		t.Fatalf("stock must stay untouched, got %d", storedStock.Quantity)
	}
}

func TestCancelPendingOrderRestoresStock(t *testing.T) {
	env := newCheckoutTestEnv(t, "cancel")
	stock := env.seedCheckoutFixtures(t)

	order, err := env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	cancelled, err := env.orders.CancelOrderByUser(order.ID, 1)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.OrderStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}
	if cancelled.CanceledAt == nil {
		t.Fatalf("canceled_at should be set")
	}

	var storedStock models.Stock
	if err := env.db.First(&storedStock, stock.ID).Error; err != nil {
		t.Fatalf("load stock failed: %v", err)
	}
	if storedStock.Quantity != 10 {
		t.Fatalf("stock want restored to 10 got %d", storedStock.Quantity)
	}
}

func TestCancelSkipsSettledOrder(t *testing.T) {
	env := newCheckoutTestEnv(t, "cancel_settled")
	stock := env.seedCheckoutFixtures(t)

	order, err := env.orders.Checkout(context.Background(), CheckoutInput{
		UserID:           1,
		ShippingTypeCode: "REGPACK",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if err := env.db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("payment_status", models.PaymentStatusSettlement).Error; err != nil {
		t.Fatalf("mark settled failed: %v", err)
	}

	// 超时任务与已结算订单竞态：已结算的订单不取消
	got, err := env.orders.CancelPendingOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel should be a no-op: %v", err)
	}
	if got.Status != models.OrderStatusPending {
		t.Fatalf("settled order must stay pending, got %s", got.Status)
	}

	var storedStock models.Stock
	if err := env.db.First(&storedStock, stock.ID).Error; err != nil {
		t.Fatalf("load stock failed: %v", err)
	}
	if storedStock.Quantity != 8 {
		t.Fatalf("stock must stay decremented, got %d", storedStock.Quantity)
	}
}
