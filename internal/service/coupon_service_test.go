package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tokogaya/backend/internal/couponcode"
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openCouponTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:coupon_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Coupon{}, &models.CouponUser{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newCouponTestService(db *gorm.DB, keeper couponcode.Keeper) *CouponService {
	return NewCouponService(
		repository.NewCouponRepository(db),
		repository.NewCouponUserRepository(db),
		keeper,
		CouponPolicy{},
	)
}

// issueTestCoupon 入库一张券并返回发放给用户的完整券码
func issueTestCoupon(t *testing.T, db *gorm.DB, keeper couponcode.Keeper, mutate func(*models.Coupon)) string {
	t.Helper()
	issued, err := couponcode.Issue(keeper)
	if err != nil {
		t.Fatalf("issue coupon failed: %v", err)
	}
	coupon := models.Coupon{
		Prefix:   issued.Prefix,
		Code:     issued.Secret,
		Name:     "test coupon",
		IsActive: true,
	}
	if mutate != nil {
		mutate(&coupon)
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return issued.FullCode
}

func TestResolveStacksPublicAndPrivate(t *testing.T) {
	db := openCouponTestDB(t, "stack")
	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	svc := newCouponTestService(db, keeper)

	public := issueTestCoupon(t, db, keeper, func(c *models.Coupon) {
		c.DiscountValue = 20
	})
	private := issueTestCoupon(t, db, keeper, func(c *models.Coupon) {
		c.IsPrivate = true
		c.MaxPurchase = models.NewMoneyFromInt(15000)
	})

	result, err := svc.Resolve(models.NewMoneyFromInt(100000), []string{public, private}, 1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(result.Applied) != 2 {
		t.Fatalf("expected 2 applied coupons, got %d", len(result.Applied))
	}
	if !result.Applied[0].Coupon.IsPrivate {
		t.Fatalf("private coupon should settle first")
	}
	if !result.Discount.Decimal.Equal(models.NewMoneyFromInt(35000).Decimal) {
		t.Fatalf("discount want 35000 got %s", result.Discount.Decimal.String())
	}
}

func TestResolvePercentDiscountRoundsUp(t *testing.T) {
	db := openCouponTestDB(t, "ceil")
	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	svc := newCouponTestService(db, keeper)

	code := issueTestCoupon(t, db, keeper, func(c *models.Coupon) { c.DiscountValue = 10 })

	// 10% × 240002 = 24000.2，派生折扣向上取整为整数金额
	result, err := svc.Resolve(models.NewMoneyFromInt(240002), []string{code}, 1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !result.Discount.Decimal.Equal(models.NewMoneyFromInt(24001).Decimal) {
		t.Fatalf("discount want 24001 got %s", result.Discount.Decimal.String())
	}
}

func TestResolveRejectsTwoPublicCoupons(t *testing.T) {
	db := openCouponTestDB(t, "twopublic")
	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	svc := newCouponTestService(db, keeper)

	first := issueTestCoupon(t, db, keeper, func(c *models.Coupon) { c.DiscountValue = 10 })
	second := issueTestCoupon(t, db, keeper, func(c *models.Coupon) { c.DiscountValue = 20 })

	_, err := svc.Resolve(models.NewMoneyFromInt(100000), []string{first, second}, 1)
	if !errors.Is(err, ErrOnlyOneFreeCoupon) {
		t.Fatalf("expected only-one-free-coupon error, got: %v", err)
	}
}

func TestResolveRejectsSameCouponTwice(t *testing.T) {
	db := openCouponTestDB(t, "duplicate")
	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	svc := newCouponTestService(db, keeper)

	code := issueTestCoupon(t, db, keeper, func(c *models.Coupon) { c.DiscountValue = 10 })

	_, err := svc.Resolve(models.NewMoneyFromInt(100000), []string{code, code}, 1)
	if !errors.Is(err, ErrDuplicateCoupon) {
		t.Fatalf("expected duplicate coupon error, got: %v", err)
	}
}

func TestResolveRejectsTamperedProof(t *testing.T) {
	db := openCouponTestDB(t, "tamper")
	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	svc := newCouponTestService(db, keeper)

	code := issueTestCoupon(t, db, keeper, func(c *models.Coupon) { c.DiscountValue = 10 })

	forged := code[:couponcode.PrefixLength] + "not-a-proof"
	_, err := svc.Resolve(models.NewMoneyFromInt(100000), []string{forged}, 1)
	if !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected coupon invalid, got: %v", err)
	}
}

func TestResolveLimitedCouponSingleRedemption(t *testing.T) {
	db := openCouponTestDB(t, "limited")
	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	svc := newCouponTestService(db, keeper)

	code := issueTestCoupon(t, db, keeper, func(c *models.Coupon) {
		c.DiscountValue = 10
		c.IsLimited = true
	})

	if _, err := svc.Resolve(models.NewMoneyFromInt(100000), []string{code}, 7); err != nil {
		t.Fatalf("first resolve should pass: %v", err)
	}

	var coupon models.Coupon
	if err := db.First(&coupon).Error; err != nil {
		t.Fatalf("load coupon failed: %v", err)
	}
	if err := db.Create(&models.CouponUser{CouponID: coupon.ID, UserID: 7, OrderID: 1}).Error; err != nil {
		t.Fatalf("create redemption record failed: %v", err)
	}

	_, err := svc.Resolve(models.NewMoneyFromInt(100000), []string{code}, 7)
	if !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("expected coupon already used, got: %v", err)
	}
}

func TestResolveMinPurchaseNotMet(t *testing.T) {
	db := openCouponTestDB(t, "minpurchase")
	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	svc := newCouponTestService(db, keeper)

	code := issueTestCoupon(t, db, keeper, func(c *models.Coupon) {
		c.DiscountValue = 10
		c.MinPurchase = models.NewMoneyFromInt(200000)
	})

	_, err := svc.Resolve(models.NewMoneyFromInt(100000), []string{code}, 1)
	if !errors.Is(err, ErrCouponMinPurchase) {
		t.Fatalf("expected min purchase error, got: %v", err)
	}
}

func TestResolveExpiredCoupon(t *testing.T) {
	db := openCouponTestDB(t, "expired")
	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	svc := newCouponTestService(db, keeper)

	ended := time.Now().Add(-time.Hour)
	code := issueTestCoupon(t, db, keeper, func(c *models.Coupon) {
		c.DiscountValue = 10
		c.EndsAt = &ended
	})

	_, err := svc.Resolve(models.NewMoneyFromInt(100000), []string{code}, 1)
	if !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("expected coupon expired, got: %v", err)
	}
}

func TestCheckCapsDiscountAtSubtotal(t *testing.T) {
	db := openCouponTestDB(t, "cap")
	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	svc := newCouponTestService(db, keeper)

	code := issueTestCoupon(t, db, keeper, func(c *models.Coupon) {
		c.IsPrivate = true
		c.MaxPurchase = models.NewMoneyFromInt(200000)
	})

	result, err := svc.Check(models.NewMoneyFromInt(50000), []string{code}, 1)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !result.TotalDiscount.Decimal.Equal(models.NewMoneyFromInt(50000).Decimal) {
		t.Fatalf("discount should cap at subtotal, got %s", result.TotalDiscount.Decimal.String())
	}
	if !result.TotalPaid.Decimal.IsZero() {
		t.Fatalf("total paid want 0 got %s", result.TotalPaid.Decimal.String())
	}
	if result.DiscountPercentage != "100" {
		t.Fatalf("discount percentage want 100 got %s", result.DiscountPercentage)
	}
}

func TestCheckIsRepeatable(t *testing.T) {
	db := openCouponTestDB(t, "dryrun")
	keeper := couponcode.NewStaticKeeper("test-coupon-secret")
	svc := newCouponTestService(db, keeper)

	code := issueTestCoupon(t, db, keeper, func(c *models.Coupon) {
		c.DiscountValue = 10
		c.IsLimited = true
	})

	// 试算不落核销记录，重复调用结果一致
	for i := 0; i < 3; i++ {
		result, err := svc.Check(models.NewMoneyFromInt(100000), []string{code}, 9)
		if err != nil {
			t.Fatalf("check round %d failed: %v", i, err)
		}
		if !result.TotalDiscount.Decimal.Equal(models.NewMoneyFromInt(10000).Decimal) {
			t.Fatalf("round %d discount want 10000 got %s", i, result.TotalDiscount.Decimal.String())
		}
	}

	var count int64
	if err := db.Model(&models.CouponUser{}).Count(&count).Error; err != nil {
		t.Fatalf("count redemption records failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("dry run should not persist redemption, got %d rows", count)
	}
}
