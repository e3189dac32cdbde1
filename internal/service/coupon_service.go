package service

import (
	"errors"
	"strings"
	"time"

	"github.com/tokogaya/backend/internal/couponcode"
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponPolicy 优惠券校验策略
type CouponPolicy struct {
	// PrivateMinPurchase 私有券是否校验最低消费门槛。
	// 私有券的 max_purchase 只是抵扣上限，默认不把门槛套用到私有券上。
	PrivateMinPurchase bool
}

// CouponService 优惠券服务
type CouponService struct {
	couponRepo     repository.CouponRepository
	couponUserRepo repository.CouponUserRepository
	keeper         couponcode.Keeper
	policy         CouponPolicy
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, couponUserRepo repository.CouponUserRepository, keeper couponcode.Keeper, policy CouponPolicy) *CouponService {
	return &CouponService{
		couponRepo:     couponRepo,
		couponUserRepo: couponUserRepo,
		keeper:         keeper,
		policy:         policy,
	}
}

// AppliedCoupon 单张券的核算结果
type AppliedCoupon struct {
	Coupon   *models.Coupon
	FullCode string
	Discount models.Money
}

// ResolveResult 多券叠加核算结果
type ResolveResult struct {
	Discount models.Money
	Applied  []AppliedCoupon
}

// Resolve 核算最多两张券的总折扣。
// 叠加规则：至多一张公开券（百分比）加一张私有券（固定金额）；
// 私有券先行核算，总折扣不超过商品小计。
func (s *CouponService) Resolve(subtotal models.Money, codes []string, userID uint) (*ResolveResult, error) {
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		trimmed := strings.TrimSpace(code)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return &ResolveResult{}, nil
	}
	if len(cleaned) > 2 {
		return nil, ErrTooManyCoupons
	}

	resolved := make([]AppliedCoupon, 0, len(cleaned))
	for _, raw := range cleaned {
		applied, err := s.resolveOne(subtotal, raw, userID)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *applied)
	}

	if len(resolved) == 2 {
		if resolved[0].Coupon.ID == resolved[1].Coupon.ID {
			return nil, ErrDuplicateCoupon
		}
		if !resolved[0].Coupon.IsPrivate && !resolved[1].Coupon.IsPrivate {
			return nil, ErrOnlyOneFreeCoupon
		}
		// 私有券先行核算
		if !resolved[0].Coupon.IsPrivate && resolved[1].Coupon.IsPrivate {
			resolved[0], resolved[1] = resolved[1], resolved[0]
		}
	}

	total := decimal.Zero
	for i := range resolved {
		discount := s.calculateDiscount(resolved[i].Coupon, subtotal)
		resolved[i].Discount = discount
		total = total.Add(discount.Decimal)
	}

	// 折扣封顶为商品小计：全额抵扣的订单商品金额为零，运费税费照付
	if total.GreaterThan(subtotal.Decimal) {
		total = subtotal.Decimal
	}

	return &ResolveResult{
		Discount: models.NewMoneyFromDecimal(total),
		Applied:  resolved,
	}, nil
}

func (s *CouponService) resolveOne(subtotal models.Money, raw string, userID uint) (*AppliedCoupon, error) {
	code, err := couponcode.Parse(raw)
	if err != nil {
		return nil, ErrCouponInvalid
	}

	coupon, err := s.couponRepo.GetByPrefix(code.Prefix)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	// 解密失败是普通的无效券结果
	if err := couponcode.Verify(s.keeper, code.Proof, coupon.Code); err != nil {
		if errors.Is(err, couponcode.ErrProofInvalid) {
			return nil, ErrCouponInvalid
		}
		return nil, err
	}

	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	now := time.Now()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return nil, ErrCouponNotStarted
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return nil, ErrCouponExpired
	}

	if coupon.IsLimited && userID != 0 {
		used, err := s.couponUserRepo.Exists(coupon.ID, userID)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, ErrCouponAlreadyUsed
		}
	}

	// min_purchase 始终是消费下限；私有券是否受其约束由策略决定
	if !coupon.IsPrivate || s.policy.PrivateMinPurchase {
		if subtotal.Decimal.LessThan(coupon.MinPurchase.Decimal) {
			return nil, ErrCouponMinPurchase
		}
	}

	return &AppliedCoupon{Coupon: coupon, FullCode: raw}, nil
}

func (s *CouponService) calculateDiscount(coupon *models.Coupon, subtotal models.Money) models.Money {
	if coupon.IsPrivate {
		// 私有券抵扣固定金额 max_purchase
		return models.NewMoneyFromDecimal(coupon.MaxPurchase.Decimal)
	}
	// 百分比折扣向上取整到整数金额，保证各金额字段的恒等式成立
	percent := decimal.NewFromInt(int64(coupon.DiscountValue)).Div(decimal.NewFromInt(100))
	return models.NewMoneyFromDecimal(subtotal.Decimal.Mul(percent)).Ceil()
}

// CouponCheckResult 折扣试算结果（不落库）
type CouponCheckResult struct {
	SubtotalAmount     models.Money `json:"subtotal_amount"`
	TotalDiscount      models.Money `json:"total_discount"`
	DiscountPercentage string       `json:"discount_percentage"`
	TotalPaid          models.Money `json:"total_paid"`
}

// Check 折扣试算：复用 Resolve 的全部校验逻辑，不产生任何状态变更
func (s *CouponService) Check(subtotal models.Money, codes []string, userID uint) (*CouponCheckResult, error) {
	result, err := s.Resolve(subtotal, codes, userID)
	if err != nil {
		return nil, err
	}

	paid := subtotal.Decimal.Sub(result.Discount.Decimal)
	if paid.LessThan(decimal.Zero) {
		paid = decimal.Zero
	}

	percentage := "0"
	if subtotal.Decimal.GreaterThan(decimal.Zero) {
		percentage = result.Discount.Decimal.
			Div(subtotal.Decimal).
			Mul(decimal.NewFromInt(100)).
			Round(2).String()
	}

	return &CouponCheckResult{
		SubtotalAmount:     subtotal,
		TotalDiscount:      result.Discount,
		DiscountPercentage: percentage,
		TotalPaid:          models.NewMoneyFromDecimal(paid),
	}, nil
}
