package service

import (
	"strings"
	"time"

	"github.com/tokogaya/backend/internal/couponcode"
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponAdminService 优惠券管理服务；负责签发与后台维护
type CouponAdminService struct {
	repo   repository.CouponRepository
	keeper couponcode.Keeper
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(repo repository.CouponRepository, keeper couponcode.Keeper) *CouponAdminService {
	return &CouponAdminService{repo: repo, keeper: keeper}
}

// IssueCouponInput 签发优惠券输入
type IssueCouponInput struct {
	Name          string
	DiscountValue int          // 折扣百分比（公开券）
	MinPurchase   models.Money // 最低消费门槛
	MaxPurchase   models.Money // 固定抵扣金额（私有券）
	IsPrivate     bool
	IsLimited     bool
	StartsAt      *time.Time
	EndsAt        *time.Time
}

// IssuedCoupon 签发结果；完整券码仅在签发时返回一次
type IssuedCoupon struct {
	Coupon   *models.Coupon `json:"coupon"`
	FullCode string         `json:"full_code"`
}

// UpdateCouponInput 更新优惠券输入；券码本身签发后不可变
type UpdateCouponInput struct {
	Name          *string
	DiscountValue *int
	MinPurchase   *models.Money
	MaxPurchase   *models.Money
	IsLimited     *bool
	IsActive      *bool
	StartsAt      *time.Time
	EndsAt        *time.Time
}

// Issue 签发一张优惠券：随机前缀与明文凭证入库，完整券码只返回这一次
func (s *CouponAdminService) Issue(input IssueCouponInput) (*IssuedCoupon, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCouponInvalid
	}
	if err := validateCouponTerms(input.IsPrivate, input.DiscountValue, input.MaxPurchase); err != nil {
		return nil, err
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, ErrCouponInvalid
	}

	issued, err := couponcode.Issue(s.keeper)
	if err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		Prefix:        issued.Prefix,
		Code:          issued.Secret,
		Name:          name,
		DiscountValue: input.DiscountValue,
		MinPurchase:   input.MinPurchase,
		MaxPurchase:   input.MaxPurchase,
		IsPrivate:     input.IsPrivate,
		IsLimited:     input.IsLimited,
		IsActive:      true,
		StartsAt:      input.StartsAt,
		EndsAt:        input.EndsAt,
	}
	if err := s.repo.Create(coupon); err != nil {
		return nil, err
	}

	return &IssuedCoupon{Coupon: coupon, FullCode: issued.FullCode}, nil
}

// Update 更新优惠券条款；前缀与凭证不允许修改
func (s *CouponAdminService) Update(id uint, input UpdateCouponInput) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrCouponInvalid
		}
		coupon.Name = name
	}
	if input.DiscountValue != nil {
		coupon.DiscountValue = *input.DiscountValue
	}
	if input.MinPurchase != nil {
		coupon.MinPurchase = *input.MinPurchase
	}
	if input.MaxPurchase != nil {
		coupon.MaxPurchase = *input.MaxPurchase
	}
	if input.IsLimited != nil {
		coupon.IsLimited = *input.IsLimited
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	if input.StartsAt != nil {
		coupon.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		coupon.EndsAt = input.EndsAt
	}
	if err := validateCouponTerms(coupon.IsPrivate, coupon.DiscountValue, coupon.MaxPurchase); err != nil {
		return nil, err
	}
	if coupon.StartsAt != nil && coupon.EndsAt != nil && coupon.EndsAt.Before(*coupon.StartsAt) {
		return nil, ErrCouponInvalid
	}

	if err := s.repo.Update(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// SetActive 启用/停用优惠券
func (s *CouponAdminService) SetActive(id uint, active bool) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	coupon.IsActive = active
	if err := s.repo.Update(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Delete 删除优惠券（软删除）
func (s *CouponAdminService) Delete(id uint) error {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}
	return s.repo.Delete(id)
}

// Get 获取优惠券详情
func (s *CouponAdminService) Get(id uint) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// List 获取优惠券列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.repo.List(filter)
}

// validateCouponTerms 校验折扣条款：公开券必须是 1-100 的百分比，私有券必须有正的固定抵扣
func validateCouponTerms(isPrivate bool, discountValue int, maxPurchase models.Money) error {
	if isPrivate {
		if maxPurchase.Decimal.LessThanOrEqual(decimal.Zero) {
			return ErrCouponInvalid
		}
		return nil
	}
	if discountValue <= 0 || discountValue > 100 {
		return ErrCouponInvalid
	}
	return nil
}
