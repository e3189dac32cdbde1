package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tokogaya/backend/internal/http/response"
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/repository"
	"github.com/tokogaya/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// IssueCouponRequest 签发优惠券请求
type IssueCouponRequest struct {
	Name          string  `json:"name" binding:"required"`
	DiscountValue int     `json:"discount_value"`
	MinPurchase   float64 `json:"min_purchase"`
	MaxPurchase   float64 `json:"max_purchase"`
	IsPrivate     bool    `json:"is_private"`
	IsLimited     bool    `json:"is_limited"`
	StartsAt      string  `json:"starts_at"`
	EndsAt        string  `json:"ends_at"`
}

// IssueCoupon 签发优惠券；完整券码仅在响应中出现一次
func (h *Handler) IssueCoupon(c *gin.Context) {
	var req IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	startsAt, err := parseTimeNullable(req.StartsAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	endsAt, err := parseTimeNullable(req.EndsAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	issued, err := h.CouponAdminService.Issue(service.IssueCouponInput{
		Name:          req.Name,
		DiscountValue: req.DiscountValue,
		MinPurchase:   models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MinPurchase)),
		MaxPurchase:   models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MaxPurchase)),
		IsPrivate:     req.IsPrivate,
		IsLimited:     req.IsLimited,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
	})
	if err != nil {
		if errors.Is(err, service.ErrCouponInvalid) {
			respondError(c, response.CodeBadRequest, "coupon terms invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "coupon issue failed", err)
		return
	}
	response.Success(c, issued)
}

// UpdateCouponRequest 更新优惠券请求；券码本身不可修改
type UpdateCouponRequest struct {
	Name          *string  `json:"name"`
	DiscountValue *int     `json:"discount_value"`
	MinPurchase   *float64 `json:"min_purchase"`
	MaxPurchase   *float64 `json:"max_purchase"`
	IsLimited     *bool    `json:"is_limited"`
	IsActive      *bool    `json:"is_active"`
	StartsAt      string   `json:"starts_at"`
	EndsAt        string   `json:"ends_at"`
}

// UpdateCoupon 更新优惠券条款
func (h *Handler) UpdateCoupon(c *gin.Context) {
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		respondError(c, response.CodeBadRequest, "coupon id invalid", nil)
		return
	}
	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	startsAt, err := parseTimeNullable(req.StartsAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	endsAt, err := parseTimeNullable(req.EndsAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	input := service.UpdateCouponInput{
		Name:          req.Name,
		DiscountValue: req.DiscountValue,
		IsLimited:     req.IsLimited,
		IsActive:      req.IsActive,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
	}
	if req.MinPurchase != nil {
		minPurchase := models.NewMoneyFromDecimal(decimal.NewFromFloat(*req.MinPurchase))
		input.MinPurchase = &minPurchase
	}
	if req.MaxPurchase != nil {
		maxPurchase := models.NewMoneyFromDecimal(decimal.NewFromFloat(*req.MaxPurchase))
		input.MaxPurchase = &maxPurchase
	}

	coupon, err := h.CouponAdminService.Update(uint(couponID), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			respondError(c, response.CodeNotFound, "coupon not found", nil)
		case errors.Is(err, service.ErrCouponInvalid):
			respondError(c, response.CodeBadRequest, "coupon terms invalid", nil)
		default:
			respondError(c, response.CodeInternal, "coupon update failed", err)
		}
		return
	}
	response.Success(c, coupon)
}

// SetCouponActiveRequest 启停优惠券请求
type SetCouponActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetCouponActive 启用/停用优惠券
func (h *Handler) SetCouponActive(c *gin.Context) {
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		respondError(c, response.CodeBadRequest, "coupon id invalid", nil)
		return
	}
	var req SetCouponActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	coupon, err := h.CouponAdminService.SetActive(uint(couponID), *req.IsActive)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			respondError(c, response.CodeNotFound, "coupon not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "coupon update failed", err)
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券
func (h *Handler) DeleteCoupon(c *gin.Context) {
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		respondError(c, response.CodeBadRequest, "coupon id invalid", nil)
		return
	}
	if err := h.CouponAdminService.Delete(uint(couponID)); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			respondError(c, response.CodeNotFound, "coupon not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "coupon delete failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GetAdminCoupon 获取优惠券详情
func (h *Handler) GetAdminCoupon(c *gin.Context) {
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		respondError(c, response.CodeBadRequest, "coupon id invalid", nil)
		return
	}
	coupon, err := h.CouponAdminService.Get(uint(couponID))
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			respondError(c, response.CodeNotFound, "coupon not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "coupon fetch failed", err)
		return
	}
	response.Success(c, coupon)
}

// GetAdminCoupons 获取优惠券列表
func (h *Handler) GetAdminCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
		isActive = &parsed
	}
	var isPrivate *bool
	if raw := c.Query("is_private"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
		isPrivate = &parsed
	}

	coupons, total, err := h.CouponAdminService.List(repository.CouponListFilter{
		Prefix:    strings.TrimSpace(c.Query("prefix")),
		IsActive:  isActive,
		IsPrivate: isPrivate,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "coupon fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, coupons, pagination)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
