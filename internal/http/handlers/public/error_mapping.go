package public

import (
	"errors"

	"github.com/tokogaya/backend/internal/http/response"
	"github.com/tokogaya/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var couponErrorRules = []mappedHandlerError{
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, msg: "coupon invalid"},
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest, msg: "coupon not found"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, msg: "coupon inactive"},
	{target: service.ErrCouponNotStarted, code: response.CodeBadRequest, msg: "coupon not started"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, msg: "coupon expired"},
	{target: service.ErrCouponAlreadyUsed, code: response.CodeBadRequest, msg: "coupon already used"},
	{target: service.ErrCouponMinPurchase, code: response.CodeBadRequest, msg: "minimum purchase not met"},
	{target: service.ErrDuplicateCoupon, code: response.CodeBadRequest, msg: "duplicate coupon"},
	{target: service.ErrOnlyOneFreeCoupon, code: response.CodeBadRequest, msg: "only one free coupon is allowed"},
	{target: service.ErrTooManyCoupons, code: response.CodeBadRequest, msg: "too many coupons"},
}

var shippingErrorRules = []mappedHandlerError{
	{target: service.ErrShippingAddressRequired, code: response.CodeBadRequest, msg: "shipping address required"},
	{target: service.ErrShippingAddressNotFound, code: response.CodeNotFound, msg: "shipping address not found"},
	{target: service.ErrShippingRouteNotFound, code: response.CodeBadRequest, msg: "shipping route not found"},
	{target: service.ErrShippingTypeNotFound, code: response.CodeBadRequest, msg: "shipping type not available"},
	{target: service.ErrShippingProviderUnavailable, code: response.CodeInternal, msg: "shipping provider unavailable"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart has no selected items"},
	{target: service.ErrCartItemInvalid, code: response.CodeBadRequest, msg: "cart item invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrStockNotFound, code: response.CodeBadRequest, msg: "stock not found"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, msg: "stock insufficient"},
	{target: service.ErrIdempotencyConflict, code: response.CodeBadRequest, msg: "duplicate checkout request"},
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err,
		concatMappedHandlerErrors(checkoutErrorRules, couponErrorRules, shippingErrorRules),
		response.CodeInternal, "order create failed")
}

func respondCouponCheckError(c *gin.Context, err error) {
	respondWithMappedError(c, err,
		concatMappedHandlerErrors(couponErrorRules, checkoutErrorRules),
		response.CodeInternal, "coupon check failed")
}

func respondTariffError(c *gin.Context, err error) {
	respondWithMappedError(c, err, shippingErrorRules, response.CodeInternal, "tariff check failed")
}
