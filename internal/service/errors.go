package service

import "errors"

// 业务错误哨兵值；处理器层通过映射表转换为接口错误码
var (
	// 购物车
	ErrCartEmpty       = errors.New("cart has no selected items")
	ErrCartItemInvalid = errors.New("cart item invalid")

	// 商品与库存
	ErrProductNotAvailable = errors.New("product not available")
	ErrStockNotFound       = errors.New("stock not found")
	ErrStockInsufficient   = errors.New("stock insufficient")
	ErrStockInvalid        = errors.New("stock spec invalid")
	ErrSlugExists          = errors.New("slug already exists")
	ErrCategoryInUse       = errors.New("category still has products")

	// 优惠券
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponInvalid     = errors.New("coupon invalid")
	ErrCouponInactive    = errors.New("coupon inactive")
	ErrCouponNotStarted  = errors.New("coupon not started")
	ErrCouponExpired     = errors.New("coupon expired")
	ErrCouponAlreadyUsed = errors.New("coupon already used")
	ErrCouponMinPurchase = errors.New("coupon min purchase not met")
	ErrDuplicateCoupon   = errors.New("coupon used twice in one order")
	ErrOnlyOneFreeCoupon = errors.New("only one free coupon is allowed")
	ErrTooManyCoupons    = errors.New("too many coupons supplied")

	// 配送
	ErrShippingAddressRequired     = errors.New("default shipping address required")
	ErrShippingAddressLimit        = errors.New("shipping address limit reached")
	ErrShippingAddressNotFound     = errors.New("shipping address not found")
	ErrShippingRouteNotFound       = errors.New("shipping route not found")
	ErrShippingTypeNotFound        = errors.New("shipping type not found")
	ErrShippingProviderUnavailable = errors.New("shipping provider unavailable")
	ErrShippingRouteInvalid        = errors.New("shipping route invalid")
	ErrShippingRouteExists         = errors.New("shipping route already exists")
	ErrShippingRouteGrouped        = errors.New("shipping route already grouped")
	ErrShippingGroupNotFound       = errors.New("shipping group not found")
	ErrShippingGroupInvalid        = errors.New("shipping group invalid")
	ErrShippingTypeInvalid         = errors.New("shipping type invalid")
	ErrShippingTypeExists          = errors.New("shipping type already exists")
	ErrShippingTariffNotFound      = errors.New("shipping tariff not found")
	ErrShippingTariffInvalid       = errors.New("shipping tariff invalid")
	ErrShippingTariffExists        = errors.New("shipping tariff already exists")

	// 订单
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderStatusInvalid  = errors.New("order status transition not allowed")
	ErrPaymentNotSettled   = errors.New("payment not settled")
	ErrOrderAlreadyBooked  = errors.New("order already booked with carrier")
	ErrIdempotencyConflict = errors.New("duplicate checkout request")

	// 退货退款
	ErrReturnExists       = errors.New("return order already exists")
	ErrReturnNotFound     = errors.New("return order not found")
	ErrReturnNotConfirmed = errors.New("return order not confirmed")
	ErrRefundExists       = errors.New("refund order already exists")
	ErrRefundNotFound     = errors.New("refund order not found")

	// 支付回调
	ErrPaymentSignatureInvalid = errors.New("payment notification signature invalid")
	ErrPaymentStatusUnknown    = errors.New("payment transaction status unknown")

	// 认证
	ErrNotFound             = errors.New("record not found")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrWeakPassword         = errors.New("password does not meet policy")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailTaken           = errors.New("email already registered")
	ErrUserDisabled         = errors.New("user disabled")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")

	// 邮件
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")

	// 基础设施
	ErrQueueUnavailable = errors.New("task queue unavailable")
)
