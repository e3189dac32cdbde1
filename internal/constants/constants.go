package constants

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 登录验证码场景常量
const (
	CaptchaSceneAdminLogin = "admin_login"
)

// 队列常量
const (
	QueueDefault           = "default"
	TaskOrderStatusEmail   = "order:status_email"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "tg"
)

// 结算幂等键请求头
const (
	HeaderIdempotencyKey = "X-Idempotency-Key"
)

// 币种常量
const (
	SiteCurrencyDefault = "IDR"
)
