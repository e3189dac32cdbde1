package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tokogaya/backend/internal/authz"
	"github.com/tokogaya/backend/internal/cache"
	"github.com/tokogaya/backend/internal/config"
	adminhandlers "github.com/tokogaya/backend/internal/http/handlers/admin"
	publichandlers "github.com/tokogaya/backend/internal/http/handlers/public"
	"github.com/tokogaya/backend/internal/http/response"
	"github.com/tokogaya/backend/internal/logger"
	"github.com/tokogaya/backend/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "tg"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
			public.GET("/categories", publicHandler.GetCategories)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 外部回调（签名校验在处理器内完成）
		apiV1.POST("/webhooks/payment", publicHandler.PaymentWebhook)
		apiV1.POST("/webhooks/shipping", publicHandler.ShippingWebhook)

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)

			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.UpsertCartItem)
			user.PUT("/cart/selection", publicHandler.UpdateCartSelection)
			user.DELETE("/cart/items/:stock_id", publicHandler.DeleteCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)

			user.GET("/addresses", publicHandler.ListAddresses)
			user.POST("/addresses", publicHandler.CreateAddress)
			user.PUT("/addresses/:id", publicHandler.UpdateAddress)
			user.DELETE("/addresses/:id", publicHandler.DeleteAddress)
			user.POST("/addresses/:id/default", publicHandler.SetDefaultAddress)

			user.POST("/coupon-checking", publicHandler.CheckCoupon)
			user.POST("/shipping/tariff", publicHandler.CheckTariff)

			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.GET("/orders/by-order-no/:order_no", publicHandler.GetOrderByOrderNo)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)
			user.GET("/orders/:id/tracking", publicHandler.TrackOrder)
			user.GET("/orders/:id/return", publicHandler.GetReturnByOrder)

			user.POST("/return-order", publicHandler.CreateReturn)
			user.POST("/refund-order", publicHandler.CreateRefund)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录前接口（无需鉴权）
			admin.GET("/login/captcha", adminHandler.GetLoginCaptcha)
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 商品与库存
				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)
				authorized.GET("/products/:id/stocks", adminHandler.ListProductStocks)
				authorized.POST("/products/:id/stocks", adminHandler.CreateProductStock)
				authorized.PUT("/stocks/:id", adminHandler.UpdateStock)

				// 分类
				authorized.GET("/categories", adminHandler.GetAdminCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 优惠券
				authorized.POST("/coupons", adminHandler.IssueCoupon)
				authorized.GET("/coupons", adminHandler.GetAdminCoupons)
				authorized.GET("/coupons/:id", adminHandler.GetAdminCoupon)
				authorized.PUT("/coupons/:id", adminHandler.UpdateCoupon)
				authorized.PUT("/coupons/:id/active", adminHandler.SetCouponActive)
				authorized.DELETE("/coupons/:id", adminHandler.DeleteCoupon)

				// 订单
				authorized.GET("/orders", adminHandler.AdminListOrders)
				authorized.GET("/orders/:id", adminHandler.AdminGetOrder)
				authorized.POST("/orders/:id/confirm", adminHandler.AdminConfirmOrder)
				authorized.POST("/orders/:id/book-shipment", adminHandler.AdminBookShipment)

				// 退货退款
				authorized.GET("/returns", adminHandler.AdminListReturns)
				authorized.POST("/returns/:id/review", adminHandler.AdminReviewReturn)
				authorized.POST("/refunds/:id/review", adminHandler.AdminReviewRefund)

				// 物流配置
				authorized.GET("/shipping/routes", adminHandler.ListShippingRoutes)
				authorized.POST("/shipping/routes", adminHandler.CreateShippingRoute)
				authorized.PUT("/shipping/routes/:id", adminHandler.UpdateShippingRoute)
				authorized.DELETE("/shipping/routes/:id", adminHandler.DeleteShippingRoute)
				authorized.GET("/shipping/groups", adminHandler.ListShippingGroups)
				authorized.GET("/shipping/groups/:id", adminHandler.GetShippingGroup)
				authorized.POST("/shipping/groups", adminHandler.CreateShippingGroup)
				authorized.PUT("/shipping/groups/:id", adminHandler.UpdateShippingGroup)
				authorized.DELETE("/shipping/groups/:id", adminHandler.DeleteShippingGroup)
				authorized.POST("/shipping/groups/:id/routes", adminHandler.AddRouteToGroup)
				authorized.DELETE("/shipping/groups/:id/routes/:route_id", adminHandler.RemoveRouteFromGroup)
				authorized.GET("/shipping/groups/:id/tariffs", adminHandler.ListGroupTariffs)
				authorized.POST("/shipping/groups/:id/tariffs", adminHandler.CreateGroupTariff)
				authorized.PUT("/shipping/tariffs/:id", adminHandler.UpdateGroupTariff)
				authorized.DELETE("/shipping/tariffs/:id", adminHandler.DeleteGroupTariff)
				authorized.GET("/shipping/types", adminHandler.ListShippingTypes)
				authorized.POST("/shipping/types", adminHandler.CreateShippingType)
				authorized.PUT("/shipping/types/:id", adminHandler.UpdateShippingType)
				authorized.DELETE("/shipping/types/:id", adminHandler.DeleteShippingType)

				// 用户管理
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)
				authorized.PUT("/users/:id", adminHandler.UpdateAdminUser)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
				authorized.PUT("/authz/admins/:id", adminHandler.UpdateAuthzAdmin)
				authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAuthzAdmin)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" || item.Path == "/api/v1/admin/login/captcha" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
