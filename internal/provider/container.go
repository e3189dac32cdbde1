package provider

import (
	"github.com/tokogaya/backend/internal/authz"
	"github.com/tokogaya/backend/internal/cache"
	"github.com/tokogaya/backend/internal/carrier/lionparcel"
	"github.com/tokogaya/backend/internal/config"
	"github.com/tokogaya/backend/internal/couponcode"
	"github.com/tokogaya/backend/internal/logger"
	"github.com/tokogaya/backend/internal/models"
	"github.com/tokogaya/backend/internal/queue"
	"github.com/tokogaya/backend/internal/repository"
	"github.com/tokogaya/backend/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	UserRepo       repository.UserRepository
	ProductRepo    repository.ProductRepository
	CategoryRepo   repository.CategoryRepository
	StockRepo      repository.StockRepository
	CartRepo       repository.CartRepository
	AddressRepo    repository.AddressRepository
	CouponRepo     repository.CouponRepository
	CouponUserRepo repository.CouponUserRepository
	ShippingRepo   repository.ShippingRepository
	OrderRepo      repository.OrderRepository
	ReturnRepo     repository.ReturnRepository

	// Services
	AuthzService          *authz.Service
	AuthService           *service.AuthService
	UserAuthService       *service.UserAuthService
	EmailService          *service.EmailService
	CaptchaService        *service.CaptchaService
	ProductService        *service.ProductService
	CategoryService       *service.CategoryService
	StockService          *service.StockService
	CartService           *service.CartService
	CouponService         *service.CouponService
	CouponAdminService    *service.CouponAdminService
	ShippingService       *service.ShippingService
	ShippingAdminService  *service.ShippingAdminService
	OrderService          *service.OrderService
	OrderStatusService    *service.OrderStatusService
	ReturnService         *service.ReturnService
	PaymentWebhookService *service.PaymentWebhookService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.StockRepo = repository.NewStockRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUserRepo = repository.NewCouponUserRepository(db)
	c.ShippingRepo = repository.NewShippingRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ReturnRepo = repository.NewReturnRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	// 承运商客户端；配置缺失时降级为不可用，下单与运费接口返回明确错误
	var tariffProvider service.TariffProvider
	var bookingProvider service.BookingProvider
	carrierClient, err := lionparcel.NewClient(lionparcel.Config{
		BaseURL:        c.Config.Carrier.BaseURL,
		AuthToken:      c.Config.Carrier.AuthToken,
		Origin:         c.Config.Carrier.Origin,
		Commodity:      c.Config.Carrier.Commodity,
		TimeoutSeconds: c.Config.Carrier.TimeoutSeconds,
	})
	if err != nil {
		logger.Warnw("provider_init_carrier_failed", "error", err)
	} else {
		tariffProvider = carrierClient
		bookingProvider = carrierClient
	}

	keeper := couponcode.NewStaticKeeper(c.Config.Coupon.Secret)

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email, c.Config.Shop.Name)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.StockService = service.NewStockService(c.StockRepo, c.ProductRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.StockRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUserRepo, keeper, service.CouponPolicy{
		PrivateMinPurchase: c.Config.Coupon.PrivateMinPurchase,
	})
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo, keeper)
	c.ShippingService = service.NewShippingService(c.ShippingRepo, c.AddressRepo, tariffProvider)
	c.ShippingAdminService = service.NewShippingAdminService(c.ShippingRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.StockRepo,
		c.CartRepo,
		c.AddressRepo,
		c.CouponUserRepo,
		c.CartService,
		c.CouponService,
		c.ShippingService,
		c.QueueClient,
		c.Config.Order.PaymentExpireMinutes,
	)
	c.OrderStatusService = service.NewOrderStatusService(c.OrderRepo, bookingProvider, c.QueueClient)
	c.ReturnService = service.NewReturnService(c.ReturnRepo, c.OrderRepo, c.QueueClient)
	c.PaymentWebhookService = service.NewPaymentWebhookService(c.OrderRepo, c.Config.Payment.ServerKey, c.QueueClient)
}
