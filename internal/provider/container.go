package provider

import (
	"time"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/authz"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/cache"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/config"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/logger"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/payment/stripe"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/queue"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/repository"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/service"
)

// Container wires repositories and services together.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo        repository.UserRepository
	BrandRepo       repository.BrandRepository
	ProductRepo     repository.ProductRepository
	FeeScheduleRepo repository.FeeScheduleRepository
	OrderRepo       repository.OrderRepository
	PaymentRepo     repository.PaymentRepository
	PayoutRepo      repository.PayoutRepository
	AuditLogRepo    repository.AccessAuditLogRepository

	// Services
	AuthzService       *authz.Service
	FeeService         *service.FeeService
	AttributionService *service.AttributionService
	AuditService       *service.AuditService
	OrderService       *service.OrderService
	PayoutService      *service.PayoutService
	Gateway            service.Gateway
}

// NewContainer initializes the container.
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
	c.UserRepo = repository.NewUserRepository(db)
	c.BrandRepo = repository.NewBrandRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.FeeScheduleRepo = repository.NewFeeScheduleRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.PayoutRepo = repository.NewPayoutRepository(db)
	c.AuditLogRepo = repository.NewAccessAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := authz.Bootstrap(c.AuthzService); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	gateway, err := stripe.New(stripe.Config{
		SecretKey:  c.Config.Gateway.SecretKey,
		APIBaseURL: c.Config.Gateway.APIBase,
		Timeout:    time.Duration(c.Config.Gateway.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		logger.Errorw("provider_init_gateway_failed", "error", err)
		panic(err)
	}
	c.Gateway = gateway

	c.FeeService = service.NewFeeService(c.FeeScheduleRepo, c.BrandRepo, c.Config.Fees.CacheTTLSeconds)
	c.AttributionService = service.NewAttributionService(c.UserRepo, c.AuthzService, c.Config.Attribution.MinHostLabels)
	c.AuditService = service.NewAuditService(c.AuditLogRepo, c.QueueClient)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.BrandRepo, c.PaymentRepo, c.FeeService, c.AttributionService, c.Gateway)
	c.PayoutService = service.NewPayoutService(c.PayoutRepo, c.BrandRepo, c.FeeService, c.AuditService)
}
