package provider

import (
	"github.com/shiptrack-next/internal/cache"
	"github.com/shiptrack-next/internal/config"
	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/models"
	"github.com/shiptrack-next/internal/queue"
	"github.com/shiptrack-next/internal/repository"
	"github.com/shiptrack-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	TenantRepo   repository.TenantRepository
	CustomerRepo repository.CustomerRepository
	CourierRepo  repository.CourierRepository
	ShipmentRepo repository.ShipmentRepository
	JournalRepo  repository.ScoreJournalRepository

	// Services
	AuthService      *service.AuthService
	TenantService    *service.TenantService
	CustomerService  *service.CustomerService
	ShipmentService  *service.ShipmentService
	ScoringService   *service.ScoringService
	IntegrityService *service.IntegrityService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
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
	c.TenantRepo = repository.NewTenantRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.CourierRepo = repository.NewCourierRepository(db)
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.JournalRepo = repository.NewScoreJournalRepository(db)
}

func (c *Container) initServices() {
	db := models.DB
	c.AuthService = service.NewAuthService(c.Config)
	c.TenantService = service.NewTenantService(c.TenantRepo)
	c.CustomerService = service.NewCustomerService(db, c.CustomerRepo, c.JournalRepo)
	c.ScoringService = service.NewScoringService(db, c.CustomerRepo, c.ShipmentRepo, c.JournalRepo)
	c.ShipmentService = service.NewShipmentService(c.ShipmentRepo, c.CustomerRepo, c.CourierRepo, c.ScoringService)
	c.IntegrityService = service.NewIntegrityService(c.TenantRepo, c.CustomerRepo, c.JournalRepo)
}
