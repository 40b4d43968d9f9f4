package provider

import (
	"time"

	"github.com/vanmart/internal/cache"
	"github.com/vanmart/internal/config"
	"github.com/vanmart/internal/logger"
	"github.com/vanmart/internal/models"
	"github.com/vanmart/internal/queue"
	"github.com/vanmart/internal/repository"
	"github.com/vanmart/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo          repository.UserRepository
	MartRepo          repository.MartRepository
	GoodsRepo         repository.GoodsRepository
	OrderRepo         repository.OrderRepository
	ParticipationRepo repository.ParticipationRepository
	DeliveryTrackRepo repository.DeliveryTrackRepository
	MessageRepo       repository.MessageRepository

	// Services
	UserAuthService *service.UserAuthService
	MartService     *service.MartService
	OrderService    *service.OrderService
	StatsService    *service.StatsService
	MessageService  *service.MessageService
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

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.MartRepo = repository.NewMartRepository(db)
	c.GoodsRepo = repository.NewGoodsRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ParticipationRepo = repository.NewParticipationRepository(db)
	c.DeliveryTrackRepo = repository.NewDeliveryTrackRepository(db)
	c.MessageRepo = repository.NewMessageRepository(db)
}

func (c *Container) initServices() {
	orderCfg := c.Config.Order
	c.UserAuthService = service.NewUserAuthService(c.Config.UserJWT, c.UserRepo)
	c.MartService = service.NewMartService(c.MartRepo, c.GoodsRepo, c.OrderRepo, c.DeliveryTrackRepo, c.QueueClient, c.Config.Mart.AutoCloseEnabled)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.MartRepo, c.GoodsRepo, c.ParticipationRepo, c.DeliveryTrackRepo, c.QueueClient, service.OrderOptions{
		OrderNoPrefix:      orderCfg.OrderNoPrefix,
		OrderNoMaxAttempts: orderCfg.OrderNoMaxAttempts,
		PlacementLockTTL:   time.Duration(orderCfg.PlacementLockSeconds) * time.Second,
		MaxItemsPerOrder:   orderCfg.MaxItemsPerOrder,
	})
	c.StatsService = service.NewStatsService(c.MartRepo, c.OrderRepo, c.ParticipationRepo, time.Duration(orderCfg.SummaryCacheTTLSecond)*time.Second)
	c.MessageService = service.NewMessageService(c.MessageRepo, c.OrderRepo)
}
