package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"monetization-backend/internal/config"
	infraCache "monetization-backend/internal/infrastructure/cache"
	"monetization-backend/internal/infrastructure/database"
	"monetization-backend/internal/infrastructure/queue"
	"monetization-backend/internal/infrastructure/realtime"
	"monetization-backend/internal/infrastructure/social"
	"monetization-backend/pkg/cache"
	"monetization-backend/pkg/jwt"

	ambHandler "monetization-backend/internal/domains/ambassador/handler"
	ambRepo "monetization-backend/internal/domains/ambassador/repository"
	ambService "monetization-backend/internal/domains/ambassador/service"
	commissionHandler "monetization-backend/internal/domains/commission/handler"
	commissionService "monetization-backend/internal/domains/commission/service"
	promoHandler "monetization-backend/internal/domains/promocode/handler"
	promoRepo "monetization-backend/internal/domains/promocode/repository"
	promoService "monetization-backend/internal/domains/promocode/service"
	subHandler "monetization-backend/internal/domains/subscription/handler"
	subRepo "monetization-backend/internal/domains/subscription/repository"
	subService "monetization-backend/internal/domains/subscription/service"
	userRepo "monetization-backend/internal/domains/user/repository"
	wdHandler "monetization-backend/internal/domains/withdrawal/handler"
	wdRepo "monetization-backend/internal/domains/withdrawal/repository"
	wdService "monetization-backend/internal/domains/withdrawal/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependency graph, dùng chung cho cmd/api và cmd/worker
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB   // nil khi STORE_DRIVER=memory
	Redis       *infraCache.RedisCache // nil khi Redis không kết nối được
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client // nil khi STORE_DRIVER=memory
	Hub         *realtime.Hub
	Publisher   realtime.Publisher
	Enqueuer    commissionService.ReconcileEnqueuer
	relay       *realtime.RedisPublisher

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	SubscriptionRepo subRepo.Repository
	PromoCodeRepo    promoRepo.Repository
	AmbassadorRepo   ambRepo.Repository
	WithdrawalRepo   wdRepo.Repository
	ProfileRepo      userRepo.ProfileRepository

	// ========================================
	// SERVICE LAYER
	// ========================================
	PromoCodeService    *promoService.PromoCodeService
	LedgerService       *commissionService.LedgerService
	SubscriptionService *subService.SubscriptionService
	AmbassadorService   *ambService.AmbassadorService
	WithdrawalService   *wdService.WithdrawalService

	// ========================================
	// HANDLER LAYER
	// ========================================
	PromoCodeHandler    *promoHandler.Handler
	SubscriptionHandler *subHandler.Handler
	AmbassadorHandler   *ambHandler.Handler
	CommissionHandler   *commissionHandler.Handler
	WithdrawalHandler   *wdHandler.Handler
	RealtimeHandler     *realtime.Handler
}

// NewContainer khởi tạo theo thứ tự: config → infrastructure → repositories → services → handlers
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewContainerWithConfig(cfg)
}

func NewContainerWithConfig(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	log.Printf("✅ Config loaded (Environment: %s, Store: %s)", cfg.App.Environment, cfg.App.StoreDriver)

	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}

	log.Println("📦 Initializing repositories...")
	c.initRepositories()

	log.Println("⚙️  Initializing services...")
	c.initServices()

	log.Println("🎯 Initializing handlers...")
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	c.Hub = realtime.NewHub()

	if cfg.App.StoreDriver == "memory" {
		log.Println("⚠️  Using in-memory store; data is lost on restart")
		c.Cache = cache.NewMemoryCache()
		c.Publisher = c.Hub
		c.Enqueuer = queue.NopEnqueuer{}
		return nil
	}

	// ----------------------------------------
	// DATABASE
	// ----------------------------------------
	log.Println("🗄️  Connecting to PostgreSQL...")
	if cfg.Database == nil {
		return fmt.Errorf("database config is required for STORE_DRIVER=%s", cfg.App.StoreDriver)
	}
	db := database.NewPostgresDB(cfg.Database)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	log.Println("✅ Database connected")

	// ----------------------------------------
	// REDIS: cache + change fan-out
	// ----------------------------------------
	log.Println("🔴 Connecting to Redis...")
	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		// Redis không critical: cache và realtime chạy trong process
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		_ = redisCache.Close()
		c.Cache = cache.NewMemoryCache()
		c.Publisher = c.Hub
	} else {
		c.Redis = redisCache
		c.Cache = redisCache
		c.relay = realtime.NewRedisPublisher(redisCache.Client, cfg.Redis.ChangeChannel)
		c.Publisher = c.relay
		log.Println("✅ Redis connected")
	}

	// ----------------------------------------
	// ASYNQ CLIENT
	// ----------------------------------------
	c.AsynqClient = asynq.NewClient(c.RedisClientOpt())
	c.Enqueuer = queue.NewEnqueuer(c.AsynqClient)
	return nil
}

func (c *Container) initRepositories() {
	if c.DB == nil {
		c.SubscriptionRepo = subRepo.NewMemoryRepository()
		c.PromoCodeRepo = promoRepo.NewMemoryRepository()
		c.AmbassadorRepo = ambRepo.NewMemoryRepository()
		c.WithdrawalRepo = wdRepo.NewMemoryRepository()
		c.ProfileRepo = userRepo.NewMemoryProfileRepository()
		return
	}

	pool := c.DB.Pool
	c.SubscriptionRepo = subRepo.NewPostgresRepository(pool)
	c.PromoCodeRepo = promoRepo.NewPostgresRepository(pool)
	c.AmbassadorRepo = ambRepo.NewPostgresRepository(pool)
	c.WithdrawalRepo = wdRepo.NewPostgresRepository(pool)
	c.ProfileRepo = userRepo.NewProfileRepository(pool)
}

// initServices: promo registry trước, ledger sau, subscription cuối vì nhận ledger làm approval hook
func (c *Container) initServices() {
	ledger := c.Config.Ledger

	c.PromoCodeService = promoService.NewPromoCodeService(
		c.PromoCodeRepo,
		c.SubscriptionRepo,
		c.Cache,
		c.Publisher,
		promoService.RandomCodeGenerator(ledger.PromoCodeLength),
		promoService.Config{
			MaxIssueAttempts: ledger.PromoCodeMaxAttempts,
			UsageCacheTTL:    c.Config.Redis.UsageCacheTTL,
		},
	)

	c.LedgerService = commissionService.NewLedgerService(
		c.SubscriptionRepo,
		c.AmbassadorRepo,
		c.PromoCodeService,
		c.Enqueuer,
		c.Publisher,
		commissionService.Config{CommissionRatePercent: ledger.CommissionRatePercent},
	)

	c.SubscriptionService = subService.NewSubscriptionService(
		c.SubscriptionRepo,
		c.PromoCodeService,
		c.LedgerService,
		c.Publisher,
	)

	verifier := social.NewHTTPVerifier(social.HTTPVerifierConfig{
		Timeout:        c.Config.Social.Timeout,
		RequestsPerSec: c.Config.Social.RequestsPerSec,
		Burst:          c.Config.Social.Burst,
		UserAgent:      c.Config.Social.UserAgent,
	})
	c.AmbassadorService = ambService.NewAmbassadorService(
		c.AmbassadorRepo,
		c.PromoCodeService,
		c.ProfileRepo,
		verifier,
		c.Publisher,
		ambService.Config{
			ApplicationFee: decimal.NewFromInt(ledger.ApplicationFee),
			StrikeLimit:    ledger.StrikeLimit,
		},
	)

	c.WithdrawalService = wdService.NewWithdrawalService(
		c.WithdrawalRepo,
		c.AmbassadorRepo,
		c.Enqueuer,
		c.Publisher,
		wdService.Config{
			MinWithdrawal:  decimal.NewFromInt(ledger.MinWithdrawal),
			TaxPerThousand: ledger.TaxPerThousand,
		},
	)
}

func (c *Container) initHandlers() {
	c.PromoCodeHandler = promoHandler.NewHandler(c.PromoCodeService)
	c.SubscriptionHandler = subHandler.NewHandler(c.SubscriptionService)
	c.AmbassadorHandler = ambHandler.NewHandler(c.AmbassadorService)
	c.CommissionHandler = commissionHandler.NewHandler(c.LedgerService)
	c.WithdrawalHandler = wdHandler.NewHandler(c.WithdrawalService)
	c.RealtimeHandler = realtime.NewHandler(c.Hub, c.JWTManager)
}

// ========================================
// HELPER METHODS
// ========================================

// RedisClientOpt dùng chung cho asynq client, server và scheduler
func (c *Container) RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

// StartRealtime runs the hub and, when Redis is up, relays changes published by
// other processes into it. Only the API process calls this.
func (c *Container) StartRealtime(ctx context.Context) {
	go c.Hub.Run(ctx)
	if c.relay == nil {
		return
	}
	go func() {
		if err := c.relay.Relay(ctx, c.Hub); err != nil {
			log.Printf("⚠️  Realtime relay stopped: %v", err)
		}
	}()
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
