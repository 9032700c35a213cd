package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"llm-taskbench/internal/config"
	"llm-taskbench/internal/controller"
	"llm-taskbench/internal/pkg/logger"
	"llm-taskbench/internal/service"
	"llm-taskbench/internal/session"
	"llm-taskbench/internal/websocket"
	"llm-taskbench/pkg/analytics"
	"llm-taskbench/pkg/backend"
	"llm-taskbench/pkg/identity"
	pktNats "llm-taskbench/pkg/nats"
)

const progressTopic = "wizard.progress"

type Container struct {
	// Controllers
	SessionController    controller.ISessionController
	CatalogController    controller.ICatalogController
	AccountController    controller.IAccountController
	ValidationController controller.IValidationController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	WebSocketHub *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	// The session repository survives restarts on Redis; memory is the
	// fallback when Redis is unreachable.
	var sessionRepo session.Repository
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Sessions will not survive restarts", err)
		sessionRepo = session.NewMemoryRepository()
		rdb = nil
	} else {
		sessionRepo = session.NewRedisRepository(rdb)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	publisherService := service.NewPublisherService(progressTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, progressTopic, wsHub)

	// 3. Services
	sessionService := service.NewSessionService(
		sessionRepo,
		backendClient,
		sysLogger,
		publisherService,
		natsPub,
		cfg.Wizard.ChunkWorkers,
		cfg.Wizard.MaxProgressStreams,
	)
	catalogService := service.NewCatalogService(backendClient)

	identityClient := identity.New(
		cfg.Identity.TokenURL,
		cfg.Identity.ClientID,
		cfg.Identity.ClientSecret,
		cfg.Identity.Audience,
		cfg.Identity.BillingPortalURL,
	)
	analyticsClient := analytics.NewClient(cfg.Analytics.Endpoint, cfg.Analytics.APIKey)
	accountService := service.NewAccountService(identityClient, analyticsClient, sysLogger)

	// 4. Controllers
	return &Container{
		SessionController:    controller.NewSessionController(sessionService, wsHub, sysLogger),
		CatalogController:    controller.NewCatalogController(catalogService),
		AccountController:    controller.NewAccountController(accountService),
		ValidationController: controller.NewValidationController(),

		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
	}
}
