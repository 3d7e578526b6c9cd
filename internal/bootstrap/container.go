package bootstrap

import (
	"context"
	"log"

	"viralizaai-be/internal/config"
	"viralizaai-be/internal/controller"
	"viralizaai-be/internal/handler"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/internal/pkg/mailer"
	"viralizaai-be/internal/pkg/serverutils"
	"viralizaai-be/internal/repository/memory"
	"viralizaai-be/internal/repository/unitofwork"
	"viralizaai-be/internal/service"
	"viralizaai-be/internal/websocket"
	"viralizaai-be/pkg/entitlement"
	pktNats "viralizaai-be/pkg/nats"
	"viralizaai-be/pkg/qrcode"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const receiptTopic = "payment_receipts"

type Container struct {
	// Controllers
	PlanController    controller.PlanController
	PaymentController controller.IPaymentController
	AccessController  controller.IAccessController
	AdminController   controller.IAdminController

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	AccessService       service.IAccessService

	Config  *config.Config
	Logger  logger.ILogger
	closers []func()
}

// Infrastructure holds the external collaborators. Nil fields disable the
// matching feature instead of failing startup.
type Infrastructure struct {
	Bus         service.EventPublisher
	Subscriber  service.EventSubscriber
	Redis       *redis.Client
	Gateway     service.ICardCheckoutGateway
	Mailer      mailer.IEmailService
	Logger      logger.ILogger
	Clock       service.Clock
	Matrix      *entitlement.Matrix
	StatusCache *memory.PaymentStatusCache
}

// NewContainer connects to NATS, Redis, Midtrans and SMTP using cfg and
// wires everything on top of db.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	infra := Infrastructure{Logger: sysLogger}
	var closers []func()

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		infra.Bus = natsPub
		closers = append(closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		infra.Subscriber = natsSub
		closers = append(closers, natsSub.Close)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. WebSocket push stays local", err)
		_ = rdb.Close()
	} else {
		infra.Redis = rdb
		closers = append(closers, func() { _ = rdb.Close() })
	}

	if cfg.Midtrans.ServerKey != "" {
		infra.Gateway = service.NewMidtransGateway(cfg.Midtrans)
	} else {
		log.Println("[WARN] MIDTRANS_SERVER_KEY not set, card checkout disabled")
	}

	if cfg.SMTP.Host != "" {
		infra.Mailer = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			cfg.App.ClientURL,
		)
	}

	c := NewContainerWith(unitofwork.NewRepositoryFactory(db), cfg, infra)
	c.closers = append(c.closers, closers...)
	return c
}

// NewContainerWith wires the application on an arbitrary repository factory.
func NewContainerWith(uowFactory unitofwork.RepositoryFactory, cfg *config.Config, infra Infrastructure) *Container {
	sysLogger := infra.Logger
	if sysLogger == nil {
		sysLogger = logger.NewNop()
	}
	matrix := infra.Matrix
	if matrix == nil {
		matrix = entitlement.DefaultMatrix()
	}
	statusCache := infra.StatusCache
	if statusCache == nil {
		statusCache = memory.NewPaymentStatusCache(cfg.Access.StatusCacheTTL)
	}

	// Event Bus (in-process jobs)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	publisherService := service.NewPublisherService(receiptTopic, pubSub)

	// Payment core
	registry := service.NewPaymentRegistry(uowFactory, infra.Clock)
	expiry := service.NewExpiryCalculator(sysLogger)
	grantor := service.NewEntitlementGrantor(matrix, expiry, infra.Clock, sysLogger)
	paymentEvents := service.NewPaymentEventPublisher(infra.Bus, publisherService, sysLogger)
	processor := service.NewConfirmationProcessor(uowFactory, registry, grantor, expiry, paymentEvents, statusCache, infra.Clock, sysLogger)

	renderer := qrcode.NewRenderer(cfg.Pix.QRRendererURL, cfg.Pix.QRSize, cfg.Pix.QRSize)
	paymentService := service.NewPaymentService(registry, processor, infra.Gateway, matrix, renderer, statusCache, cfg.Pix, sysLogger)
	accessService := service.NewAccessService(uowFactory, matrix, infra.Clock, sysLogger)

	var consumerService service.IConsumerService
	if infra.Mailer != nil {
		consumerService = service.NewConsumerService(pubSub, receiptTopic, registry, infra.Mailer, sysLogger)
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(infra.Redis, sysLogger)
	var notifService *service.NotificationService
	if infra.Subscriber != nil {
		notifService = service.NewNotificationService(infra.Subscriber, wsHub, sysLogger)
	}

	auth := serverutils.JwtMiddleware(cfg.App.JwtSecret)

	return &Container{
		PlanController:    controller.NewPlanController(paymentService),
		PaymentController: controller.NewPaymentController(paymentService, auth),
		AccessController:  controller.NewAccessController(accessService, auth),
		AdminController:   controller.NewAdminController(paymentService, accessService, auth),

		NotificationHandler: handler.NewNotificationHandler(wsHub, cfg.App.JwtSecret, sysLogger),
		WebSocketHub:        wsHub,

		ConsumerService:     consumerService,
		NotificationService: notifService,
		AccessService:       accessService,

		Config:  cfg,
		Logger:  sysLogger,
		closers: []func(){func() { _ = pubSub.Close() }},
	}
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)
	go c.AccessService.RunPurger(ctx, c.Config.Access.PurgeInterval)

	if c.ConsumerService != nil {
		if err := c.ConsumerService.Consume(ctx); err != nil {
			c.Logger.Error("Container", "Receipt consumer failed to start", map[string]interface{}{"error": err.Error()})
		}
	}
	if c.NotificationService != nil {
		if err := c.NotificationService.Start(ctx); err != nil {
			c.Logger.Error("Container", "Notification service failed to start", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
