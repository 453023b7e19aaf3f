package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"storefront/internal/adapter/api"
	"storefront/internal/adapter/api/handler"
	apimiddleware "storefront/internal/adapter/api/middleware"
	"storefront/internal/adapter/api/router"
	"storefront/internal/adapter/repository"
	domainrepo "storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/infrastructure/auth"
	"storefront/internal/infrastructure/broker"
	"storefront/internal/infrastructure/firebase"
	"storefront/internal/infrastructure/metrics"
	"storefront/internal/infrastructure/ratelimit"
	"storefront/internal/infrastructure/websocket"
	"storefront/internal/usecase"
	"storefront/pkg/config"
	"storefront/pkg/logger"
	"storefront/pkg/response"
)

type repositories struct {
	orders   domainrepo.OrderRepository
	chats    domainrepo.ChatRepository
	reviews  domainrepo.ReviewRepository
	products domainrepo.ProductRepository
	users    domainrepo.UserRepository
	close    func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetDebug(cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appMetrics, shutdownMetrics, err := metrics.InitMetrics(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	var clientOpts []option.ClientOption
	if cfg.NeedsFirebase() {
		opt, err := firebase.ClientOption(cfg)
		if err != nil {
			log.Fatalf("Failed to load Firebase credentials: %v", err)
		}
		if opt != nil {
			clientOpts = append(clientOpts, opt)
		}
	}

	repos, err := openRepositories(ctx, cfg, clientOpts)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}

	verifier, closeVerifier, err := newTokenVerifier(ctx, cfg, clientOpts)
	if err != nil {
		log.Fatalf("Failed to initialize %s auth: %v", cfg.AuthProvider, err)
	}

	hub := websocket.NewHub(
		websocket.WithAdminRoleRequired(cfg.WSRequireAdminRole),
		websocket.WithMetrics(appMetrics),
	)
	hub.Start(ctx)

	var notifier service.Notifier = hub
	var relay *broker.Relay
	if len(cfg.KafkaBrokers) > 0 {
		relay = broker.NewKafkaRelay(hub, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.InstanceID)
		go relay.Run(ctx)
		notifier = relay
		logger.Info("Notification relay enabled on topic %s as %s", cfg.KafkaTopic, cfg.InstanceID)
	}

	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Limit{
		ratelimit.ActionSendMessage: {PerMinute: cfg.ChatRatePerMinute, Burst: cfg.ChatRateBurst},
		ratelimit.ActionIssueToken:  {PerMinute: 10, Burst: 5},
	}, ratelimit.Limit{PerMinute: 60, Burst: 10})
	limiter.StartCleanupRoutine(ctx)

	userUseCase := usecase.NewUserUseCase(repos.users)
	orderUseCase := usecase.NewOrderUseCase(repos.orders, notifier, appMetrics)
	chatUseCase := usecase.NewChatUseCase(repos.chats, notifier, limiter, appMetrics)
	reviewUseCase := usecase.NewReviewUseCase(repos.reviews, repos.products, appMetrics)
	productUseCase := usecase.NewProductUseCase(repos.products)

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier, userUseCase)

	handlers := &handler.Handlers{
		Order:     handler.NewOrderHandler(orderUseCase),
		Chat:      handler.NewChatHandler(chatUseCase),
		Review:    handler.NewReviewHandler(reviewUseCase),
		Product:   handler.NewProductHandler(productUseCase),
		User:      handler.NewUserHandler(userUseCase),
		Health:    handler.NewHealthHandler(cfg.InstanceID),
		WebSocket: handler.NewWebSocketHandler(hub, authMiddleware, cfg.FrontendURL),
	}
	if cfg.IsDevelopment() && cfg.AuthProvider == config.AuthJWT && cfg.JWTSecret != "" {
		issuer := auth.NewJWTIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
		handlers.DevToken = handler.NewDevTokenHandler(issuer, userUseCase)
		logger.Warn("Development token endpoint enabled at /v1/dev/token")
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(apimiddleware.Metrics(appMetrics))

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	router.Setup(e, handlers, authMiddleware, limiter)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown: %v", err)
	}
	hub.Close()
	if relay != nil {
		if err := relay.Close(); err != nil {
			logger.Error("Relay shutdown: %v", err)
		}
	}
	if closeVerifier != nil {
		closeVerifier()
	}
	if err := repos.close(shutdownCtx); err != nil {
		logger.Error("Store shutdown: %v", err)
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		logger.Error("Metrics shutdown: %v", err)
	}
}

func openRepositories(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (*repositories, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := repository.ConnectMongoDB(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		return &repositories{
			orders:   repository.NewMongoOrderRepository(db),
			chats:    repository.NewMongoChatRepository(db),
			reviews:  repository.NewMongoReviewRepository(db),
			products: repository.NewMongoProductRepository(db),
			users:    repository.NewMongoUserRepository(db),
			close:    client.Disconnect,
		}, nil

	default:
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			return nil, err
		}
		return &repositories{
			orders:   repository.NewFirestoreOrderRepository(client),
			chats:    repository.NewFirestoreChatRepository(client),
			reviews:  repository.NewFirestoreReviewRepository(client),
			products: repository.NewFirestoreProductRepository(client),
			users:    repository.NewFirestoreUserRepository(client),
			close:    func(context.Context) error { return client.Close() },
		}, nil
	}
}

func newTokenVerifier(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (service.TokenVerifier, func(), error) {
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		client, err := firebase.NewAuth(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil

	default:
		if cfg.JWTJWKSURL != "" {
			verifier, err := auth.NewJWKSVerifier(ctx, cfg.JWTJWKSURL)
			if err != nil {
				return nil, nil, err
			}
			return verifier, verifier.Close, nil
		}
		return auth.NewJWTVerifier(cfg.JWTSecret), nil, nil
	}
}
