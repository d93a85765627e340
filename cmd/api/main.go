package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/example/festisolde/internal/api"
	"github.com/example/festisolde/internal/auth"
	"github.com/example/festisolde/internal/checkout"
	"github.com/example/festisolde/internal/config"
	"github.com/example/festisolde/internal/domain/cart"
	"github.com/example/festisolde/internal/domain/catalog"
	"github.com/example/festisolde/internal/domain/order"
	"github.com/example/festisolde/internal/domain/shop"
	"github.com/example/festisolde/internal/infrastructure/kafka"
	"github.com/example/festisolde/internal/infrastructure/localstore"
	"github.com/example/festisolde/internal/infrastructure/media"
	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/logging"
	"github.com/example/festisolde/internal/model"
)

const evictInterval = 5 * time.Minute

type cartStorage interface {
	cart.Storage
	io.Closer
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logging.SetLevel(cfg.LogLevel)
	logger := logging.New("api")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Info().
		Str("env", cfg.AppEnv).
		Strs("kafka_brokers", cfg.KafkaBrokers).
		Str("kafka_topic", cfg.KafkaTopic).
		Str("kafka_order_topic", cfg.KafkaOrderTopic).
		Str("cart_storage", cfg.CartStorage).
		Msg("starting FestiSolde storefront")

	// Initialize PostgreSQL connection
	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}
	logger.Info().Msg("connected to PostgreSQL")

	carts, err := openCartStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open cart storage")
	}
	defer carts.Close()

	images, err := media.NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure image storage")
	}

	// Initialize Kafka producer
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, map[string]string{
		order.EventOrderSubmitted: cfg.KafkaOrderTopic,
	})
	defer producer.Close()

	// Initialize stores
	products := store.NewPostgresCatalogStore(db)
	orders := store.NewPostgresOrderStore(db)
	shops := store.NewPostgresShopStore(db)
	profiles := store.NewPostgresProfileStore(db)

	// Initialize domain services
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	provider := auth.NewProvider(profiles, jwtService)
	unsubscribe := provider.OnSessionChange(func(s *model.Session) {
		if s == nil {
			logger.Info().Msg("session ended")
			return
		}
		logger.Info().Str("user_id", s.UserID).Str("role", string(s.Role)).Msg("session started")
	})
	defer unsubscribe()

	shopSvc := shop.NewService(shops, profiles)
	clients := api.NewRegistry(api.RegistryConfig{
		Storage:   carts,
		Orders:    orders,
		Publisher: producer,
		Merchant: checkout.Merchant{
			WhatsApp:      cfg.MerchantWhatsApp,
			PaymentNumber: cfg.MerchantPaymentNumber,
		},
		Shops:         shopSvc,
		LookupTimeout: cfg.ShopLookupTimeout,
	})

	server := api.NewServer(api.Deps{
		Catalog:       catalog.NewManager(products, images),
		Shops:         shopSvc,
		Orders:        order.NewService(orders, shops),
		Auth:          provider,
		Clients:       clients,
		SecureCookies: cfg.SecureCookies,
	})
	router := api.NewRouter(api.RouterConfig{
		Server:   server,
		Sessions: provider,
		Logger:   logging.New("http"),
		WebDir:   cfg.WebDir,
	})

	go evictIdleClients(ctx, clients, cfg.ClientIdleTTL)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("server started")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openCartStorage(ctx context.Context, cfg *config.Config) (cartStorage, error) {
	if cfg.CartStorage == "redis" {
		return localstore.NewRedisStorage(ctx, cfg.RedisURL, cfg.CartTTL)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.CartSQLitePath), 0o755); err != nil {
		return nil, err
	}
	return localstore.OpenSQLite(cfg.CartSQLitePath)
}

// evictIdleClients drops in-memory client sessions that have gone quiet.
// Their carts stay in storage.
func evictIdleClients(ctx context.Context, clients *api.Registry, idle time.Duration) {
	logger := logging.New("api")
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := clients.Evict(idle); n > 0 {
				logger.Debug().Int("evicted", n).Int("active", clients.Len()).Msg("evicted idle clients")
			}
		}
	}
}
