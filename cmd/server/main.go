package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/qarzbook/ledgercore/docs"
	"github.com/qarzbook/ledgercore/internal/cache"
	"github.com/qarzbook/ledgercore/internal/config"
	"github.com/qarzbook/ledgercore/internal/decode"
	"github.com/qarzbook/ledgercore/internal/handlers"
	"github.com/qarzbook/ledgercore/internal/logger"
	mW "github.com/qarzbook/ledgercore/internal/middleware"
	"github.com/qarzbook/ledgercore/internal/models"
	"github.com/qarzbook/ledgercore/internal/repository"
	"github.com/qarzbook/ledgercore/internal/share"
	"github.com/qarzbook/ledgercore/internal/transport"
)

// @title Ledger Sync API
// @version 1.0
// @description Caching facade over the debt-tracking backend
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using environment: %v", err)
	}

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	cfg := config.Load()

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// Initialize Swagger docs
	docs.SwaggerInfo.Host = getEnvOr("SWAGGER_HOST", "localhost:8080")

	// Cache stores: in-process by default, redis when configured and
	// reachable. A dead redis degrades to memory rather than failing boot.
	caches := repository.MemoryCaches(cfg.Cache.TTL, appLogger)
	if cfg.Cache.Backend == "redis" {
		if redisClient := cache.InitRedis(appLogger); redisClient != nil {
			defer redisClient.Close()
			caches = repository.NewCaches(cfg.Cache.TTL, appLogger, func() (cache.Store[models.Contact], cache.Store[models.DebtRecord], cache.Store[models.PaymentRecord]) {
				return cache.NewRedisStore[models.Contact](redisClient),
					cache.NewRedisStore[models.DebtRecord](redisClient),
					cache.NewRedisStore[models.PaymentRecord](redisClient)
			})
		} else {
			appLogger.Warn("redis unavailable, falling back to in-process cache")
		}
	}

	// Wire the ledger core
	upstream := transport.NewRestyTransport(cfg.Upstream, appLogger)
	decoder := decode.New(cfg.Ledger.DueDays)
	repo := repository.New(upstream, decoder, caches, appLogger)

	contactHandler := handlers.NewContactHandler(repo)
	debtHandler := handlers.NewDebtHandler(repo, share.NewGenerator())
	paymentHandler := handlers.NewPaymentHandler(repo)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://"+docs.SwaggerInfo.Host+"/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/contacts", contactHandler.List)
		r.Post("/contacts", contactHandler.Create)
		r.Get("/contacts/{contactId}", contactHandler.Get)
		r.Put("/contacts/{contactId}", contactHandler.Update)
		r.Delete("/contacts/{contactId}", contactHandler.Delete)

		r.Get("/debts", debtHandler.List)
		r.Post("/debts", debtHandler.Create)
		r.Put("/debts/{recordId}", debtHandler.Update)
		r.Delete("/debts/{recordId}", debtHandler.Delete)
		r.Put("/debts/{recordId}/paid", debtHandler.MarkPaid)
		r.Get("/debts/{recordId}/settle-qr", debtHandler.SettleQR)

		r.Get("/payments", paymentHandler.List)
		r.Get("/overview", debtHandler.Overview)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("server starting", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("server stopped")
}

func getEnvOr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
