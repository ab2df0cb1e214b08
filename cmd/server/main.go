package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"miaumarket-be/internal/assistant"
	"miaumarket-be/internal/auth"
	"miaumarket-be/internal/category"
	"miaumarket-be/internal/config"
	"miaumarket-be/internal/db"
	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/messaging"
	"miaumarket-be/internal/metrics"
	"miaumarket-be/internal/middleware"
	"miaumarket-be/internal/notification"
	"miaumarket-be/internal/order"
	"miaumarket-be/internal/product"
	"miaumarket-be/internal/review"
	"miaumarket-be/internal/telemetry"
	"miaumarket-be/internal/user"

	"go.uber.org/zap"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

// Swapped in tests.
var (
	initDBFunc      = db.NewDatabase
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

// deps are the optional collaborators built from config in run.
type deps struct {
	metrics        *metrics.Recorder
	metricsHandler http.Handler
	limiter        *middleware.RateLimiter
	events         order.Publisher
	history        assistant.HistoryStore
	generator      assistant.Generator
}

type handlers struct {
	user         *user.Handler
	product      *product.Handler
	category     *category.Handler
	order        *order.Handler
	notification *notification.Handler
	review       *review.Handler
	assistant    *assistant.Handler
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	lg := logger.L()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(version)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	rec, err := metrics.NewRecorder()
	if err != nil {
		return err
	}

	database, err := initDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	d := deps{
		metrics:        rec,
		metricsHandler: metricsHandler,
		limiter:        middleware.NewRateLimiter(),
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer producer.Close()
		d.events = producer
		lg.Info("order events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaOrderTopic))
	}

	if cfg.RedisURL != "" {
		client, err := assistant.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			lg.Warn("chat history disabled", zap.Error(err))
		} else {
			defer client.Close()
			d.history = assistant.NewRedisHistory(client)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(cfg, database, d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go d.limiter.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		lg.Info("HTTP server listening", zap.String("addr", srv.Addr), zap.String("version", version))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer builds every service on top of database and returns the fully
// wrapped HTTP handler.
func newServer(cfg *config.Config, database *sql.DB, d deps) http.Handler {
	loc := cfg.Location()
	tokens := auth.NewTokenManager(cfg.JWTSecret, auth.DefaultTokenTTL)

	if d.limiter == nil {
		d.limiter = middleware.NewRateLimiter()
	}
	if d.generator == nil {
		d.generator = assistant.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel)
	}

	userSvc := user.NewService(user.NewRepository(database), tokens, loc)
	productSvc := product.NewService(product.NewRepository(database), loc)
	sweeper := product.NewExpirySweeper(database, d.metrics, loc)
	orderSvc := order.NewService(order.NewRepository(database, d.metrics), d.events, d.metrics)
	notificationSvc := notification.NewService(notification.NewRepository(database, d.metrics))
	reviewSvc := review.NewService(review.NewRepository(database))
	categorySvc := category.NewService(category.NewRepository(database), loc)
	assistantSvc := assistant.NewService(d.generator, productSvc, d.history, d.metrics)

	router := setupRouter(handlers{
		user:         user.NewHandler(userSvc),
		product:      product.NewHandler(productSvc, sweeper),
		category:     category.NewHandler(categorySvc),
		order:        order.NewHandler(orderSvc),
		notification: notification.NewHandler(notificationSvc),
		review:       review.NewHandler(reviewSvc),
		assistant:    assistant.NewHandler(assistantSvc),
	}, d.metricsHandler)

	var h http.Handler = router
	h = d.limiter.Middleware(h)
	h = middleware.AuthMiddleware(tokens)(h)
	h = middleware.CORS(cfg.CORSAllowedOrigins)(h)
	h = logger.LoggingMiddleware(h)
	h = logger.RequestIDMiddleware(h)
	h = middleware.Recoverer(h)
	return telemetry.NewHandler(h)
}

func setupRouter(h handlers, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	route := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(fn))
	}
	authed, admin := middleware.RequireUser, middleware.RequireAdmin

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	route("POST /registro/{$}", h.user.Register)
	route("POST /login/{$}", h.user.Login)
	route("GET /perfil/{$}", authed(h.user.GetProfile))
	route("PUT /perfil/{$}", authed(h.user.UpdateProfile))
	route("GET /usuarios/{$}", admin(h.user.ListUsers))

	route("GET /productos/{$}", h.product.List)
	route("POST /productos/{$}", admin(h.product.Create))
	route("GET /productos/{id}/{$}", h.product.Get)
	route("PUT /productos/{id}/{$}", admin(h.product.Update))
	route("DELETE /productos/{id}/{$}", admin(h.product.Delete))
	route("GET /categorias/{$}", h.category.List)

	route("GET /productos/{id}/reviews/{$}", h.review.List)
	route("POST /productos/{id}/reviews/{$}", authed(h.review.Create))
	route("GET /productos/{id}/my-review/{$}", authed(h.review.GetMine))
	route("PUT /productos/{id}/my-review/{$}", authed(h.review.UpdateMine))
	route("DELETE /productos/{id}/my-review/{$}", authed(h.review.DeleteMine))
	route("GET /productos/{id}/rating/{$}", h.review.Rating)
	route("GET /ratings/{$}", h.review.AllRatings)

	route("POST /pedidos/{$}", authed(h.order.Place))
	route("GET /pedidos/{$}", admin(h.order.ListAll))
	route("PUT /pedidos/{id}/{$}", admin(h.order.UpdateStatus))
	route("GET /mis-pedidos/{$}", authed(h.order.ListMine))

	route("GET /notificaciones/{$}", authed(h.notification.List))
	route("PUT /notificaciones/{id}/leer/{$}", authed(h.notification.MarkRead))
	route("PUT /notificaciones/leer-todas/{$}", authed(h.notification.MarkAllRead))
	route("POST /notificaciones/verificar-caducados/{$}", admin(h.product.SweepExpired))

	route("POST /chatbot/{$}", h.assistant.Chat)
	route("POST /chatbot/descripcion/{$}", admin(h.assistant.Describe))

	return mux
}
