package medicalcontacts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/medical-contacts/internal/cache"
	"github.com/magabrotheeeer/medical-contacts/internal/config"
	grpchealth "github.com/magabrotheeeer/medical-contacts/internal/grpc/health"
	"github.com/magabrotheeeer/medical-contacts/internal/http/metrics"
	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/jwt"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/ratelimit"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/migrations"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/rabbitmq"
	analyticsservice "github.com/magabrotheeeer/medical-contacts/internal/services/analytics"
	authservice "github.com/magabrotheeeer/medical-contacts/internal/services/auth"
	billingservice "github.com/magabrotheeeer/medical-contacts/internal/services/billing"
	syncservice "github.com/magabrotheeeer/medical-contacts/internal/services/datasync"
	documentservice "github.com/magabrotheeeer/medical-contacts/internal/services/document"
	patientservice "github.com/magabrotheeeer/medical-contacts/internal/services/patient"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

const (
	shutdownTimeout       = 15 * time.Second
	limiterCleanup        = time.Minute
	healthRefreshInterval = 10 * time.Second
)

// userCache объединяет методы кэша профилей, нужные сервисам auth и billing.
type userCache interface {
	GetUser(ctx context.Context, userID string) (*models.User, bool, error)
	SetUser(ctx context.Context, user *models.User) error
	InvalidateUser(ctx context.Context, userID string) error
}

// App HTTP-приложение со всеми внешними ресурсами.
type App struct {
	server        *http.Server
	logger        *slog.Logger
	db            *storage.Storage
	cache         *cache.Cache
	amqpConn      *amqp.Connection
	amqpChannel   *amqp.Channel
	memoryLimiter []*ratelimit.MemoryLimiter
	healthServer  *grpchealth.Server
}

// New подключается к хранилищам, применяет миграции и собирает маршруты.
// Redis и RabbitMQ необязательны: без них используются in-memory лимитер и пустой издатель.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	app := &App{logger: logger, db: db}

	if err = migrations.Run(db.DB); err != nil {
		app.close()
		return nil, err
	}

	if cfg.SeedDemoData {
		if err = Seed(ctx, logger, db); err != nil {
			app.close()
			return nil, err
		}
	}

	var users userCache
	var authLimiter, apiLimiter middlewarectx.Limiter
	if cfg.AddressRedis != "" {
		app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, err
		}
		users = cache.NewUserCache(app.cache, cache.UserTTL)
		authLimiter = ratelimit.NewRedisLimiter(app.cache, cfg.Requests, cfg.Window)
		apiLimiter = authLimiter
		logger.Info("redis enabled", slog.String("address", cfg.AddressRedis))
	} else {
		auth := ratelimit.NewMemoryLimiter(cfg.Requests, cfg.Window)
		api := ratelimit.NewMemoryLimiter(cfg.Requests, cfg.Window)
		app.memoryLimiter = []*ratelimit.MemoryLimiter{auth, api}
		authLimiter, apiLimiter = auth, api
		logger.Info("redis disabled, using in-memory rate limiter")
	}

	var publisher billingservice.EventPublisher = rabbitmq.NoopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		app.amqpConn, err = rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.Retries, cfg.Delay)
		if err != nil {
			app.close()
			return nil, err
		}
		app.amqpChannel, err = rabbitmq.SetupExchange(app.amqpConn, cfg.Exchange)
		if err != nil {
			app.close()
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(app.amqpChannel, cfg.Exchange)
		logger.Info("billing events enabled", slog.String("exchange", cfg.Exchange))
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	patients := patientservice.NewPatientService(db)

	deps := Deps{
		Tokens:      jwtMaker,
		AuthLimiter: authLimiter,
		APILimiter:  apiLimiter,
		Pinger:      db,
		Metrics:     metrics.New(db.DB),
		Auth:        authservice.NewAuthService(logger, db, jwtMaker, users),
		Patients:    patients,
		Documents:   documentservice.NewDocumentService(db),
		Analytics:   analyticsservice.NewAnalyticsService(db),
		Sync:        syncservice.NewSyncService(db, patients),
		Billing:     billingservice.NewBillingService(logger, db, users, publisher, cfg.CheckoutBaseURL),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, deps)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	if cfg.GRPCHealthAddress != "" {
		app.healthServer = grpchealth.New(logger, cfg.GRPCHealthAddress, db)
	}

	return app, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	for _, l := range a.memoryLimiter {
		go l.RunCleanup(ctx, limiterCleanup)
	}

	if a.healthServer != nil {
		go func() {
			if err := a.healthServer.Run(ctx, healthRefreshInterval); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		_ = a.server.Close()
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqpChannel != nil {
		if err := a.amqpChannel.Close(); err != nil {
			a.logger.Warn("failed to close amqp channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close amqp connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
