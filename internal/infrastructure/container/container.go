package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/config"
	"github.com/gdugdh24/sublease-matcher-backend/internal/delivery/http"
	"github.com/gdugdh24/sublease-matcher-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/sublease-matcher-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/sublease-matcher-backend/internal/infrastructure/database"
	"github.com/gdugdh24/sublease-matcher-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/sublease-matcher-backend/internal/infrastructure/metrics"
	"github.com/gdugdh24/sublease-matcher-backend/internal/infrastructure/notify"
	"github.com/gdugdh24/sublease-matcher-backend/internal/infrastructure/server"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository/memory"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository/postgres"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/listing"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/match"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/matchengine"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/profile"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/swipe"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/user"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	DB       *sqlx.DB
	Redis    *redis.Client
	Gemini   *gemini.GeminiClient
	Registry *prometheus.Registry
	Server   *server.Server
	logger   *zap.Logger
}

// NewContainer creates a new dependency injection container. On failure
// everything opened so far is closed again.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *Container, err error) {
	c := &Container{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
		logger:   logger,
	}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	uow, err := c.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	// Gemini is optional: without a key the template text is used
	var explainer notify.Explainer = notify.TemplateExplainer{}
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey, notify.TemplateExplanation, logger)
		if err != nil {
			logger.Warn("gemini client unavailable, using template explanations", zap.Error(err))
		} else {
			c.Gemini = geminiClient
			explainer = geminiClient
		}
	}

	var notifier swipe.MatchNotifier
	if cfg.Redis.Enabled {
		c.Redis, err = database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		notifier = notify.NewRedisNotifier(c.Redis, explainer, logger)
	} else {
		notifier = notify.NewLogNotifier(explainer, logger)
	}

	// Initialize use cases
	userUseCase := user.NewUserUseCase(uow, logger)
	profileUseCase := profile.NewProfileUseCase(uow, logger)
	listingUseCase := listing.NewListingUseCase(uow, logger)
	matchUseCase := match.NewMatchUseCase(uow)
	swipeUseCase := swipe.NewSwipeUseCase(
		uow,
		matchengine.New(),
		notifier,
		metrics.New(c.Registry),
		logger,
	)

	// Initialize router
	router := http.NewRouter(
		handler.NewUserHandler(userUseCase, logger),
		handler.NewSeekerHandler(profileUseCase, logger),
		handler.NewListingHandler(listingUseCase, logger),
		handler.NewSwipeHandler(swipeUseCase, listingUseCase, logger),
		handler.NewMatchHandler(matchUseCase, logger),
		middleware.NewAuthMiddleware(cfg.JWT.AccessSecret, logger),
		c.Registry,
		cfg.Server.CORSOrigins,
		logger,
	)

	c.Server = server.NewServer(&cfg.Server, router.Setup(), logger)
	return c, nil
}

func (c *Container) initStorage(ctx context.Context) (repository.UnitOfWork, error) {
	if c.Config.Storage.Type != config.StoragePostgres {
		c.logger.Info("using in-memory storage")
		return memory.NewStore(), nil
	}

	db, err := database.NewPostgresDB(ctx, &c.Config.Database, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	store := postgres.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	c.logger.Info("using postgres storage", zap.String("database", c.Config.Database.DBName))
	return store, nil
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error

	if c.Gemini != nil {
		if err := c.Gemini.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close gemini client: %w", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
