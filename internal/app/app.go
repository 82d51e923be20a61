package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fitcoach-api/internal/config"
	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	cacherepo "github.com/riskibarqy/fitcoach-api/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fitcoach-api/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fitcoach-api/internal/infrastructure/repository/mongodb"
	"github.com/riskibarqy/fitcoach-api/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fitcoach-api/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/fitcoach-api/internal/platform/cache"
	idgen "github.com/riskibarqy/fitcoach-api/internal/platform/id"
	"github.com/riskibarqy/fitcoach-api/internal/platform/logging"
	"github.com/riskibarqy/fitcoach-api/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/v2/mongo/otelmongo"
	"go.opentelemetry.io/otel/attribute"
)

// App owns the HTTP server and the user store behind it.
type App struct {
	Server *http.Server
	store  *userStore
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	store, err := openUserStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	repo := store.repo
	if cfg.CacheEnabled {
		repo = cacherepo.NewUserRepository(repo, basecache.NewStore(cfg.CacheTTL))
		logger.Info("user list cache enabled", "ttl", cfg.CacheTTL.String())
	}

	userSvc := usecase.NewUserService(repo, logger)
	handler := httpapi.NewHandler(userSvc, store, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterOptions{
		ServiceName:       cfg.ServiceName,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		MaxBodyBytes:      cfg.MaxBodyBytes,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return &App{Server: server, store: store}, nil
}

// Close releases the user store. The HTTP server is shut down by the caller.
func (a *App) Close(ctx context.Context) error {
	if a == nil || a.store == nil || a.store.close == nil {
		return nil
	}
	return a.store.close(ctx)
}

type userStore struct {
	driver    string
	repo      user.Repository
	connected func() bool
	close     func(context.Context) error
}

func (s *userStore) Driver() string { return s.driver }

func (s *userStore) Connected() bool {
	if s.connected == nil {
		return true
	}
	return s.connected()
}

func openUserStore(cfg config.Config, logger *logging.Logger) (*userStore, error) {
	switch cfg.UserStore {
	case config.StoreMemory:
		logger.Warn("using in-memory user store; records are lost on restart")
		return &userStore{
			driver: config.StoreMemory,
			repo:   memory.NewUserRepository(idgen.NewUUIDGenerator()),
		}, nil
	case config.StorePostgres:
		return openPostgresStore(cfg, logger)
	case config.StoreMongo, "":
		return openMongoStore(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported user store %q", cfg.UserStore)
	}
}

func openMongoStore(cfg config.Config, logger *logging.Logger) *userStore {
	client := mongodb.Open(mongodb.Options{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		ConnectTimeout: cfg.MongoConnectTimeout,
		Monitor:        chainCommandMonitors(otelmongo.NewMonitor(), commandLogMonitor(logger)),
	}, logger)

	return &userStore{
		driver:    config.StoreMongo,
		repo:      mongodb.NewUserRepository(client, cfg.MongoCollection),
		connected: func() bool { return client.State() == mongodb.StateConnected },
		close:     client.Disconnect,
	}
}

func openPostgresStore(cfg config.Config, logger *logging.Logger) (*userStore, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBBinaryParameters)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatStatementForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	connected := pingPostgres(db, postgresPingTimeout, logger)

	return &userStore{
		driver:    config.StorePostgres,
		repo:      postgres.NewUserProfileRepository(db, idgen.NewUUIDGenerator()),
		connected: connected,
		close: func(context.Context) error {
			return db.Close()
		},
	}, nil
}

const postgresPingTimeout = 10 * time.Second

// pingPostgres checks reachability once in the background; the listener does
// not wait for it. Later health reads re-ping with a short timeout.
func pingPostgres(db *sqlx.DB, timeout time.Duration, logger *logging.Logger) func() bool {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Error("postgres connection error", "error", err)
			return
		}
		logger.Info("postgres connected")
	}()

	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return db.PingContext(ctx) == nil
	}
}
