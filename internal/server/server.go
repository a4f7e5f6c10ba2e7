package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/config"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/mediator"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/auth"
	authcommands "github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/auth/commands"
	authdomain "github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/auth/domain"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
	gamesession "github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session"
	gamesessiondomain "github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"
	sqlmigration "github.com/dibaihss/serverless-api-Azure-Ludo/internal/sql-migrations"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/telemetry"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server interface {
	Start() error
	Stop(ctx context.Context) error
}

var _ Server = &HTTPServer{}

// HTTPServer acts as the composition root for an application.
type HTTPServer struct {
	server *http.Server
	db     *sqlx.DB
	redis  *redis.Client
	logger *zap.Logger
}

func NewHTTPServer(ctx context.Context, cfg config.Config) (*HTTPServer, error) {
	logger := cfg.Logger

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := sqlmigration.Run(cfg.Database.URL, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	cache, redisClient, err := newListCache(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	m := mediator.New()

	m.RegisterPipelineBehavior(&core.RequestLoggingBehavior{Logger: logger})
	m.RegisterPipelineBehavior(&core.HandlerErrorLoggingBehavior{Logger: logger})
	m.RegisterPipelineBehavior(&core.TracingBehavior{Tracer: telemetry.Tracer()})
	m.RegisterPipelineBehavior(&core.RequestValidationBehavior{})

	tokens := authdomain.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if err := registerHandlers(m, db, cfg, cache, tokens); err != nil {
		_ = db.Close()
		return nil, err
	}

	router := newRouter(routerConfig{
		logger:         logger,
		allowedOrigins: cfg.AllowedOrigins,
		mediator:       m,
		tokens:         tokens,
		health:         db.PingContext,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return core.WithLogger(context.Background(), logger)
		},
	}

	return &HTTPServer{
		server: server,
		db:     db,
		redis:  redisClient,
		logger: logger,
	}, nil
}

func registerHandlers(
	m *mediator.Mediator,
	db *sqlx.DB,
	cfg config.Config,
	cache gamesession.ListCache,
	tokens *authdomain.Tokens,
) error {
	lockTimeout := cfg.Database.LockTimeout

	sessions := gamesession.NewSessionRepository(db, lockTimeout)
	coordinator := gamesession.NewMembershipCoordinator(db, auth.NewUserDirectory(), lockTimeout)
	members := gamesession.NewMembershipQuery(db)

	// game-session

	err := mediator.RegisterRequestHandler[gamesession.CreateSessionCommand, gamesessiondomain.Session](
		m,
		gamesession.NewCreateSessionCommandHandler(sessions, cache),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesession.UpdateSessionCommand, gamesessiondomain.Session](
		m,
		gamesession.NewUpdateSessionCommandHandler(sessions, cache),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesession.DeleteSessionCommand, bool](
		m,
		gamesession.NewDeleteSessionCommandHandler(sessions, cache),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesession.JoinSessionCommand, core.Unit](
		m,
		gamesession.NewJoinSessionCommandHandler(coordinator, cache),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesession.LeaveSessionCommand, core.Unit](
		m,
		gamesession.NewLeaveSessionCommandHandler(coordinator, cache),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesession.GetSessionQuery, gamesessiondomain.Session](
		m,
		gamesession.NewGetSessionQueryHandler(sessions),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesession.ListSessionsQuery, []gamesessiondomain.Session](
		m,
		gamesession.NewListSessionsQueryHandler(sessions, cache),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesession.ListMembersQuery, []gamesessiondomain.UserSummary](
		m,
		gamesession.NewListMembersQueryHandler(members),
	)
	if err != nil {
		return err
	}

	// auth

	return mediator.RegisterRequestHandler[authcommands.GuestLoginCommand, authcommands.GuestLoginResponse](
		m,
		authcommands.NewGuestLoginCommandHandler(db, tokens),
	)
}

func newListCache(ctx context.Context, cfg config.Config) (gamesession.ListCache, *redis.Client, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}

		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
		}

		return gamesession.NewRedisListCache(client, cfg.Cache.TTL), client, nil
	case config.CacheBackendMemory:
		return gamesession.NewMemoryListCache(cfg.Cache.TTL), nil, nil
	default:
		return gamesession.NopListCache{}, nil, nil
	}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks until the server stops. A graceful Stop is not an error.
func (s *HTTPServer) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop drains in-flight requests, then releases the store connections.
func (s *HTTPServer) Stop(ctx context.Context) error {
	shutdownErr := s.server.Shutdown(ctx)

	var redisErr error
	if s.redis != nil {
		redisErr = s.redis.Close()
	}

	return errors.Join(shutdownErr, redisErr, s.db.Close())
}
