// Package server wires the configuration, storage backends, services and
// the HTTP transport together and runs them until a termination signal.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/authkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/dmitrijs2005/authkeeper/internal/server/telemetry"
	"github.com/dmitrijs2005/authkeeper/internal/server/uploads"
)

const serviceName = "authkeeper"

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	userService *services.UserService
	handler     http.Handler
	closers     []func(context.Context) error
}

// NewApp builds every dependency from c. Resources opened on the way are
// released if a later step fails.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (_ *App, err error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	app := &App{config: c, logger: logging.NewJSONLogger(logOut, c.LogLevel)}
	defer func() {
		if err != nil {
			_ = app.close(context.Background())
		}
	}()

	shutdownTracing, err := telemetry.Init(ctx, serviceName, c.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, shutdownTracing)

	rm, err := app.initRepositories(ctx)
	if err != nil {
		return nil, err
	}
	app.repomanager = rm

	uploader, err := uploads.NewS3Uploader(ctx, uploads.S3Config{
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, err
	}

	issuer := auth.NewIssuer(auth.Config{
		AccessSecret:  []byte(c.AccessTokenSecret),
		RefreshSecret: []byte(c.RefreshTokenSecret),
		AccessTTL:     c.AccessTokenValidityDuration,
		RefreshTTL:    c.RefreshTokenValidityDuration,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	app.userService = services.NewUserService(rm, issuer, credentials.NewBcryptHasher(c.BcryptCost), uploader,
		services.Policy{RevokeSessionsOnPasswordChange: c.RevokeSessionsOnPasswordChange},
		app.logger.With("module", "user_service"), m)

	app.handler = httpapi.NewRouter(httpapi.RouterConfig{
		Users:  app.userService,
		Tokens: issuer,
		Cookies: httpapi.CookieConfig{
			Secure:     c.CookiesSecure(),
			Domain:     c.CookieDomain,
			AccessTTL:  c.AccessTokenValidityDuration,
			RefreshTTL: c.RefreshTokenValidityDuration,
		},
		Logger:         app.logger.With("module", "http"),
		Metrics:        metrics.Handler(reg),
		LoginRateLimit: c.LoginRateLimit,
		Tracing:        c.OTLPEndpoint != "",
		ServiceName:    serviceName,
	})

	return app, nil
}

func (app *App) initRepositories(ctx context.Context) (repomanager.RepositoryManager, error) {
	c := app.config

	if c.SessionBackend == config.SessionBackendMemory {
		app.logger.Warn(ctx, "using in-memory storage, data is lost on restart")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var opts []repomanager.Option
	if c.SessionBackend == config.SessionBackendRedis {
		client := redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			_ = db.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return client.Close() })
		opts = append(opts, repomanager.WithSessionStore(
			refreshtokens.NewRedisRepository(client, refreshtokens.DefaultRedisPrefix, c.RefreshTokenValidityDuration)))
	}

	rm := repomanager.NewPostgresRepositoryManager(db, opts...)
	app.closers = append(app.closers, func(context.Context) error { return rm.Close() })

	if err := rm.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return rm, nil
}

// Handler is the root HTTP handler.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.handler, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases every resource.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.close(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err)
	}
	app.logger.Info(shutdownCtx, "App stopped")
}

// close runs the closers in reverse order of registration.
func (app *App) close(ctx context.Context) error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
