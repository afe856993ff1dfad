package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

type RouterConfig struct {
	Users   UserService
	Tokens  AccessTokenParser
	Cookies CookieConfig
	Logger  logging.Logger
	// Metrics is served at /metrics when set.
	Metrics http.Handler
	// LoginRateLimit caps login and refresh requests per IP per minute.
	// Zero disables the limit.
	LoginRateLimit int
	// Tracing wraps the router in an OpenTelemetry handler.
	Tracing     bool
	ServiceName string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger{}
	}

	h := &handler{users: cfg.Users, cookies: cfg.Cookies, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Recoverer(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	limited := func(r chi.Router) chi.Router { return r }
	if cfg.LoginRateLimit > 0 {
		limited = func(r chi.Router) chi.Router { return r.With(rateLimiter(cfg.LoginRateLimit)) }
	}

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", h.register)
		limited(r).Post("/login", h.login)
		limited(r).Post("/refresh-token", h.refresh)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(cfg.Tokens))
			r.Post("/logout", h.logout)
			r.Post("/change-password", h.changePassword)
			r.Get("/current-user", h.currentUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, common.NotFound("route not found"))
	})

	if cfg.Tracing {
		name := cfg.ServiceName
		if name == "" {
			name = "authkeeper"
		}
		return otelhttp.NewHandler(r, name)
	}
	return r
}

// rateLimiter allows limit requests per IP per minute and answers the rest
// with a 429 envelope.
func rateLimiter(limit int) func(http.Handler) http.Handler {
	return httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorEnvelope{
				StatusCode: http.StatusTooManyRequests,
				Message:    "too many requests",
			})
		}),
	)
}
