package main

import (
	"crypto/subtle"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-checkout/internal/auth"
	"github.com/noah-isme/toko-checkout/internal/checkout"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/config"
	"github.com/noah-isme/toko-checkout/internal/health"
	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/ratelimit"
	"github.com/noah-isme/toko-checkout/internal/resilience"
	"github.com/noah-isme/toko-checkout/internal/security"
)

type routerDeps struct {
	cfg         *config.Config
	logger      zerolog.Logger
	redis       *redis.Client
	httpMetrics *obs.HTTPMetrics
	tracing     bool
}

func newRouter(d routerDeps) http.Handler {
	cfg := d.cfg

	checkoutHandler := &checkout.Handler{
		Svc: &checkout.Service{Pipeline: checkout.Pipeline{
			DefaultCurrency: cfg.DefaultCurrency,
			TaxBps:          cfg.TaxRateBps,
		}},
		Logger: d.logger,
	}

	idem := common.Idem{R: d.redis, TTL: cfg.IdempotencyTTL, Prefix: "checkout:idem:"}

	limit := ratelimit.Handler{
		Limiter: newLimiter(cfg, d.redis, d.logger),
		OnError: func(err error) {
			d.logger.Error().Err(err).Msg("rate limiter unavailable")
		},
	}

	// identify attaches the caller when a valid token is sent; authenticate
	// rejects requests without one. Both are no-ops while auth is disabled.
	identify := passThrough
	authenticate := passThrough
	if cfg.AuthEnabled() {
		authMiddleware := auth.Middleware{Verifier: auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)}
		identify = authMiddleware.Authenticate
		authenticate = authMiddleware.RequireAuth
	}

	healthHandler := health.Handler{}
	if d.redis != nil {
		healthHandler.Checks = map[string]health.Checker{"redis": health.RedisChecker{Client: d.redis}}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if d.tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.logger}.Middleware)
	r.Use(security.CORS(cfg.CORSAllowedOrigins))
	r.Use(security.Headers{Enable: cfg.SecurityHeadersEnabled, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if d.httpMetrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	if cfg.Obs.EnablePprof {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), cfg.Obs.PprofUser, cfg.Obs.PprofPass))
	}

	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.With(identify, limit.Middleware).Get("/coupons/{code}", checkoutHandler.Coupon)

		v.Group(func(c chi.Router) {
			c.Use(authenticate)
			c.Use(limit.Middleware)
			c.With(idem.Middleware).Post("/checkout", checkoutHandler.Checkout)
			c.Post("/checkout/quote", checkoutHandler.Quote)
		})
	})

	return r
}

func passThrough(next http.Handler) http.Handler { return next }

func newLimiter(cfg *config.Config, rdb *redis.Client, logger zerolog.Logger) ratelimit.Limiter {
	if cfg.RateLimitMax <= 0 {
		return nil
	}
	memory := ratelimit.NewMemoryLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	if rdb == nil {
		return memory
	}
	return ratelimit.FailoverLimiter{
		Primary:  ratelimit.RedisLimiter{Client: rdb, Prefix: "checkout:rl:", Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		Fallback: memory,
		Breaker:  resilience.NewBreaker("redis_ratelimit", 5, 0.5, 30*time.Second).WithLogger(logger),
	}
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		mux.Handle("/"+name, pprof.Handler(name))
	}
	return http.StripPrefix("/debug/pprof", mux)
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "unauthorised", nil)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
