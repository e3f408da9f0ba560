package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/syndly/syndly/internal/identity/presence"
	"github.com/syndly/syndly/internal/identity/service"
	"github.com/syndly/syndly/internal/identity/store"
	"github.com/syndly/syndly/pkg/httpx"
	"github.com/syndly/syndly/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	presence *presence.Registry

	TokenService      *service.TokenService
	ProvisionService  *service.ProvisionService
	OnboardingService *service.OnboardingService
	TwoFactorService  *service.TwoFactorService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	reg *presence.Registry,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		presence:     reg,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.InstrumentMiddleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerSession()
	r.registerTwoFactor()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	provisionHandler := &ProvisionHandler{ProvisionService: r.ProvisionService}

	// Public signup endpoint: strict rate limit by IP.
	r.Mux.Handle("POST /v1/accounts:provision",
		httpx.Chain(provisionHandler,
			httpx.RateLimitMiddleware(httpx.StrictLimit, httpx.IPKeyExtractor),
		),
	)

	activateHandler := &ActivateHandler{
		OnboardingService: r.OnboardingService,
		TokenService:      r.TokenService,
		Resolver:          &service.ResolverService{Store: r.store},
	}
	r.Mux.Handle("POST /v1/accounts/{id}/activate",
		httpx.Chain(activateHandler,
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitMiddleware(httpx.ModerateLimit, httpx.ClaimsKeyExtractor),
		),
	)
}

func (r *Router) registerSession() {
	checkHandler := &CheckHandler{
		OnboardingService: r.OnboardingService,
		Presence:          r.presence,
	}

	r.Mux.Handle("GET /v1/session/check",
		httpx.Chain(checkHandler,
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitMiddleware(httpx.ModerateLimit, httpx.ClaimsKeyExtractor),
		),
	)

	presenceHandler := &PresenceHandler{Registry: r.presence}
	r.Mux.Handle("POST /v1/presence/connect",
		httpx.Chain(http.HandlerFunc(presenceHandler.HandleConnect),
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitMiddleware(httpx.ModerateLimit, httpx.ClaimsKeyExtractor),
		),
	)
	r.Mux.Handle("POST /v1/presence/disconnect",
		httpx.Chain(http.HandlerFunc(presenceHandler.HandleDisconnect),
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitMiddleware(httpx.ModerateLimit, httpx.ClaimsKeyExtractor),
		),
	)
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{TwoFactorService: r.TwoFactorService}

	// Both endpoints carry codes, so strict limits to stop brute force.
	r.Mux.Handle("POST /v1/twofactor/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitMiddleware(httpx.StrictLimit, httpx.IPKeyExtractor),
		),
	)
	r.Mux.Handle("POST /v1/twofactor/resend",
		httpx.Chain(http.HandlerFunc(h.HandleResend),
			httpx.RateLimitMiddleware(httpx.StrictLimit, httpx.IPKeyExtractor),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /metrics", httpx.MetricsHandler())
}
