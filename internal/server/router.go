// Package server assembles the HTTP API: routes, middleware chain, and the
// listener lifecycle.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"keai-wms/backend/internal/account"
	accountrepo "keai-wms/backend/internal/account/repository"
	"keai-wms/backend/internal/authn"
	"keai-wms/backend/internal/devotp"
	"keai-wms/backend/internal/handler"
	"keai-wms/backend/internal/metrics"
	"keai-wms/backend/internal/middleware"
	"keai-wms/backend/internal/security"
	"keai-wms/backend/internal/session"
)

// RouterDeps bundles everything NewRouter needs.
type RouterDeps struct {
	AuthService    *authn.Service
	AccountService *account.Service
	AccountRepo    accountrepo.Repository

	Tokens   *security.TokenProvider
	Sessions *session.Registry

	RateLimiter *middleware.RateLimiter

	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// DevOTPStore, when non-nil, mounts GET /dev/otp. Must stay nil in
	// production.
	DevOTPStore devotp.Store
}

// NewRouter builds the full route tree.
//
// Login and OTP verification sit outside the session middleware but behind
// the per-peer rate limiter. Everything under the authenticated group
// requires a bearer token over a live session, and each such request counts
// as session activity.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	authHandler := handler.NewAuthHandler(deps.AuthService)
	accountHandler := handler.NewAccountHandler(deps.AccountService, deps.AccountRepo)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}
		r.Post("/login", authHandler.Login)
		r.Post("/verify", authHandler.Verify)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.Tokens, deps.Sessions))

		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/heartbeat", authHandler.Heartbeat)

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", accountHandler.Create)
			r.Get("/me", accountHandler.Me)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", accountHandler.Get)
				r.Put("/", accountHandler.Update)
				r.Post("/password", accountHandler.ResetPassword)
			})
		})
	})

	if deps.DevOTPStore != nil {
		r.Get("/dev/otp", handler.NewDevHandler(deps.DevOTPStore).OTP)
	}

	return r
}
