package main

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/afrigis/user-feedback/internal/bootstrap"
	"github.com/afrigis/user-feedback/internal/config"
	"github.com/afrigis/user-feedback/internal/handler"
	"github.com/afrigis/user-feedback/internal/repository"
	"github.com/afrigis/user-feedback/pkg/auth"
)

type routerDeps struct {
	cfg        *config.Config
	db         repository.DB
	publisher  handler.Publisher
	builder    *bootstrap.Builder
	deliveries handler.DeliveryLister
	images     handler.ImageOpener
	limiter    *handler.RateLimiter
	verifier   auth.Verifier
}

func newRouter(d routerDeps) http.Handler {
	h := handler.New(d.db, d.cfg.AllowedOrigins)
	feedbackHandler := handler.NewFeedbackHandler(d.publisher)
	bootstrapHandler := handler.NewBootstrapHandler(d.builder, handler.BootstrapConfig{
		Theme:        theme(d.cfg),
		SiteLanguage: d.cfg.SiteLanguage,
	})
	deliveryHandler := handler.NewDeliveryHandler(d.deliveries, d.cfg.AdminEmail)
	screenshotHandler := handler.NewScreenshotHandler(d.deliveries, d.images, d.cfg.AdminEmail)

	wrapAuth := func(next http.Handler) http.Handler {
		if d.cfg.AuthRequired {
			return auth.RequireAuth(d.verifier)(next)
		}
		return auth.DevAuth(next)
	}
	optionalAuth := auth.OptionalAuth(d.verifier)
	// The feedback alias only borrows the identity of a real session.
	submitterAuth := optionalAuth
	if d.cfg.AuthRequired {
		submitterAuth = wrapAuth
	}
	limit := d.limiter.Middleware

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)

	// Widget endpoints (anonymous visitors allowed)
	mux.Handle("GET /api/feedback/bootstrap", optionalAuth(http.HandlerFunc(bootstrapHandler.Get)))
	mux.Handle("POST /api/feedback", limit(optionalAuth(http.HandlerFunc(feedbackHandler.Submit))))
	mux.Handle("POST /api/me/feedback", limit(submitterAuth(http.HandlerFunc(feedbackHandler.Submit))))

	// Site owner
	mux.Handle("GET /api/admin/deliveries", wrapAuth(http.HandlerFunc(deliveryHandler.AdminList)))
	mux.Handle("GET /api/admin/deliveries/{id}/screenshot", wrapAuth(http.HandlerFunc(screenshotHandler.Get)))

	var root http.Handler = mux
	root = h.CORS(root)
	root = handler.SecurityHeaders(root)
	root = handler.RequestLogger(root)
	root = middleware.Recoverer(root)
	root = middleware.RequestID(root)
	return root
}
