package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/SmartForms-ai/google-forms-api/internal/billing"
	"github.com/SmartForms-ai/google-forms-api/internal/config"
	"github.com/SmartForms-ai/google-forms-api/internal/gforms"
	"github.com/SmartForms-ai/google-forms-api/internal/handler"
	"github.com/SmartForms-ai/google-forms-api/internal/middleware"
	"github.com/SmartForms-ai/google-forms-api/internal/relay"
	"github.com/SmartForms-ai/google-forms-api/internal/store"
)

type Server struct {
	db          *sql.DB
	usageStore  *store.UsageStore
	tokenStore  *store.TokenStore
	oauthH      *handler.OAuthHandler
	formsH      *handler.FormsHandler
	checkoutH   *handler.CheckoutHandler
	webhookH    *handler.WebhookHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	usageStore := store.NewUsageStore(db)
	tokenStore := store.NewTokenStore(db)

	rel := relay.New(relay.Config{
		ClientID:            cfg.GoogleClientID,
		ClientSecret:        cfg.GoogleClientSecret,
		ExpectedRedirectURI: cfg.RedirectURI,
		CallerCallbackURL:   cfg.CallerCallbackURL,
	})

	formSvc := &gforms.Service{DescriptionInCreate: cfg.DescriptionInCreate}

	oauthH := handler.NewOAuthHandler(rel, tokenStore, cfg.TokenDelivery, logger.With("component", "oauth"))
	formsH := handler.NewFormsHandler(
		formSvc, gforms.ResolveEmail, usageStore, tokenStore, rel,
		cfg.TokenDelivery, cfg.FreeQuota, logger.With("component", "forms"),
	)

	var checkoutH *handler.CheckoutHandler
	var webhookH *handler.WebhookHandler
	if cfg.BillingEnabled() {
		stripeClient := billing.NewClient(billing.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			PriceID:       cfg.StripePriceID,
		})
		checkoutH = handler.NewCheckoutHandler(stripeClient, gforms.ResolveEmail, usageStore, logger.With("component", "checkout"))
		webhookH = handler.NewWebhookHandler(stripeClient, usageStore, logger.With("component", "webhook"))
	}

	return &Server{
		db:          db,
		usageStore:  usageStore,
		tokenStore:  tokenStore,
		oauthH:      oauthH,
		formsH:      formsH,
		checkoutH:   checkoutH,
		webhookH:    webhookH,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// UsageStore exposes the usage store for the reset scheduler.
func (s *Server) UsageStore() *store.UsageStore {
	return s.usageStore
}

// RateLimiter exposes the limiter for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.health)

	mux.HandleFunc("GET /oauth/authorize", s.oauthH.Authorize)
	mux.HandleFunc("GET /oauth/callback", s.oauthH.Callback)
	mux.HandleFunc("POST /oauth/token", s.rateLimited(s.oauthH.Token))

	mux.HandleFunc("POST /create-form", s.rateLimited(s.formsH.CreateForm))
	mux.HandleFunc("GET /list-forms", s.formsH.ListForms)

	if s.checkoutH != nil {
		mux.HandleFunc("POST /create-checkout-session", s.checkoutH.CreateCheckoutSession)
	}
	if s.webhookH != nil {
		mux.HandleFunc("POST /webhook", s.webhookH.HandleStripeWebhook)
	}

	return middleware.RequestLogger(s.logger)(mux)
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Server is up and running!"))
}
