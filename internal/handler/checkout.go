package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/SmartForms-ai/google-forms-api/internal/gforms"
	"github.com/SmartForms-ai/google-forms-api/internal/store"
)

// StripeCheckout is the billing seam; billing.Client is the production
// implementation.
type StripeCheckout interface {
	CreateCustomer(email string) (string, error)
	CreateCheckoutSession(customerID string) (string, error)
}

// CheckoutHandler starts a subscription checkout for the authenticated user.
type CheckoutHandler struct {
	stripe       StripeCheckout
	resolveEmail EmailResolver
	usage        *store.UsageStore
	logger       *slog.Logger
}

func NewCheckoutHandler(stripe StripeCheckout, resolveEmail EmailResolver, usage *store.UsageStore, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		stripe:       stripe,
		resolveEmail: resolveEmail,
		usage:        usage,
		logger:       logger,
	}
}

// CreateCheckoutSession resolves the caller, lazily creates their Stripe
// customer, and returns a checkout session id.
func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Missing Authorization header")
		return
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	email, err := h.resolveEmail(r.Context(), ts)
	if err != nil {
		if errors.Is(err, gforms.ErrIdentityUnavailable) {
			writeError(w, http.StatusBadRequest, "Unable to retrieve user email")
			return
		}
		h.logger.Error("resolve identity", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve user identity")
		return
	}

	record, err := h.usage.GetOrCreate(email)
	if err != nil {
		h.logger.Error("load usage record", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load usage record")
		return
	}

	customerID := ""
	if record.StripeCustomerID != nil {
		customerID = *record.StripeCustomerID
	}
	if customerID == "" {
		customerID, err = h.stripe.CreateCustomer(email)
		if err != nil {
			h.logger.Error("create stripe customer", "error", err)
			writeError(w, http.StatusInternalServerError, "An error occurred while creating the checkout session.")
			return
		}
		if err := h.usage.SetStripeCustomerID(record.ID, customerID); err != nil {
			h.logger.Error("persist stripe customer id", "error", err)
			writeError(w, http.StatusInternalServerError, "An error occurred while creating the checkout session.")
			return
		}
		// A concurrent request may have won the once-only write; re-read so
		// the session is created against the authoritative customer.
		if fresh, err := h.usage.GetByEmail(email); err == nil && fresh != nil && fresh.StripeCustomerID != nil {
			customerID = *fresh.StripeCustomerID
		}
	}

	sessionID, err := h.stripe.CreateCheckoutSession(customerID)
	if err != nil {
		h.logger.Error("create checkout session", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while creating the checkout session.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"sessionId": sessionID})
}
