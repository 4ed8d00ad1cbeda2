package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/SmartForms-ai/google-forms-api/internal/store"
)

// WebhookVerifier verifies a webhook payload's signature; billing.Client is
// the production implementation.
type WebhookVerifier interface {
	ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// WebhookHandler syncs billing entitlement from Stripe events.
type WebhookHandler struct {
	verifier WebhookVerifier
	usage    *store.UsageStore
	logger   *slog.Logger
}

func NewWebhookHandler(verifier WebhookVerifier, usage *store.UsageStore, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		usage:    usage,
		logger:   logger,
	}
}

// HandleStripeWebhook verifies and applies one billing event. Events for
// unknown customers are acknowledged without action so Stripe stops
// retrying them.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	event, err := h.verifier.ConstructWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		h.handleSubscriptionChange(event)
	case "invoice.payment_failed":
		h.handlePaymentFailed(event)
	default:
		h.logger.Info("unhandled webhook event", "type", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleSubscriptionChange(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("webhook: unmarshal subscription", "error", err)
		return
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		h.logger.Error("webhook: subscription event missing customer")
		return
	}

	record, err := h.usage.GetByStripeCustomerID(sub.Customer.ID)
	if err != nil {
		h.logger.Error("webhook: lookup usage record", "error", err)
		return
	}
	if record == nil {
		// Customer unknown to this deployment; deliberate no-op.
		return
	}

	status := string(sub.Status)
	if err := h.usage.UpdateSubscription(record.ID, status, status == "active"); err != nil {
		h.logger.Error("webhook: update subscription", "error", err)
		return
	}
	h.logger.Info("subscription status synced", "status", status)
}

func (h *WebhookHandler) handlePaymentFailed(event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("webhook: unmarshal invoice", "error", err)
		return
	}
	if invoice.Customer == nil || invoice.Customer.ID == "" {
		return
	}

	record, err := h.usage.GetByStripeCustomerID(invoice.Customer.ID)
	if err != nil {
		h.logger.Error("webhook: lookup usage record", "error", err)
		return
	}
	if record == nil {
		return
	}

	if err := h.usage.UpdateSubscription(record.ID, "past_due", false); err != nil {
		h.logger.Error("webhook: mark past_due", "error", err)
	}
}
