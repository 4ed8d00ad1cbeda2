package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/SmartForms-ai/google-forms-api/internal/config"
	"github.com/SmartForms-ai/google-forms-api/internal/gforms"
	"github.com/SmartForms-ai/google-forms-api/internal/quota"
	"github.com/SmartForms-ai/google-forms-api/internal/relay"
	"github.com/SmartForms-ai/google-forms-api/internal/store"
)

// FormService is the Google-facing seam; gforms.Service is the production
// implementation.
type FormService interface {
	CreateForm(ctx context.Context, ts oauth2.TokenSource, schema *gforms.Schema) (*gforms.Result, error)
	ListForms(ctx context.Context, ts oauth2.TokenSource) ([]gforms.FormFile, error)
}

// EmailResolver resolves the acting user's email from their access token.
type EmailResolver func(ctx context.Context, ts oauth2.TokenSource) (string, error)

// FormsHandler serves form creation and listing behind the quota gate.
type FormsHandler struct {
	svc          FormService
	resolveEmail EmailResolver
	usage        *store.UsageStore
	tokens       *store.TokenStore
	relay        *relay.Relay
	delivery     config.TokenDelivery
	freeQuota    int64
	logger       *slog.Logger
}

func NewFormsHandler(
	svc FormService,
	resolveEmail EmailResolver,
	usage *store.UsageStore,
	tokens *store.TokenStore,
	rel *relay.Relay,
	delivery config.TokenDelivery,
	freeQuota int64,
	logger *slog.Logger,
) *FormsHandler {
	return &FormsHandler{
		svc:          svc,
		resolveEmail: resolveEmail,
		usage:        usage,
		tokens:       tokens,
		relay:        rel,
		delivery:     delivery,
		freeQuota:    freeQuota,
		logger:       logger,
	}
}

type createFormRequest struct {
	UserID string `json:"userId"`
	gforms.SchemaInput
}

// tokenSource resolves credentials for the request: the bearer header in
// direct mode, or the user's stored (and lazily refreshed) token in store
// mode.
func (h *FormsHandler) tokenSource(r *http.Request, userID string) (oauth2.TokenSource, int, string) {
	if h.delivery == config.DeliveryStore && userID != "" {
		rec, err := h.tokens.GetLatestByUserID(userID)
		if err != nil {
			h.logger.Error("load stored token", "error", err)
			return nil, http.StatusInternalServerError, "Failed to load credentials"
		}
		if rec == nil {
			return nil, http.StatusUnauthorized, "No stored authorization for user"
		}
		if rec.Expired(time.Now()) {
			fresh, err := h.relay.Refresh(r.Context(), rec.RefreshToken)
			if err != nil {
				if errors.Is(err, relay.ErrReauthorizationRequired) {
					return nil, http.StatusUnauthorized, "Reauthorization required"
				}
				h.logger.Error("token refresh failed", "error", err)
				return nil, http.StatusInternalServerError, "Failed to refresh credentials"
			}
			if err := h.tokens.UpdateAccessToken(rec.ID, fresh.AccessToken, fresh.Expiry); err != nil {
				h.logger.Error("persist refreshed token", "error", err)
			}
			rec.AccessToken = fresh.AccessToken
		}
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: rec.AccessToken,
			TokenType:   "Bearer",
		}), 0, ""
	}

	token := bearerToken(r)
	if token == "" {
		return nil, http.StatusUnauthorized, "Missing Authorization header"
	}
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}), 0, ""
}

// CreateForm builds a Google Form from the supplied schema. Quota is checked
// before the remote calls and consumed only after they succeed, so a failed
// creation never burns a free use.
func (h *FormsHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ts, status, msg := h.tokenSource(r, req.UserID)
	if ts == nil {
		writeError(w, status, msg)
		return
	}

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

	if err := quota.Check(record, h.freeQuota); err != nil {
		writeError(w, http.StatusPaymentRequired,
			"Free usage limit reached. Please upgrade your plan to continue using the service.")
		return
	}

	schema, err := gforms.ParseSchema(req.SchemaInput)
	if err != nil {
		var unsupported *gforms.UnsupportedTypeError
		if errors.As(err, &unsupported) {
			writeError(w, http.StatusBadRequest, unsupported.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.svc.CreateForm(r.Context(), ts, schema)
	if err != nil {
		h.logger.Error("create form", "error", err, "questions", len(schema.Questions))
		writeError(w, http.StatusInternalServerError, "An error occurred while creating the form.")
		return
	}

	if err := h.usage.IncrementUsage(email); err != nil {
		// The form exists; losing the count is better than failing the call.
		h.logger.Error("increment usage", "error", err)
	}

	h.logger.Info("form created", "form_id", result.FormID, "questions", len(schema.Questions))
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Form created successfully",
		"form_id":   result.FormID,
		"form_link": result.ResponderURI,
	})
}

// ListForms enumerates the caller's Google Forms.
func (h *FormsHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"status":  "error",
			"message": "Authorization header missing",
		})
		return
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	files, err := h.svc.ListForms(r.Context(), ts)
	if err != nil {
		h.logger.Error("list forms", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "Failed to list forms",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"forms":  files,
	})
}
