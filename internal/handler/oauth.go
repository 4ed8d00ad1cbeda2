package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SmartForms-ai/google-forms-api/internal/config"
	"github.com/SmartForms-ai/google-forms-api/internal/relay"
	"github.com/SmartForms-ai/google-forms-api/internal/store"
)

// OAuthHandler serves the three legs of the authorization-code relay.
type OAuthHandler struct {
	relay    *relay.Relay
	tokens   *store.TokenStore
	delivery config.TokenDelivery
	logger   *slog.Logger
}

func NewOAuthHandler(r *relay.Relay, tokens *store.TokenStore, delivery config.TokenDelivery, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		relay:    r,
		tokens:   tokens,
		delivery: delivery,
		logger:   logger,
	}
}

// Authorize begins the relay: validates the caller's redirect_uri and state,
// then redirects to Google's consent screen.
func (h *OAuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	state := r.URL.Query().Get("state")
	userID := r.URL.Query().Get("user_id")

	if redirectURI == "" || state == "" {
		writeError(w, http.StatusBadRequest, "redirect_uri and state are required")
		return
	}

	authURL, err := h.relay.AuthCodeURL(redirectURI, state)
	if err != nil {
		h.logger.Warn("authorize rejected", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid redirect_uri")
		return
	}

	// A new authorization supersedes any stored credentials for the user.
	if userID != "" && h.delivery == config.DeliveryStore {
		if err := h.tokens.DeleteByUserID(userID); err != nil {
			h.logger.Error("clear stored tokens", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to start authorization")
			return
		}
	}

	h.logger.Info("authorization started", "has_user_id", userID != "")
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback re-dispatches Google's code and state to the caller's own
// callback endpoint. Only reachable when the relay owns the redirect target.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	target, err := h.relay.CallbackRedirectURL(code, state)
	if err != nil {
		h.logger.Warn("callback rejected", "has_code", code != "", "has_state", state != "")
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

type tokenRequest struct {
	Code         string `json:"code"`
	GrantType    string `json:"grant_type"`
	RedirectURI  string `json:"redirect_uri"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	UserID       string `json:"user_id"`
}

func parseTokenRequest(r *http.Request) tokenRequest {
	// The agent platform sends form-encoded bodies; some clients send JSON.
	// Accept both, like the original service did.
	if err := r.ParseForm(); err == nil && len(r.PostForm) > 0 {
		return tokenRequest{
			Code:         r.PostForm.Get("code"),
			GrantType:    r.PostForm.Get("grant_type"),
			RedirectURI:  r.PostForm.Get("redirect_uri"),
			ClientID:     r.PostForm.Get("client_id"),
			ClientSecret: r.PostForm.Get("client_secret"),
			UserID:       r.PostForm.Get("user_id"),
		}
	}
	var req tokenRequest
	decodeJSON(r, &req)
	return req
}

// Token exchanges an authorization code for bearer tokens, either returning
// them to the caller or persisting them under the caller's user id.
func (h *OAuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	req := parseTokenRequest(r)

	h.logger.Info("token exchange request",
		"has_code", req.Code != "",
		"has_client_id", req.ClientID != "",
		"has_user_id", req.UserID != "",
		"grant_type", req.GrantType,
	)

	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "Missing code parameter")
		return
	}
	if req.GrantType == "" {
		writeError(w, http.StatusBadRequest, "Missing grant_type parameter")
		return
	}
	if req.RedirectURI == "" {
		writeError(w, http.StatusBadRequest, "Missing redirect_uri parameter")
		return
	}

	if err := h.relay.ValidateTokenRequest(req.GrantType, req.ClientID, req.ClientSecret); err != nil {
		switch {
		case errors.Is(err, relay.ErrUnsupportedGrantType):
			writeError(w, http.StatusBadRequest, "Unsupported grant type")
		case errors.Is(err, relay.ErrInvalidClient):
			writeError(w, http.StatusUnauthorized, "Invalid client credentials")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	token, err := h.relay.Exchange(r.Context(), req.Code, req.RedirectURI)
	if err != nil {
		if errors.Is(err, relay.ErrInvalidRedirect) {
			writeError(w, http.StatusBadRequest, "Invalid redirect_uri")
			return
		}
		h.logger.Error("token exchange failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to exchange code for tokens")
		return
	}

	if h.delivery == config.DeliveryStore {
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "Missing user_id parameter")
			return
		}
		if _, err := h.tokens.Create(req.UserID, token.AccessToken, token.RefreshToken, token.Expiry); err != nil {
			h.logger.Error("store tokens", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to store tokens")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "authorized",
			"expires_in": relay.ExpiresIn(token, time.Now()),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  token.AccessToken,
		"token_type":    "Bearer",
		"expires_in":    relay.ExpiresIn(token, time.Now()),
		"refresh_token": token.RefreshToken,
	})
}
