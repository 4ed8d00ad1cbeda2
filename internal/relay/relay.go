// Package relay brokers the OAuth2 authorization-code handshake between an
// external agent and Google. The agent supplies its own redirect_uri and
// state; the relay validates both, forwards the user to Google's consent
// screen, and later exchanges the returned code for bearer tokens.
package relay

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes is the fixed scope set requested from Google. Forms creation needs
// the forms scope, listing needs drive metadata, and the quota gate resolves
// the acting user through the email scope.
var Scopes = []string{
	"https://www.googleapis.com/auth/forms",
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/drive.metadata.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
}

// GrantAuthorizationCode is the only grant type the token endpoint accepts.
const GrantAuthorizationCode = "authorization_code"

type Config struct {
	ClientID     string
	ClientSecret string
	// ExpectedRedirectURI is the caller's registered redirect_uri; begin and
	// exchange both reject any other value.
	ExpectedRedirectURI string
	// CallerCallbackURL is where /oauth/callback re-dispatches code and
	// state. Empty disables the callback endpoint.
	CallerCallbackURL string
}

// Relay performs the authorization-code handshake. It holds no credentialed
// client state; an oauth2.Config is built per operation so concurrent
// requests never share mutable credentials.
type Relay struct {
	cfg      Config
	endpoint oauth2.Endpoint
}

func New(cfg Config) *Relay {
	return &Relay{cfg: cfg, endpoint: google.Endpoint}
}

func (r *Relay) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     r.cfg.ClientID,
		ClientSecret: r.cfg.ClientSecret,
		Endpoint:     r.endpoint,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
	}
}

// AuthCodeURL validates the caller's redirect_uri and returns the Google
// authorization URL carrying the caller's state verbatim. Offline access and
// forced re-consent guarantee a refresh token on every authorization.
func (r *Relay) AuthCodeURL(redirectURI, state string) (string, error) {
	if redirectURI != r.cfg.ExpectedRedirectURI {
		return "", ErrInvalidRedirect
	}
	cfg := r.oauthConfig(redirectURI)
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// CallbackRedirectURL builds the URL that re-dispatches an upstream code and
// state back to the caller's own callback endpoint.
func (r *Relay) CallbackRedirectURL(code, state string) (string, error) {
	if code == "" || state == "" {
		return "", ErrInvalidCallback
	}
	if r.cfg.CallerCallbackURL == "" {
		return "", ErrInvalidCallback
	}
	u, err := url.Parse(r.cfg.CallerCallbackURL)
	if err != nil {
		return "", fmt.Errorf("%w: bad caller callback url", ErrInvalidCallback)
	}
	q := u.Query()
	q.Set("code", code)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ValidateTokenRequest checks the grant type and, when the caller echoes
// client credentials, that they match the configured Google client. It runs
// before any upstream call.
func (r *Relay) ValidateTokenRequest(grantType, clientID, clientSecret string) error {
	if grantType != GrantAuthorizationCode {
		return ErrUnsupportedGrantType
	}
	if clientID != "" && clientID != r.cfg.ClientID {
		return ErrInvalidClient
	}
	if clientSecret != "" && clientSecret != r.cfg.ClientSecret {
		return ErrInvalidClient
	}
	return nil
}

// Exchange trades an authorization code for tokens using the caller's
// redirect_uri.
func (r *Relay) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	if redirectURI != r.cfg.ExpectedRedirectURI {
		return nil, ErrInvalidRedirect
	}
	cfg := r.oauthConfig(redirectURI)
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamExchangeFailed, err)
	}
	return token, nil
}

// Refresh obtains a fresh access token from a refresh token.
func (r *Relay) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, ErrReauthorizationRequired
	}
	cfg := r.oauthConfig(r.cfg.ExpectedRedirectURI)
	src := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamExchangeFailed, err)
	}
	return token, nil
}

// ExpiresIn converts a token expiry into the expires_in seconds of a bearer
// token response. Google's libraries default to one hour when the upstream
// response omits the expiry.
func ExpiresIn(t *oauth2.Token, now time.Time) int64 {
	if t.Expiry.IsZero() {
		return 3600
	}
	secs := int64(t.Expiry.Sub(now) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}
