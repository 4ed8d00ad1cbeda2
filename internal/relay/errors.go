package relay

import "errors"

var (
	// ErrInvalidRedirect means the caller's redirect_uri does not match the
	// configured value.
	ErrInvalidRedirect = errors.New("invalid redirect_uri")
	// ErrInvalidCallback means the upstream callback was missing its code or
	// state, or no caller callback is configured.
	ErrInvalidCallback = errors.New("invalid callback request")
	// ErrUnsupportedGrantType means the token request asked for anything
	// other than authorization_code.
	ErrUnsupportedGrantType = errors.New("unsupported grant type")
	// ErrInvalidClient means supplied client credentials do not match the
	// configured Google client.
	ErrInvalidClient = errors.New("invalid client credentials")
	// ErrUpstreamExchangeFailed wraps a failed code exchange with Google.
	ErrUpstreamExchangeFailed = errors.New("upstream token exchange failed")
	// ErrReauthorizationRequired means a stored token is expired and no
	// refresh token is available.
	ErrReauthorizationRequired = errors.New("reauthorization required")
)
