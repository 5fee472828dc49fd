package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// ErrInvalidIDToken is returned for every Google token verification failure.
var ErrInvalidIDToken = errors.New("invalid google token")

// GoogleVerifier validates Google-issued ID tokens through the tokeninfo
// endpoint, which performs the cryptographic checks (signature, issuer,
// expiry) server-side.
type GoogleVerifier struct {
	// ClientID is the audience the token must be issued for. Empty skips
	// the audience check.
	ClientID string

	TokenInfoURL string
	HTTPClient   *http.Client
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID:     clientID,
		TokenInfoURL: googleTokenInfoURL,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

type googleTokenInfo struct {
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
}

// VerifyIDToken returns the verified email claim of the ID token. Every
// failure wraps ErrInvalidIDToken with the underlying cause.
func (v *GoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidIDToken)
	}

	endpoint := v.TokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: tokeninfo returned %d", ErrInvalidIDToken, resp.StatusCode)
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	if info.Email == "" || info.EmailVerified != "true" {
		return "", fmt.Errorf("%w: email not verified", ErrInvalidIDToken)
	}
	if v.ClientID != "" && info.Aud != v.ClientID {
		return "", fmt.Errorf("%w: audience mismatch", ErrInvalidIDToken)
	}

	return info.Email, nil
}
