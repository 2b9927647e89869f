package workdrive

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// defaultTokenURL is the Zoho accounts OAuth2 token endpoint.
const defaultTokenURL = "https://accounts.zoho.com/oauth/v2/token"

// tokenProvider exchanges a long-lived refresh token for access tokens and
// caches the current one. Invalidate discards the cache so the next Token
// call performs a fresh refresh-token grant; the client uses this to
// recover from a 401 exactly once per request.
type tokenProvider struct {
	cfg          *oauth2.Config
	refreshToken string

	mu  sync.Mutex
	src oauth2.TokenSource
}

func newTokenProvider(cfg Config) *tokenProvider {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	return &tokenProvider{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: cfg.RefreshToken,
	}
}

// Token returns a valid access token, performing the refresh-token grant
// when no cached token is available. Safe for concurrent use.
func (p *tokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.src == nil {
		p.src = p.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: p.refreshToken})
	}

	tok, err := p.src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token; %w", err)
	}
	return tok.AccessToken, nil
}

// Invalidate discards the cached token source. The next Token call performs
// a fresh grant even if the previous token had not reached its expiry.
func (p *tokenProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src = nil
}
