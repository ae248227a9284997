package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const userURL = "https://discord.com/api/v10/users/@me"

// Endpoint is Discord's OAuth2 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// Identity is the external identity tied to a login attempt.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// IdentityProvider abstracts the OAuth2 provider so the auth service can be
// tested without network access.
type IdentityProvider interface {
	AuthorizeURL(redirectURL string) string
	Exchange(ctx context.Context, code, redirectURL string) (*Identity, error)
}

type OAuthProvider struct {
	clientID     string
	clientSecret string
	client       *http.Client
}

func NewOAuthProvider(clientID, clientSecret string) *OAuthProvider {
	return &OAuthProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *OAuthProvider) config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Scopes:       []string{"identify"},
		RedirectURL:  redirectURL,
		Endpoint:     Endpoint,
	}
}

func (p *OAuthProvider) AuthorizeURL(redirectURL string) string {
	return p.config(redirectURL).AuthCodeURL("")
}

func (p *OAuthProvider) Exchange(ctx context.Context, code, redirectURL string) (*Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	tok, err := p.config(redirectURL).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth2 exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userURL, nil)
	if err != nil {
		return nil, err
	}
	tok.SetAuthHeader(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch identity: unexpected status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &id, nil
}
