// Package identity wraps the external identity provider. The gateway
// only ever needs it for one thing: minting an access token that
// authorizes the self-serve billing portal link.
package identity

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type Client struct {
	cfg       clientcredentials.Config
	portalURL string

	// Token source is built on first use so a misconfigured provider
	// only bites when billing is actually opened.
	once   sync.Once
	source oauth2.TokenSource
}

func New(tokenURL, clientID, clientSecret, audience, portalURL string) *Client {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	if audience != "" {
		cfg.EndpointParams = url.Values{"audience": {audience}}
	}
	return &Client{cfg: cfg, portalURL: portalURL}
}

// Configured reports whether the provider credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.ClientID != "" && c.cfg.TokenURL != "" && c.portalURL != ""
}

// BillingPortalURL fetches an access token from the provider and
// returns the portal link carrying it.
func (c *Client) BillingPortalURL(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("identity provider is not configured")
	}

	c.once.Do(func() {
		c.source = c.cfg.TokenSource(context.Background())
	})

	token, err := c.source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to fetch identity token: %w", err)
	}

	portal, err := url.Parse(c.portalURL)
	if err != nil {
		return "", fmt.Errorf("invalid billing portal URL: %w", err)
	}
	q := portal.Query()
	q.Set("token", token.AccessToken)
	portal.RawQuery = q.Encode()
	return portal.String(), nil
}
