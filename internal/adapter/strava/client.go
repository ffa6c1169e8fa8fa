package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
)

const (
	defaultAuthURL = "https://www.strava.com/oauth/authorize"
	defaultAPIURL  = "https://www.strava.com"

	oauthScopes = "read,profile:read_all,activity:read_all"
)

// Client is the Strava REST client behind ports.StravaPort. The token
// endpoint is called directly because Strava reports an absolute
// expires_at instant and the token lifecycle manager owns persistence
// of every refresh result.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	baseURL      string
	hc           *http.Client
}

func NewClient(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		baseURL:      defaultAPIURL,
		hc:           &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL overrides the API host, for tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Configured reports whether OAuth credentials are present.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

func (c *Client) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.redirectURI)
	q.Set("approval_prompt", "force")
	q.Set("scope", oauthScopes)
	if state != "" {
		q.Set("state", state)
	}
	return defaultAuthURL + "?" + q.Encode()
}

// tokenResponse is the shape of both token-endpoint grants.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	Athlete      *struct {
		ID int64 `json:"id"`
	} `json:"athlete"`
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.StravaToken, error) {
	return c.tokenGrant(ctx, map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"code":          code,
		"grant_type":    "authorization_code",
	})
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*domain.StravaToken, error) {
	return c.tokenGrant(ctx, map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"refresh_token": refreshToken,
		"grant_type":    "refresh_token",
	})
}

func (c *Client) tokenGrant(ctx context.Context, payload map[string]string) (*domain.StravaToken, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("token grant: %w", domain.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token grant failed: %s", resp.Status)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	token := &domain.StravaToken{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    tr.ExpiresAt,
	}
	if tr.Athlete != nil {
		token.AthleteID = tr.Athlete.ID
	}
	return token, nil
}

func (c *Client) GetAthlete(ctx context.Context, accessToken string) (*domain.Athlete, error) {
	athlete := &domain.Athlete{}
	if err := c.get(ctx, accessToken, "/api/v3/athlete", athlete); err != nil {
		return nil, err
	}
	return athlete, nil
}

func (c *Client) GetGear(ctx context.Context, accessToken, gearID string) (*domain.Gear, error) {
	gear := &domain.Gear{}
	if err := c.get(ctx, accessToken, "/api/v3/gear/"+url.PathEscape(gearID), gear); err != nil {
		return nil, err
	}
	return gear, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("GET %s: %w", path, domain.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s failed: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
