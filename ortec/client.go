// Package ortec is a client for the sports statistics provider. It
// authenticates with a session token and flattens the statistics feed into
// tabular datasets for the export package.
package ortec

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://sports.ortec-hosting.com/EIADataFeedApi/"

// Client calls the statistics feed API. Every request carries the session
// token obtained at construction.
type Client struct {
	baseURL string
	http    *http.Client
	auth    string
}

// NewClient authenticates against the token endpoint and returns a ready
// client. The token response body is the token wrapped in quotes.
func NewClient(ctx context.Context, baseURL, username, password string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		http:    &http.Client{},
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"api/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request returned %s", resp.Status)
	}

	token := strings.Trim(strings.TrimSpace(string(body)), `"`)
	if token == "" {
		return nil, fmt.Errorf("token response was empty")
	}
	c.auth = "Session " + token

	log.Info().Str("component", "ortec").Msg("connection to the API established")
	return c, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", c.auth)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", path, resp.Status)
	}
	if err := decodeJSON(resp.Body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// MatchStatistics fetches the full statistics block for one match.
func (c *Client) MatchStatistics(ctx context.Context, matchID int) (*MatchStatistics, error) {
	var ms MatchStatistics
	if err := c.get(ctx, fmt.Sprintf("api/Registration/%d/Statistics", matchID), &ms); err != nil {
		return nil, err
	}
	return &ms, nil
}

// Persons fetches the current selection of one team.
func (c *Client) Persons(ctx context.Context, teamID int) ([]Person, error) {
	var persons []Person
	if err := c.get(ctx, fmt.Sprintf("api/selections/persons/%d", teamID), &persons); err != nil {
		return nil, err
	}
	return persons, nil
}

// Teams fetches all selections. The response shape varies with the
// provider's season configuration, so rows stay generic.
func (c *Client) Teams(ctx context.Context) ([]map[string]any, error) {
	var teams []map[string]any
	if err := c.get(ctx, "api/selections/all/", &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Metadata fetches one of the metadata catalogs: TeamStatistics,
// PlayerStatistics, positions or Venues.
func (c *Client) Metadata(ctx context.Context, kind string) ([]map[string]any, error) {
	var meta []map[string]any
	if err := c.get(ctx, "api/metadata/"+kind+"/", &meta); err != nil {
		return nil, err
	}
	return meta, nil
}
