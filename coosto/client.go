// Package coosto is a client for the social media analytics provider. It
// logs in once for a session id and flattens the query endpoints into
// tabular datasets.
package coosto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://in.coosto.com/api/1/"

// Client calls the analytics API. Every request carries the session id
// obtained at login.
type Client struct {
	baseURL   string
	http      *http.Client
	sessionID string
}

type loginResponse struct {
	Data struct {
		SessionID string `json:"sessionid"`
	} `json:"data"`
}

// NewClient logs in and returns a ready client.
func NewClient(ctx context.Context, baseURL, username, password string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		http:    &http.Client{},
	}

	params := url.Values{}
	params.Set("username", username)
	params.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"users/login?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building login request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login returned %s (check credentials)", resp.Status)
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	if login.Data.SessionID == "" {
		return nil, fmt.Errorf("login response carried no session id")
	}
	c.sessionID = login.Data.SessionID

	log.Info().Str("component", "coosto").Msg("connection to the API established")
	return c, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("sessionid", c.sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// queryParams builds the parameter set for the query endpoints, which all
// operate on one saved query id.
func queryParams(queryID int) url.Values {
	params := url.Values{}
	params.Set("qid", strconv.Itoa(queryID))
	return params
}

// SavedQueries fetches the saved query (project) list.
func (c *Client) SavedQueries(ctx context.Context) ([]SavedQuery, error) {
	var resp struct {
		Data []SavedQuery `json:"data"`
	}
	if err := c.get(ctx, "savedqueries/get_all/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// TrendingTopics fetches the trending topics of one saved query.
func (c *Client) TrendingTopics(ctx context.Context, queryID int) ([]TrendingTopic, error) {
	var resp struct {
		Data [][]TrendingTopic `json:"data"`
	}
	if err := c.get(ctx, "query/trending", queryParams(queryID), &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return resp.Data[0], nil
}

// SourceTypes fetches the per-source-type sentiment breakdown.
func (c *Client) SourceTypes(ctx context.Context, queryID int) ([]SourceType, error) {
	var resp struct {
		Data [][]SourceType `json:"data"`
	}
	if err := c.get(ctx, "query/sourcetypes", queryParams(queryID), &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return resp.Data[0], nil
}

// SentimentDays fetches the per-day sentiment series.
func (c *Client) SentimentDays(ctx context.Context, queryID int) ([]SentimentDay, error) {
	var resp struct {
		Data [][]SentimentDay `json:"data"`
	}
	if err := c.get(ctx, "query/days", queryParams(queryID), &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return resp.Data[0], nil
}

// Authors fetches the most active authors of one saved query.
func (c *Client) Authors(ctx context.Context, queryID int) ([]Author, error) {
	var resp struct {
		Data [][]Author `json:"data"`
	}
	if err := c.get(ctx, "query/authors", queryParams(queryID), &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return resp.Data[0], nil
}
