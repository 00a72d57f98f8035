// Package steam fetches game metadata from the Steam storefront API.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/DomDom3333/GameFinder/internal/gamedata"
)

const multiplayerCategoryID = 1

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// Client talks to the storefront appdetails and appreviews endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a storefront client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type appDetailsEnvelope struct {
	Success bool               `json:"success"`
	Data    *gamedata.GameData `json:"data"`
}

type appReviewsResponse struct {
	QuerySummary *gamedata.ReviewSummary `json:"query_summary"`
}

// Fetch resolves one app id into a validated record. Ids that are not
// multiplayer games resolve as gamedata.ErrNotAvailable rather than an error;
// transport and decode failures are returned as errors for the caller to
// recover from.
func (c *Client) Fetch(ctx context.Context, id string) (*gamedata.GameData, error) {
	body, err := c.getJSON(ctx, fmt.Sprintf("%s/api/appdetails?appids=%s", c.baseURL, id))
	if err != nil {
		return nil, err
	}

	var envelopes map[string]appDetailsEnvelope
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, fmt.Errorf("malformed appdetails payload for %s: %w", id, err)
	}

	envelope, ok := envelopes[id]
	if !ok || !envelope.Success || envelope.Data == nil {
		return nil, gamedata.ErrNotAvailable
	}

	data := envelope.Data
	if data.Type != "game" || !data.HasCategory(multiplayerCategoryID) {
		return nil, gamedata.ErrNotAvailable
	}
	data.SupportedLanguages = stripHTML(data.SupportedLanguages)

	reviewBody, err := c.getJSON(ctx, fmt.Sprintf("%s/appreviews/%s?json=1", c.baseURL, id))
	if err != nil {
		return nil, err
	}
	var reviews appReviewsResponse
	if err := json.Unmarshal(reviewBody, &reviews); err != nil {
		return nil, fmt.Errorf("malformed appreviews payload for %s: %w", id, err)
	}
	data.ReviewSummary = reviews.QuerySummary

	return data, nil
}

func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func stripHTML(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}
