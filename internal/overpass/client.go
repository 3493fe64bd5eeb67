package overpass

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/models"
	"github.com/voltpath/stationfinder/pkg/http/client"
)

const formContentType = "application/x-www-form-urlencoded"

// maxErrorBody bounds how much of a failed response ends up in errors and logs
const maxErrorBody = 512

// ElementSource returns the raw points of interest matching a query
type ElementSource interface {
	Fetch(ctx context.Context, query string) ([]models.Element, error)
}

// Client posts queries to an Overpass interpreter endpoint
type Client struct {
	httpClient client.Interface
	endpoint   string
}

var _ ElementSource = (*Client)(nil)

func NewClient(httpClient client.Interface, endpoint string) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
	}
}

type response struct {
	Elements []models.Element `json:"elements"`
}

// Fetch performs exactly one round trip. Failures are *TransportError or
// *DecodeError and are never retried.
func (c *Client) Fetch(ctx context.Context, query string) ([]models.Element, error) {
	resp, err := c.httpClient.Post(ctx, c.endpoint, formContentType, query)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if !resp.OK() {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: snippet(resp.Body)}
	}

	var decoded response
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if decoded.Elements == nil {
		decoded.Elements = []models.Element{}
	}

	log.Debug().Int("element_count", len(decoded.Elements)).Msg("Fetched elements from Overpass")
	return decoded.Elements, nil
}

// snippet trims body to at most maxErrorBody bytes on a rune boundary
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxErrorBody {
		return strings.ToValidUTF8(s, "")
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.ToValidUTF8(s[:cut], "")
}
