package rate

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Feed pulls the latest quoted rates from wherever they live.
type Feed interface {
	Fetch(ctx context.Context) ([]ExchangeRate, error)
}

// bcvResponse is the raw BCV feed document. Rates arrive as
// decimal-comma strings, the date as dd/mm/yy.
type bcvResponse struct {
	URL   string `json:"url"`
	Euro  string `json:"euro"`
	Dolar string `json:"dolar"`
	Fecha string `json:"fecha"`
}

type Client struct {
	client *http.Client
	url    string
	logger *slog.Logger
}

func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		client: &http.Client{Timeout: timeout},
		url:    url,
		logger: logger,
	}
}

func (c *Client) Fetch(ctx context.Context) ([]ExchangeRate, error) {
	c.logger.InfoContext(ctx, "Fetching rates", "url", c.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating rate feed request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling rate feed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading rate feed response")
	}

	if resp.StatusCode >= 400 {
		return nil, errors.Errorf("rate feed responded %s", resp.Status)
	}

	var feed bcvResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, errors.Wrap(err, "decoding rate feed response")
	}

	return feed.rates()
}

func (r bcvResponse) rates() ([]ExchangeRate, error) {
	dolar, err := parseDecimalComma(r.Dolar)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing dolar rate %q", r.Dolar)
	}

	euro, err := parseDecimalComma(r.Euro)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing euro rate %q", r.Euro)
	}

	return []ExchangeRate{
		{Source: SourceOfficial, Name: "USD", Average: dolar},
		{Source: SourceOfficial, Name: "EURO", Average: euro},
	}, nil
}

func parseDecimalComma(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}

// StaticFeed serves fixed rates when no feed URL is configured. Matches the
// development fixture the screen was built against.
type StaticFeed struct {
	Dolar float64
	Euro  float64
}

func NewStaticFeed() *StaticFeed {
	return &StaticFeed{Dolar: 139.4016, Euro: 162.5325}
}

func (f *StaticFeed) Fetch(ctx context.Context) ([]ExchangeRate, error) {
	return []ExchangeRate{
		{Source: SourceOfficial, Name: "USD", Average: f.Dolar},
		{Source: SourceOfficial, Name: "EURO", Average: f.Euro},
	}, nil
}
