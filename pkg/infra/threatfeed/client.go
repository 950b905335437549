package threatfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain/threat"
	"github.com/SentinelMesh/AccessGate/pkg/infra/httpx"
	"github.com/SentinelMesh/AccessGate/pkg/infra/prometheus"
	"github.com/valyala/fastjson"
)

const maxFeedBody = 16 << 20

// Client pulls indicator batches from an intelligence feed endpoint.
// Each source reference is a URL returning {"indicators": [...]}.
type Client struct {
	httpClient *http.Client
	breaker    httpx.CircuitBreaker
	parsers    fastjson.ParserPool
}

func NewClient(timeout time.Duration, breaker httpx.CircuitBreaker) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
	}
}

func (c *Client) FetchIndicators(ctx context.Context, sourceRef string) ([]threat.Indicator, error) {
	var body []byte
	err := c.breaker.Execute(func() error {
		var fetchErr error
		body, fetchErr = c.fetch(ctx, sourceRef)
		return fetchErr
	})
	if err != nil {
		prometheus.ThreatFeedErrors.Inc()
		return nil, err
	}

	indicators, err := c.parse(body)
	if err != nil {
		prometheus.ThreatFeedErrors.Inc()
		return nil, fmt.Errorf("failed to parse feed %s: %w", sourceRef, err)
	}
	return indicators, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}
	return body, nil
}

func (c *Client) parse(body []byte) ([]threat.Indicator, error) {
	parser := c.parsers.Get()
	defer c.parsers.Put(parser)

	root, err := parser.ParseBytes(body)
	if err != nil {
		return nil, err
	}

	items := root.GetArray("indicators")
	indicators := make([]threat.Indicator, 0, len(items))
	for _, item := range items {
		ind := threat.Indicator{
			Value:          string(item.GetStringBytes("value")),
			Type:           threat.IndicatorType(item.GetStringBytes("type")),
			Confidence:     item.GetFloat64("confidence"),
			Classification: threat.Classification(item.GetStringBytes("classification")),
			Description:    string(item.GetStringBytes("description")),
			Source:         string(item.GetStringBytes("source")),
		}
		if ind.Value == "" || ind.Type == "" {
			continue
		}
		ind.FirstSeen = parseTime(item.GetStringBytes("first_seen"))
		ind.LastSeen = parseTime(item.GetStringBytes("last_seen"))
		ind.ValidUntil = parseTime(item.GetStringBytes("valid_until"))
		indicators = append(indicators, ind)
	}
	return indicators, nil
}

func parseTime(raw []byte) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, string(raw))
	if err != nil {
		return time.Time{}
	}
	return t
}
