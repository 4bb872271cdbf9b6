package off

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"github.com/openfoodfacts-mcp/backend/internal/metrics"
	"github.com/rs/zerolog"
)

// Upstream service names used in logs and metrics
const (
	serviceProduct  = "product"
	serviceSearch   = "search"
	servicePrices   = "prices"
	serviceRobotoff = "robotoff"
)

const (
	maxResponseBytes = 16 << 20
	maxDetailBytes   = 256
)

// productFields is the field selection sent with every product lookup.
var productFields = []string{
	"_id", "code", "product_name", "brands", "image_url", "image_front_url",
	"ingredients_text", "allergens", "allergens_tags", "allergens_hierarchy",
	"traces_tags", "additives_tags", "additives_original_tags",
	"nutriscore_grade", "nutrition_grades", "nutriscore_score",
	"ecoscore_grade", "ecoscore_score", "nova_group",
	"categories", "countries", "labels", "packaging", "origins", "nutriments",
}

// Config holds the upstream endpoints and transport settings.
type Config struct {
	ProductBaseURL  string
	SearchBaseURL   string
	PricesBaseURL   string
	RobotoffBaseURL string
	UserAgent       string
	Timeout         time.Duration
}

// Client talks to the four Open Food Facts services: the product database,
// Search-a-licious, Open Prices and Robotoff. It never retries.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zerolog.Logger
	metrics    *metrics.Registry
}

// NewClient creates a new upstream client. A nil metrics registry is allowed.
func NewClient(cfg Config, logger *zerolog.Logger, m *metrics.Registry) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "OpenFoodFacts-MCP/1.0.1"
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	cfg.ProductBaseURL = strings.TrimRight(cfg.ProductBaseURL, "/")
	cfg.SearchBaseURL = strings.TrimRight(cfg.SearchBaseURL, "/")
	cfg.PricesBaseURL = strings.TrimRight(cfg.PricesBaseURL, "/")
	cfg.RobotoffBaseURL = strings.TrimRight(cfg.RobotoffBaseURL, "/")

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// doRequest executes an HTTP GET with the client's headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// getJSON issues one GET and decodes the body into out. Every key in
// requiredKeys must be present at the top level of the reply.
func (c *Client) getJSON(ctx context.Context, service, reqURL string, out any, requiredKeys ...string) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		c.metrics.RecordUpstream(service, outcome, time.Since(start))
	}()

	c.logger.Debug().Str("service", service).Str("url", reqURL).Msg("upstream request")

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		outcome = "transport_error"
		c.logger.Warn().Err(err).Str("service", service).Msg("upstream request failed")
		return fmt.Errorf("%w: %s request failed: %v", domain.ErrUpstreamUnavailable, service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		outcome = "transport_error"
		return fmt.Errorf("%w: %s: failed to read response: %v", domain.ErrUpstreamUnavailable, service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "status_" + strconv.Itoa(resp.StatusCode)
		c.logger.Warn().
			Str("service", service).
			Int("status", resp.StatusCode).
			Dur("latency", time.Since(start)).
			Msg("upstream returned non-success status")
		return &domain.UpstreamError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Detail:     snippet(body),
			Err:        domain.ErrUpstreamUnavailable,
		}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		outcome = "malformed"
		return fmt.Errorf("%w: %s: failed to decode response: %v", domain.ErrUpstreamMalformed, service, err)
	}
	for _, key := range requiredKeys {
		if _, ok := top[key]; !ok {
			outcome = "malformed"
			return fmt.Errorf("%w: %s: response has no %q field", domain.ErrUpstreamMalformed, service, key)
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		outcome = "malformed"
		return fmt.Errorf("%w: %s: failed to decode response: %v", domain.ErrUpstreamMalformed, service, err)
	}

	c.logger.Debug().
		Str("service", service).
		Dur("latency", time.Since(start)).
		Msg("upstream request completed")
	return nil
}

// GetProduct fetches one product by barcode from the v2 product API.
func (c *Client) GetProduct(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	barcode = strings.TrimSpace(barcode)
	if err := domain.ValidateBarcode(barcode); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("fields", strings.Join(productFields, ","))
	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json?%s", c.cfg.ProductBaseURL, barcode, params.Encode())

	var env productEnvelope
	if err := c.getJSON(ctx, serviceProduct, reqURL, &env, "status"); err != nil {
		if domain.StatusCodeOf(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: product with barcode %s", domain.ErrNotFound, barcode)
		}
		return nil, err
	}

	if env.Status.Int() != 1 || env.Product == nil {
		c.logger.Debug().Str("barcode", barcode).Str("status", env.StatusVerbose).Msg("product not found")
		return nil, fmt.Errorf("%w: product with barcode %s", domain.ErrNotFound, barcode)
	}

	return MapProduct(env.Product, barcode), nil
}

// SearchText runs the legacy full-text search.
func (c *Client) SearchText(ctx context.Context, query string, page, pageSize int) (*domain.SearchResultPage, error) {
	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("json", "1")
	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.cfg.ProductBaseURL, params.Encode())

	var resp searchResponse
	if err := c.getJSON(ctx, serviceProduct, reqURL, &resp, "products"); err != nil {
		return nil, err
	}

	return domain.NewSearchResultPage(MapSummaries(resp.Products), resp.Count.Int(), page, pageSize), nil
}

// SearchFacet lists the products of one category or brand. The slug is
// used as-is in the path.
func (c *Client) SearchFacet(ctx context.Context, facet domain.Facet, slug string, page, pageSize int) (*domain.SearchResultPage, error) {
	if facet != domain.FacetCategory && facet != domain.FacetBrand {
		return nil, domain.NewInvalidArgument("unsupported facet %q", facet)
	}

	params := url.Values{}
	params.Set("page_size", strconv.Itoa(pageSize))
	reqURL := fmt.Sprintf("%s/%s/%s/%d.json?%s", c.cfg.ProductBaseURL, facet, url.PathEscape(slug), page, params.Encode())

	var resp searchResponse
	if err := c.getJSON(ctx, serviceProduct, reqURL, &resp, "products"); err != nil {
		return nil, err
	}

	return domain.NewSearchResultPage(MapSummaries(resp.Products), resp.Count.Int(), page, pageSize), nil
}

// snippet trims an error body for logs and messages.
func snippet(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) > maxDetailBytes {
		body = body[:maxDetailBytes]
	}
	return string(body)
}

// hasPayload reports whether a raw JSON value carries anything beyond
// null or an empty container.
func hasPayload(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return false
	}
	switch string(v) {
	case "null", "[]", "{}", `""`:
		return false
	}
	return true
}

// errBarcode validates an optional barcode filter.
func errBarcode(barcode string) error {
	if barcode == "" {
		return nil
	}
	return domain.ValidateBarcode(barcode)
}

var _ domain.UpstreamClient = (*Client)(nil)

var errNoHits = errors.New("response has no \"hits\" field")
