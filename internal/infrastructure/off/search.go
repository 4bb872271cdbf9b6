package off

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

// AdvancedSearch queries Search-a-licious with a structured query string.
// A reply carrying an "errors" payload is reported as unavailable so the
// caller can fall back to the legacy search.
func (c *Client) AdvancedSearch(ctx context.Context, q domain.AdvancedQuery) (*domain.SearchResultPage, error) {
	query := q.Q
	if query == "" {
		query = "*"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	reqURL := fmt.Sprintf("%s/search?%s", c.cfg.SearchBaseURL, params.Encode())

	var resp advancedSearchResponse
	if err := c.getJSON(ctx, serviceSearch, reqURL, &resp); err != nil {
		return nil, err
	}

	if hasPayload(resp.Errors) {
		c.logger.Warn().Str("q", query).RawJSON("errors", resp.Errors).Msg("search service rejected query")
		return nil, fmt.Errorf("%w: search service rejected query: %s", domain.ErrUpstreamUnavailable, snippet(resp.Errors))
	}
	if resp.Hits == nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstreamMalformed, serviceSearch, errNoHits)
	}

	page := q.Page
	if p := resp.Page.Int(); p > 0 {
		page = p
	}
	pageSize := q.PageSize
	if ps := resp.PageSize.Int(); ps > 0 {
		pageSize = ps
	}

	return domain.NewSearchResultPage(MapSummaries(resp.Hits), resp.Count.Int(), page, pageSize), nil
}

// Autocomplete suggests taxonomy entries for a prefix.
func (c *Client) Autocomplete(ctx context.Context, query, taxonomy, lang string, size int) (*domain.AutocompleteResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("taxonomy_names", taxonomy)
	params.Set("lang", lang)
	params.Set("size", strconv.Itoa(size))
	reqURL := fmt.Sprintf("%s/autocomplete?%s", c.cfg.SearchBaseURL, params.Encode())

	var resp autocompleteResponse
	if err := c.getJSON(ctx, serviceSearch, reqURL, &resp, "options"); err != nil {
		return nil, err
	}

	result := &domain.AutocompleteResult{
		Query:    query,
		Taxonomy: taxonomy,
		Lang:     lang,
		Options:  make([]domain.AutocompleteOption, 0, len(resp.Options)),
	}
	for _, o := range resp.Options {
		result.Options = append(result.Options, domain.AutocompleteOption{
			ID:           o.ID,
			Text:         o.Text,
			TaxonomyName: o.TaxonomyName,
		})
	}
	return result, nil
}
