package off

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

// Prices reads the Open Prices /prices endpoint.
func (c *Client) Prices(ctx context.Context, q domain.PriceQuery) (*domain.PricePage, error) {
	if err := errBarcode(q.Barcode); err != nil {
		return nil, err
	}

	params := url.Values{}
	if q.Barcode != "" {
		params.Set("product_code", q.Barcode)
	}
	if q.Currency != "" {
		params.Set("currency", q.Currency)
	}
	if q.OrderBy != "" {
		params.Set("order_by", q.OrderBy)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.PageSize))
	reqURL := fmt.Sprintf("%s/prices?%s", c.cfg.PricesBaseURL, params.Encode())

	var resp pricesResponse
	if err := c.getJSON(ctx, servicePrices, reqURL, &resp, "items"); err != nil {
		return nil, err
	}

	prices := make([]domain.PriceRecord, 0, len(resp.Items))
	for i := range resp.Items {
		prices = append(prices, MapPrice(&resp.Items[i]))
	}

	count := resp.Total.Int()
	if count == 0 {
		count = len(prices)
	}

	return &domain.PricePage{
		Prices:   prices,
		Count:    count,
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}
