package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

const newestFirst = "-date"

// ProductPricesArgs are the arguments of getProductPrices.
type ProductPricesArgs struct {
	Barcode  string `json:"barcode" jsonschema:"required,description=Product barcode to get prices for" validate:"required"`
	Page     int    `json:"page" jsonschema:"description=Page number,minimum=1,default=1" validate:"min=1"`
	PageSize int    `json:"pageSize" jsonschema:"description=Number of prices per page,minimum=1,maximum=100,default=20" validate:"min=1,max=100"`
}

// SearchPricesArgs are the filters of searchPrices.
type SearchPricesArgs struct {
	Barcode  string `json:"barcode,omitempty" jsonschema:"description=Filter by product barcode"`
	Currency string `json:"currency,omitempty" jsonschema:"description=Filter by currency (e.g. EUR)"`
	OrderBy  string `json:"orderBy" jsonschema:"description=Order by field (-date for newest first),default=-date"`
	Page     int    `json:"page" jsonschema:"description=Page number,minimum=1,default=1" validate:"min=1"`
	PageSize int    `json:"pageSize" jsonschema:"description=Number of prices per page,minimum=1,maximum=100,default=20" validate:"min=1,max=100"`
}

// PageArgs carries pagination only.
type PageArgs struct {
	Page     int `json:"page" jsonschema:"description=Page number,minimum=1,default=1" validate:"min=1"`
	PageSize int `json:"pageSize" jsonschema:"description=Number of prices per page,minimum=1,maximum=100,default=20" validate:"min=1,max=100"`
}

// GetProductPrices lists crowd-sourced prices for one product, newest first.
func (s *Service) GetProductPrices(ctx context.Context, args *ProductPricesArgs) (*Result, error) {
	barcode := strings.TrimSpace(args.Barcode)
	page, err := s.client.Prices(ctx, domain.PriceQuery{
		Barcode:  barcode,
		OrderBy:  newestFirst,
		Page:     args.Page,
		PageSize: args.PageSize,
	})
	if err != nil {
		return nil, err
	}

	if len(page.Prices) == 0 {
		return noResults(fmt.Sprintf("No price data available for product %s. "+
			"Price data is crowd-sourced and may not be available for all products.", barcode)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d price records for product %s:\n\n", page.Count, barcode)
	for i, p := range page.Prices {
		fmt.Fprintf(&b, "%d. %s %s at %s\n", i+1, formatPrice(p.Price), p.Currency, p.LocationName)
		fmt.Fprintf(&b, "   Date: %s\n\n", p.Date)
	}
	b.WriteString("Raw data:")

	return &Result{Text: b.String(), Data: page}, nil
}

// SearchPrices lists prices matching optional filters.
func (s *Service) SearchPrices(ctx context.Context, args *SearchPricesArgs) (*Result, error) {
	page, err := s.client.Prices(ctx, domain.PriceQuery{
		Barcode:  strings.TrimSpace(args.Barcode),
		Currency: strings.TrimSpace(args.Currency),
		OrderBy:  strings.TrimSpace(args.OrderBy),
		Page:     args.Page,
		PageSize: args.PageSize,
	})
	if err != nil {
		return nil, err
	}

	if len(page.Prices) == 0 {
		return noResults("No price data found matching your criteria."), nil
	}
	return textResult(formatPriceList(fmt.Sprintf("Found %d price records:\n\n", page.Count), page.Prices)), nil
}

// GetRecentPrices lists the newest price contributions.
func (s *Service) GetRecentPrices(ctx context.Context, args *PageArgs) (*Result, error) {
	page, err := s.client.Prices(ctx, domain.PriceQuery{
		OrderBy:  newestFirst,
		Page:     args.Page,
		PageSize: args.PageSize,
	})
	if err != nil {
		return nil, err
	}

	if len(page.Prices) == 0 {
		return noResults("No price data found matching your criteria."), nil
	}
	return textResult(formatPriceList(fmt.Sprintf("Recent price contributions (%d total):\n\n", page.Count), page.Prices)), nil
}

func formatPriceList(header string, prices []domain.PriceRecord) string {
	var b strings.Builder
	b.WriteString(header)
	for i, p := range prices {
		fmt.Fprintf(&b, "%d. [%s] %s %s\n", i+1, p.ProductCode, formatPrice(p.Price), p.Currency)
		fmt.Fprintf(&b, "   Location: %s\n", p.LocationName)
		fmt.Fprintf(&b, "   Date: %s\n\n", p.Date)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatPrice prints the shortest representation, e.g. 3.49 or 2.
func formatPrice(v float64) string {
	return fmt.Sprintf("%g", v)
}
