package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"github.com/rs/zerolog"
)

// Resolver turns a product name or barcode into a product record.
type Resolver struct {
	catalog domain.ProductCatalog
	logger  *zerolog.Logger
}

// NewResolver creates a resolver over the product catalog.
func NewResolver(catalog domain.ProductCatalog, logger *zerolog.Logger) *Resolver {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Resolver{catalog: catalog, logger: logger}
}

// Resolve looks an identifier up. All-digit identifiers are fetched
// directly first; anything else, or a failed direct fetch, goes through a
// one-result text search.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*domain.ProductRecord, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return nil, &userError{
			err:     domain.NewInvalidArgument("empty product identifier"),
			message: "Please provide a product name or barcode.",
			hint:    "You can use the searchProducts tool first to find products and get their barcodes.",
		}
	}

	directFailed := false
	if domain.IsNumeric(id) {
		product, err := r.catalog.GetProduct(ctx, id)
		if err == nil {
			return product, nil
		}
		directFailed = true
		r.logger.Debug().Err(err).Str("identifier", id).Msg("direct lookup failed, searching by name")
	}

	page, err := r.catalog.SearchText(ctx, id, 1, 1)
	if err != nil {
		// Both paths failed: report the identifier as unknown.
		if directFailed {
			r.logger.Warn().Err(err).Str("identifier", id).Msg("search fallback failed")
			return nil, productNotFound(id)
		}
		return nil, err
	}
	if len(page.Products) == 0 || page.Products[0].Barcode == "" {
		return nil, productNotFound(id)
	}

	product, err := r.catalog.GetProduct(ctx, page.Products[0].Barcode)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, productNotFound(id)
		}
		return nil, err
	}
	return product, nil
}

func productNotFound(identifier string) error {
	return &userError{
		err:     fmt.Errorf("%w: product %q", domain.ErrNotFound, identifier),
		message: fmt.Sprintf("Product %q not found in the Open Food Facts database.", identifier),
		hint: fmt.Sprintf("Please try using the searchProducts tool first to find products matching your query, "+
			"then use their barcode for analysis.\n\nExample: First search with searchProducts({ \"query\": %q }) "+
			"to find matching products...", identifier),
	}
}
