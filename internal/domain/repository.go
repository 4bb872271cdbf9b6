package domain

import "context"

// ProductCatalog reads the main Open Food Facts product database.
type ProductCatalog interface {
	GetProduct(ctx context.Context, barcode string) (*ProductRecord, error)
	SearchText(ctx context.Context, query string, page, pageSize int) (*SearchResultPage, error)
	SearchFacet(ctx context.Context, facet Facet, slug string, page, pageSize int) (*SearchResultPage, error)
}

// SearchEngine is the Search-a-licious service.
type SearchEngine interface {
	AdvancedSearch(ctx context.Context, q AdvancedQuery) (*SearchResultPage, error)
	Autocomplete(ctx context.Context, query, taxonomy, lang string, size int) (*AutocompleteResult, error)
}

// PriceSource is the Open Prices service.
type PriceSource interface {
	Prices(ctx context.Context, q PriceQuery) (*PricePage, error)
}

// InsightSource is the Robotoff service.
type InsightSource interface {
	Questions(ctx context.Context, q QuestionQuery) (*QuestionsResult, error)
	Insights(ctx context.Context, q InsightQuery) (*InsightsResult, error)
}

// UpstreamClient bundles every upstream service.
type UpstreamClient interface {
	ProductCatalog
	SearchEngine
	PriceSource
	InsightSource
}
