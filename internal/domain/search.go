package domain

// Facet is a single categorical dimension with its own upstream path.
type Facet string

const (
	FacetCategory Facet = "category"
	FacetBrand    Facet = "brand"
)

// AdvancedQuery is the structured query sent to the search service.
type AdvancedQuery struct {
	Q        string
	Page     int
	PageSize int
	SortBy   string
}

// AutocompleteOption is one taxonomy suggestion.
type AutocompleteOption struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	TaxonomyName string `json:"taxonomyName"`
}

// AutocompleteResult lists taxonomy suggestions for a query.
type AutocompleteResult struct {
	Query    string               `json:"query"`
	Taxonomy string               `json:"taxonomy"`
	Lang     string               `json:"lang"`
	Options  []AutocompleteOption `json:"options"`
}
