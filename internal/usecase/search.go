package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var whitespaceRunRegex = regexp.MustCompile(`\s+`)

// SearchProductsArgs are the arguments of searchProducts.
type SearchProductsArgs struct {
	Query    string `json:"query" jsonschema:"required,description=Product name or barcode to search for" validate:"required"`
	Page     int    `json:"page" jsonschema:"description=Page number,minimum=1,default=1" validate:"min=1"`
	PageSize int    `json:"pageSize" jsonschema:"description=Number of results per page,minimum=1,maximum=100,default=10" validate:"min=1,max=100"`
}

// BarcodeArgs carries a single required barcode.
type BarcodeArgs struct {
	Barcode string `json:"barcode" jsonschema:"required,description=Product barcode (EAN-13 or UPC)" validate:"required"`
}

// CategoryArgs are the arguments of searchByCategory.
type CategoryArgs struct {
	Category string `json:"category" jsonschema:"required,description=Food category such as beverages or snacks or dairy" validate:"required"`
	Page     int    `json:"page" jsonschema:"description=Page number,minimum=1,default=1" validate:"min=1"`
	PageSize int    `json:"pageSize" jsonschema:"description=Number of results per page,minimum=1,maximum=100,default=10" validate:"min=1,max=100"`
}

// BrandArgs are the arguments of searchByBrand.
type BrandArgs struct {
	Brand    string `json:"brand" jsonschema:"required,description=Brand name to search for" validate:"required"`
	Page     int    `json:"page" jsonschema:"description=Page number,minimum=1,default=1" validate:"min=1"`
	PageSize int    `json:"pageSize" jsonschema:"description=Number of results per page,minimum=1,maximum=100,default=10" validate:"min=1,max=100"`
}

// AdvancedSearchArgs are the filters of advancedSearch. Empty filters are
// not sent.
type AdvancedSearchArgs struct {
	Query           string `json:"query,omitempty" jsonschema:"description=Search query (product name or ingredients)"`
	Category        string `json:"category,omitempty" jsonschema:"description=Filter by category"`
	Brand           string `json:"brand,omitempty" jsonschema:"description=Filter by brand"`
	NutriscoreGrade string `json:"nutriscoreGrade,omitempty" jsonschema:"description=Filter by Nutri-Score grade,enum=a,enum=b,enum=c,enum=d,enum=e" validate:"omitempty,oneof=a b c d e"`
	EcoscoreGrade   string `json:"ecoscoreGrade,omitempty" jsonschema:"description=Filter by Eco-Score grade,enum=a,enum=b,enum=c,enum=d,enum=e" validate:"omitempty,oneof=a b c d e"`
	NovaGroup       string `json:"novaGroup,omitempty" jsonschema:"description=Filter by NOVA group (food processing level),enum=1,enum=2,enum=3,enum=4" validate:"omitempty,oneof=1 2 3 4"`
	AllergenFree    string `json:"allergenFree,omitempty" jsonschema:"description=Exclude products containing this allergen (e.g. gluten)"`
	Labels          string `json:"labels,omitempty" jsonschema:"description=Filter by label (e.g. organic)"`
	Countries       string `json:"countries,omitempty" jsonschema:"description=Filter by country (e.g. france)"`
	SortBy          string `json:"sortBy,omitempty" jsonschema:"description=Sort order,enum=popularity,enum=nutriscore_score,enum=ecoscore_score,enum=created_t,enum=last_modified_t" validate:"omitempty,oneof=popularity nutriscore_score ecoscore_score created_t last_modified_t"`
	Page            int    `json:"page" jsonschema:"description=Page number,minimum=1,default=1" validate:"min=1"`
	PageSize        int    `json:"pageSize" jsonschema:"description=Number of results per page,minimum=1,maximum=100,default=10" validate:"min=1,max=100"`
}

// AutocompleteArgs are the arguments of autocomplete.
type AutocompleteArgs struct {
	Query        string `json:"query" jsonschema:"required,description=Text to complete" validate:"required"`
	TaxonomyType string `json:"taxonomyType" jsonschema:"required,description=Taxonomy to search,enum=categories,enum=brands,enum=labels,enum=countries,enum=ingredients,enum=allergens,enum=additives" validate:"required,oneof=categories brands labels countries ingredients allergens additives"`
	Lang         string `json:"lang" jsonschema:"description=Language code,default=en" validate:"required"`
	Limit        int    `json:"limit" jsonschema:"description=Maximum number of suggestions,minimum=1,maximum=100,default=10" validate:"min=1,max=100"`
}

// SearchProducts searches by free text. A query that looks like a barcode
// is fetched directly first and returned as a one-item page.
func (s *Service) SearchProducts(ctx context.Context, args *SearchProductsArgs) (*Result, error) {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return nil, domain.NewInvalidArgument("query must not be empty")
	}

	if domain.ValidBarcode(query) {
		product, err := s.client.GetProduct(ctx, query)
		if err == nil {
			return dataResult(domain.NewSearchResultPage([]domain.ProductSummary{product.Summary()}, 1, 1, 1)), nil
		}
		s.logger.Debug().Err(err).Str("query", query).Msg("barcode lookup failed, using text search")
	}

	page, err := s.client.SearchText(ctx, query, args.Page, args.PageSize)
	if err != nil {
		return nil, err
	}
	result := dataResult(page)
	result.NoResults = len(page.Products) == 0
	return result, nil
}

// GetProductByBarcode returns the full product record.
func (s *Service) GetProductByBarcode(ctx context.Context, args *BarcodeArgs) (*Result, error) {
	product, err := s.client.GetProduct(ctx, strings.TrimSpace(args.Barcode))
	if err != nil {
		return nil, err
	}
	return dataResult(product), nil
}

// SearchByCategory lists products of a category.
func (s *Service) SearchByCategory(ctx context.Context, args *CategoryArgs) (*Result, error) {
	return s.searchFacet(ctx, domain.FacetCategory, args.Category, args.Page, args.PageSize)
}

// SearchByBrand lists products of a brand.
func (s *Service) SearchByBrand(ctx context.Context, args *BrandArgs) (*Result, error) {
	return s.searchFacet(ctx, domain.FacetBrand, args.Brand, args.Page, args.PageSize)
}

func (s *Service) searchFacet(ctx context.Context, facet domain.Facet, name string, page, pageSize int) (*Result, error) {
	slug := Slugify(name)
	if slug == "" {
		return nil, domain.NewInvalidArgument("%s must not be empty", facet)
	}
	result, err := s.client.SearchFacet(ctx, facet, slug, page, pageSize)
	if err != nil {
		return nil, err
	}
	res := dataResult(result)
	res.NoResults = len(result.Products) == 0
	return res, nil
}

const fallbackNotice = "Advanced search unavailable; showing legacy text-search results " +
	"for the free-text query only (filters not applied)."

// AdvancedSearch queries the search service and falls back to the legacy
// text search when it fails.
func (s *Service) AdvancedSearch(ctx context.Context, args *AdvancedSearchArgs) (*Result, error) {
	q := domain.AdvancedQuery{
		Q:        BuildSearchQuery(args),
		Page:     args.Page,
		PageSize: args.PageSize,
		SortBy:   args.SortBy,
	}

	page, err := s.client.AdvancedSearch(ctx, q)
	if err == nil {
		return &Result{Data: page, Strategy: StrategySearchALicious, NoResults: len(page.Products) == 0}, nil
	}
	if !domain.IsUpstreamFailure(err) {
		return nil, err
	}

	s.logger.Warn().Err(err).Str("q", q.Q).Msg("search service failed, falling back to text search")
	s.metrics.RecordSearchFallback()

	fallbackQuery := strings.TrimSpace(args.Query)
	if fallbackQuery == "" {
		fallbackQuery = "*"
	}
	page, err = s.client.SearchText(ctx, fallbackQuery, args.Page, args.PageSize)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:      fallbackNotice,
		Data:      page,
		Strategy:  StrategyLegacyFallback,
		Degraded:  true,
		NoResults: len(page.Products) == 0,
	}, nil
}

// Autocomplete suggests taxonomy entries.
func (s *Service) Autocomplete(ctx context.Context, args *AutocompleteArgs) (*Result, error) {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return nil, domain.NewInvalidArgument("query must not be empty")
	}
	result, err := s.client.Autocomplete(ctx, query, args.TaxonomyType, args.Lang, args.Limit)
	if err != nil {
		return nil, err
	}
	return dataResult(result), nil
}

// BuildSearchQuery joins the advanced search filters into a query string.
// It returns "" when no filter is set.
func BuildSearchQuery(args *AdvancedSearchArgs) string {
	var clauses []string
	add := func(value, format string) {
		if v := strings.TrimSpace(value); v != "" {
			clauses = append(clauses, fmt.Sprintf(format, v))
		}
	}

	add(args.Query, "%s")
	add(args.Category, `categories_tags:"en:%s"`)
	add(args.Brand, `brands:"%s"`)
	add(args.NutriscoreGrade, "nutriscore_grade:%s")
	add(args.EcoscoreGrade, "ecoscore_grade:%s")
	add(args.NovaGroup, "nova_group:%s")
	add(args.Labels, `labels_tags:"en:%s"`)
	add(args.Countries, `countries_tags:"en:%s"`)
	add(args.AllergenFree, `-allergens_tags:"en:%s"`)

	return strings.Join(clauses, " AND ")
}

// Slugify lower-cases a name and replaces whitespace runs with "-".
func Slugify(name string) string {
	lower := cases.Lower(language.Und).String(strings.TrimSpace(name))
	return whitespaceRunRegex.ReplaceAllString(lower, "-")
}
