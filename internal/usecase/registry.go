package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

// Annotations are the behavior hints published with a capability.
type Annotations struct {
	ReadOnly   bool `json:"readOnlyHint"`
	Idempotent bool `json:"idempotentHint"`
	OpenWorld  bool `json:"openWorldHint"`
}

// readOnlyLookup is the hint set shared by every capability: read-only queries
// against the open Open Food Facts services.
var readOnlyLookup = Annotations{ReadOnly: true, Idempotent: true, OpenWorld: true}

type invokeFunc func(ctx context.Context, raw json.RawMessage, sampler domain.Sampler) (*Result, error)

// Capability is one registered tool.
type Capability struct {
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	InputSchema  json.RawMessage `json:"inputSchema"`
	Annotations  Annotations     `json:"annotations"`
	UsesSampling bool            `json:"usesSampling,omitempty"`

	invoke invokeFunc
}

// Registry is the immutable capability table.
type Registry struct {
	capabilities []*Capability
	byName       map[string]*Capability
}

// NewRegistry builds the capability table over svc. Input schemas are
// reflected once here.
func NewRegistry(svc *Service) (*Registry, error) {
	b := &registryBuilder{reflector: newSchemaReflector()}

	// Product lookup
	register(b, Capability{
		Name:        "searchProducts",
		Title:       "Search Food Products",
		Description: "Search for products in the Open Food Facts database by name, brand, category, or other keywords",
	}, func() *SearchProductsArgs { return &SearchProductsArgs{Page: 1, PageSize: 10} }, plain(svc.SearchProducts))
	register(b, Capability{
		Name:        "getProductByBarcode",
		Title:       "Get Product Details",
		Description: "Get detailed information about a product by its barcode (EAN, UPC, etc.)",
	}, func() *BarcodeArgs { return &BarcodeArgs{} }, plain(svc.GetProductByBarcode))

	// Category and brand search
	register(b, Capability{
		Name:        "searchByCategory",
		Title:       "Search By Category",
		Description: "Search products within a specific food category (e.g., beverages, snacks, dairy, cereals)",
	}, func() *CategoryArgs { return &CategoryArgs{Page: 1, PageSize: 10} }, plain(svc.SearchByCategory))
	register(b, Capability{
		Name:        "searchByBrand",
		Title:       "Search By Brand",
		Description: "Find all products from a specific brand",
	}, func() *BrandArgs { return &BrandArgs{Page: 1, PageSize: 10} }, plain(svc.SearchByBrand))
	register(b, Capability{
		Name:        "advancedSearch",
		Title:       "Advanced Product Search",
		Description: "Advanced product search with multiple filters: category, brand, nutri-score, eco-score, NOVA group, allergen-free, labels, country",
	}, func() *AdvancedSearchArgs { return &AdvancedSearchArgs{Page: 1, PageSize: 10} }, plain(svc.AdvancedSearch))
	register(b, Capability{
		Name:        "autocomplete",
		Title:       "Taxonomy Autocomplete",
		Description: "Get autocomplete suggestions for categories, brands, labels, ingredients, allergens, or additives",
	}, func() *AutocompleteArgs { return &AutocompleteArgs{Lang: "en", Limit: 10} }, plain(svc.Autocomplete))

	// Nutrition
	register(b, Capability{
		Name:        "getNutriScore",
		Title:       "Get Nutri-Score",
		Description: "Get the Nutri-Score grade (A-E) for a product - quick health assessment at a glance",
	}, func() *IdentifierArgs { return &IdentifierArgs{} }, plain(svc.GetNutriScore))
	register(b, Capability{
		Name:        "getEcoScore",
		Title:       "Get Eco-Score",
		Description: "Get the Eco-Score (environmental impact rating A-E) for a product",
	}, func() *IdentifierArgs { return &IdentifierArgs{} }, plain(svc.GetEcoScore))
	register(b, Capability{
		Name:        "getAdditivesInfo",
		Title:       "Get Additives",
		Description: "List all additives in a product with their E-numbers and NOVA processing level",
	}, func() *IdentifierArgs { return &IdentifierArgs{} }, plain(svc.GetAdditivesInfo))
	register(b, Capability{
		Name:        "getAllergenCheck",
		Title:       "Check Allergen",
		Description: "Check if a product contains a specific allergen (gluten, milk, eggs, nuts, peanuts, soy, fish, shellfish, etc.)",
	}, func() *AllergenArgs { return &AllergenArgs{} }, plain(svc.GetAllergenCheck))
	register(b, Capability{
		Name:        "checkMultipleAllergens",
		Title:       "Check Multiple Allergens",
		Description: "Check if a product contains any of multiple allergens at once",
	}, func() *MultiAllergenArgs { return &MultiAllergenArgs{} }, plain(svc.CheckMultipleAllergens))

	// Prices
	register(b, Capability{
		Name:        "getProductPrices",
		Title:       "Get Product Prices",
		Description: "Get crowd-sourced price data for a specific product - see where it costs less",
	}, func() *ProductPricesArgs { return &ProductPricesArgs{Page: 1, PageSize: 20} }, plain(svc.GetProductPrices))
	register(b, Capability{
		Name:        "searchPrices",
		Title:       "Search Prices",
		Description: "Search for crowd-sourced price data with filters (barcode, currency, etc.)",
	}, func() *SearchPricesArgs { return &SearchPricesArgs{OrderBy: newestFirst, Page: 1, PageSize: 20} }, plain(svc.SearchPrices))
	register(b, Capability{
		Name:        "getRecentPrices",
		Title:       "Get Recent Prices",
		Description: "Get the most recently added price data from the community",
	}, func() *PageArgs { return &PageArgs{Page: 1, PageSize: 20} }, plain(svc.GetRecentPrices))

	// Robotoff
	register(b, Capability{
		Name:        "getProductAIQuestions",
		Title:       "Get Product AI Questions",
		Description: `Get AI-generated questions about a product that need human verification (e.g., "Is this product organic?", "Does this contain gluten?")`,
	}, func() *BarcodeArgs { return &BarcodeArgs{} }, plain(svc.GetProductAIQuestions))
	register(b, Capability{
		Name:        "getRandomAIQuestions",
		Title:       "Get Random AI Questions",
		Description: "Get random AI-generated questions from Robotoff that need human verification - great for community contribution",
	}, func() *RandomQuestionsArgs { return &RandomQuestionsArgs{Lang: "en", Count: 10} }, plain(svc.GetRandomAIQuestions))
	register(b, Capability{
		Name:        "getProductInsights",
		Title:       "Get Product Insights",
		Description: "Get AI-generated insights about products (detected labels, categories, ingredients issues, etc.)",
	}, func() *InsightsArgs { return &InsightsArgs{Count: 10, Page: 1} }, plain(svc.GetProductInsights))
	register(b, Capability{
		Name:        "getInsightTypes",
		Title:       "Get Insight Types",
		Description: "Get a summary of available AI insight types in Robotoff",
	}, func() *NoArgs { return &NoArgs{} }, plain(svc.GetInsightTypes))

	// Sampling
	register(b, Capability{
		Name:         "analyzeProduct",
		Title:        "AI Product Analysis",
		Description:  "Analyze a product from the Open Food Facts database using AI",
		UsesSampling: true,
	}, func() *IdentifierArgs { return &IdentifierArgs{} }, svc.AnalyzeProduct)
	register(b, Capability{
		Name:         "compareProducts",
		Title:        "AI Product Comparison",
		Description:  "Compare two products from the Open Food Facts database using AI",
		UsesSampling: true,
	}, func() *CompareArgs { return &CompareArgs{} }, svc.CompareProducts)
	register(b, Capability{
		Name:         "suggestRecipes",
		Title:        "AI Recipe Suggestions",
		Description:  "Get AI-powered recipe suggestions using a product from the Open Food Facts database",
		UsesSampling: true,
	}, func() *IdentifierArgs { return &IdentifierArgs{} }, svc.SuggestRecipes)

	if b.err != nil {
		return nil, b.err
	}

	reg := &Registry{
		capabilities: b.defs,
		byName:       make(map[string]*Capability, len(b.defs)),
	}
	for _, c := range b.defs {
		if _, dup := reg.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate capability %q", c.Name)
		}
		reg.byName[c.Name] = c
	}
	return reg, nil
}

// Capabilities returns the table in registration order.
func (r *Registry) Capabilities() []*Capability {
	out := make([]*Capability, len(r.capabilities))
	copy(out, r.capabilities)
	return out
}

// Lookup finds a capability by name.
func (r *Registry) Lookup(name string) (*Capability, bool) {
	c, ok := r.byName[name]
	return c, ok
}

type registryBuilder struct {
	reflector *jsonschema.Reflector
	defs      []*Capability
	err       error
}

// register binds a typed handler to a capability. newArgs returns the args
// struct pre-populated with its defaults.
func register[A any](
	b *registryBuilder,
	meta Capability,
	newArgs func() *A,
	handle func(context.Context, *A, domain.Sampler) (*Result, error),
) {
	if b.err != nil {
		return
	}
	schema, err := inputSchema(b.reflector, newArgs())
	if err != nil {
		b.err = fmt.Errorf("capability %s: %w", meta.Name, err)
		return
	}

	c := meta
	c.InputSchema = schema
	c.Annotations = readOnlyLookup
	c.invoke = func(ctx context.Context, raw json.RawMessage, sampler domain.Sampler) (*Result, error) {
		args := newArgs()
		if err := decodeArgs(raw, args); err != nil {
			return nil, err
		}
		return handle(ctx, args, sampler)
	}
	b.defs = append(b.defs, &c)
}

// plain adapts a handler that does not sample.
func plain[A any](h func(context.Context, *A) (*Result, error)) func(context.Context, *A, domain.Sampler) (*Result, error) {
	return func(ctx context.Context, args *A, _ domain.Sampler) (*Result, error) {
		return h(ctx, args)
	}
}
