package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

// MockUpstreamClient is a hand-written mock of domain.UpstreamClient. It
// records calls in order as "get:<barcode>", "search:<query>" and so on.
type MockUpstreamClient struct {
	mu    sync.Mutex
	calls []string

	products map[string]*domain.ProductRecord
	getErr   error

	searchPage *domain.SearchResultPage
	searchErr  error

	facetPage *domain.SearchResultPage
	facetErr  error
	lastFacet domain.Facet
	lastSlug  string

	advancedPage *domain.SearchResultPage
	advancedErr  error
	lastAdvanced domain.AdvancedQuery

	autocomplete *domain.AutocompleteResult

	pricePage *domain.PricePage
	priceErr  error
	lastPrice domain.PriceQuery

	questions    *domain.QuestionsResult
	lastQuestion domain.QuestionQuery

	insights    *domain.InsightsResult
	lastInsight domain.InsightQuery
}

func NewMockUpstreamClient(products ...*domain.ProductRecord) *MockUpstreamClient {
	m := &MockUpstreamClient{products: make(map[string]*domain.ProductRecord)}
	for _, p := range products {
		m.products[p.Barcode] = p
	}
	return m
}

func (m *MockUpstreamClient) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *MockUpstreamClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockUpstreamClient) GetProduct(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	m.record("get:" + barcode)
	if m.getErr != nil {
		return nil, m.getErr
	}
	if p, ok := m.products[barcode]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: product with barcode %s", domain.ErrNotFound, barcode)
}

func (m *MockUpstreamClient) SearchText(ctx context.Context, query string, page, pageSize int) (*domain.SearchResultPage, error) {
	m.record("search:" + query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.searchPage != nil {
		return m.searchPage, nil
	}
	return domain.NewSearchResultPage(nil, 0, page, pageSize), nil
}

func (m *MockUpstreamClient) SearchFacet(ctx context.Context, facet domain.Facet, slug string, page, pageSize int) (*domain.SearchResultPage, error) {
	m.record(fmt.Sprintf("facet:%s:%s", facet, slug))
	m.mu.Lock()
	m.lastFacet, m.lastSlug = facet, slug
	m.mu.Unlock()
	if m.facetErr != nil {
		return nil, m.facetErr
	}
	if m.facetPage != nil {
		return m.facetPage, nil
	}
	return domain.NewSearchResultPage(nil, 0, page, pageSize), nil
}

func (m *MockUpstreamClient) AdvancedSearch(ctx context.Context, q domain.AdvancedQuery) (*domain.SearchResultPage, error) {
	m.record("advanced:" + q.Q)
	m.mu.Lock()
	m.lastAdvanced = q
	m.mu.Unlock()
	if m.advancedErr != nil {
		return nil, m.advancedErr
	}
	if m.advancedPage != nil {
		return m.advancedPage, nil
	}
	return domain.NewSearchResultPage(nil, 0, q.Page, q.PageSize), nil
}

func (m *MockUpstreamClient) Autocomplete(ctx context.Context, query, taxonomy, lang string, size int) (*domain.AutocompleteResult, error) {
	m.record("autocomplete:" + query)
	if m.autocomplete != nil {
		return m.autocomplete, nil
	}
	return &domain.AutocompleteResult{Query: query, Taxonomy: taxonomy, Lang: lang, Options: []domain.AutocompleteOption{}}, nil
}

func (m *MockUpstreamClient) Prices(ctx context.Context, q domain.PriceQuery) (*domain.PricePage, error) {
	m.record("prices:" + q.Barcode)
	m.mu.Lock()
	m.lastPrice = q
	m.mu.Unlock()
	if m.priceErr != nil {
		return nil, m.priceErr
	}
	if m.pricePage != nil {
		return m.pricePage, nil
	}
	return &domain.PricePage{Prices: []domain.PriceRecord{}, Page: q.Page, PageSize: q.PageSize}, nil
}

func (m *MockUpstreamClient) Questions(ctx context.Context, q domain.QuestionQuery) (*domain.QuestionsResult, error) {
	m.record("questions:" + q.Barcode)
	m.mu.Lock()
	m.lastQuestion = q
	m.mu.Unlock()
	if m.questions != nil {
		return m.questions, nil
	}
	return &domain.QuestionsResult{Status: "no_questions", Questions: []domain.QuestionRecord{}}, nil
}

func (m *MockUpstreamClient) Insights(ctx context.Context, q domain.InsightQuery) (*domain.InsightsResult, error) {
	m.record("insights:" + q.Barcode)
	m.mu.Lock()
	m.lastInsight = q
	m.mu.Unlock()
	if m.insights != nil {
		return m.insights, nil
	}
	return &domain.InsightsResult{Status: "found", Insights: []domain.InsightRecord{}}, nil
}

// MockSampler is a hand-written mock of domain.Sampler.
type MockSampler struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []*domain.SamplingRequest
}

func (m *MockSampler) CreateMessage(ctx context.Context, req *domain.SamplingRequest) (*domain.SamplingResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SamplingResponse{Model: "test-model", Text: m.text}, nil
}

var errSamplingRejected = errors.New("sampling rejected by client")

func floatPtr(v float64) *float64 {
	return &v
}

func nutellaRecord() *domain.ProductRecord {
	return &domain.ProductRecord{
		ID:            "3017620422003",
		Barcode:       "3017620422003",
		Name:          "Nutella",
		Brand:         "Ferrero",
		Ingredients:   "Sugar, palm oil, hazelnuts 13%, skimmed milk powder 8.7%",
		AllergensText: "en:milk,en:nuts",
		AllergenTags:  []string{"en:milk", "en:nuts", "en:soybeans"},
		TraceTags:     []string{},
		AdditiveTags:  []string{"en:e322", "en:e322i"},
		NutriScore:    "e",
		NutriScoreVal: floatPtr(26),
		EcoScore:      "unknown",
		NovaGroup:     4,
		Categories:    "Spreads",
		Nutrition: domain.NutritionFacts{
			EnergyKcal:    floatPtr(539),
			Fat:           floatPtr(30.9),
			Carbohydrates: floatPtr(57.5),
			Sugars:        floatPtr(56.3),
			Proteins:      floatPtr(6.3),
			Salt:          floatPtr(0.107),
		},
	}
}

func glutenTraceRecord() *domain.ProductRecord {
	return &domain.ProductRecord{
		ID:           "5000112637922",
		Barcode:      "5000112637922",
		Name:         "Chocolate Bar",
		Brand:        "Example",
		AllergenTags: []string{"en:milk"},
		TraceTags:    []string{"en:gluten"},
		AdditiveTags: []string{},
		NutriScore:   "d",
		EcoScore:     "c",
		NovaGroup:    4,
	}
}
