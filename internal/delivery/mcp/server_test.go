package mcp

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"github.com/openfoodfacts-mcp/backend/internal/knowledge"
	"github.com/openfoodfacts-mcp/backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCatalog serves a fixed set of products and empty pages for
// everything else.
type stubCatalog struct {
	products map[string]*domain.ProductRecord
}

func (s *stubCatalog) GetProduct(_ context.Context, barcode string) (*domain.ProductRecord, error) {
	if p, ok := s.products[barcode]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: product with barcode %s", domain.ErrNotFound, barcode)
}

func (s *stubCatalog) SearchText(_ context.Context, _ string, page, pageSize int) (*domain.SearchResultPage, error) {
	return domain.NewSearchResultPage(nil, 0, page, pageSize), nil
}

func (s *stubCatalog) SearchFacet(_ context.Context, _ domain.Facet, _ string, page, pageSize int) (*domain.SearchResultPage, error) {
	return domain.NewSearchResultPage(nil, 0, page, pageSize), nil
}

func (s *stubCatalog) AdvancedSearch(_ context.Context, q domain.AdvancedQuery) (*domain.SearchResultPage, error) {
	return domain.NewSearchResultPage(nil, 0, q.Page, q.PageSize), nil
}

func (s *stubCatalog) Autocomplete(_ context.Context, query, taxonomy, lang string, _ int) (*domain.AutocompleteResult, error) {
	return &domain.AutocompleteResult{Query: query, Taxonomy: taxonomy, Lang: lang, Options: []domain.AutocompleteOption{}}, nil
}

func (s *stubCatalog) Prices(_ context.Context, q domain.PriceQuery) (*domain.PricePage, error) {
	return &domain.PricePage{Prices: []domain.PriceRecord{}, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *stubCatalog) Questions(_ context.Context, _ domain.QuestionQuery) (*domain.QuestionsResult, error) {
	return &domain.QuestionsResult{Status: "no_questions", Questions: []domain.QuestionRecord{}}, nil
}

func (s *stubCatalog) Insights(_ context.Context, _ domain.InsightQuery) (*domain.InsightsResult, error) {
	return &domain.InsightsResult{Status: "found", Insights: []domain.InsightRecord{}}, nil
}

func testProduct() *domain.ProductRecord {
	score := 26.0
	return &domain.ProductRecord{
		ID:            "3017620422003",
		Barcode:       "3017620422003",
		Name:          "Nutella",
		Brand:         "Ferrero",
		AllergenTags:  []string{"en:milk", "en:nuts"},
		TraceTags:     []string{},
		AdditiveTags:  []string{"en:e322"},
		NutriScore:    "e",
		NutriScoreVal: &score,
		EcoScore:      "unknown",
		NovaGroup:     4,
	}
}

// connect wires a client session to a fresh server over in-memory
// transports. handler may be nil for clients without sampling support.
func connect(t *testing.T, handler func(context.Context, *mcp.CreateMessageRequest) (*mcp.CreateMessageResult, error)) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	catalog := &stubCatalog{products: map[string]*domain.ProductRecord{"3017620422003": testProduct()}}
	reg, err := usecase.NewRegistry(usecase.NewService(catalog, nil, nil))
	require.NoError(t, err)
	docs, err := knowledge.New()
	require.NoError(t, err)

	srv := NewServer(usecase.NewDispatcher(reg, nil, nil), usecase.NewPromptTable(), docs, nil)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	opts := &mcp.ClientOptions{}
	if handler != nil {
		opts.CreateMessageHandler = handler
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, opts)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestListTools(t *testing.T) {
	cs := connect(t, nil)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, res.Tools, 21)
	names := make(map[string]*mcp.Tool, len(res.Tools))
	for _, tool := range res.Tools {
		names[tool.Name] = tool
	}
	require.Contains(t, names, "getNutriScore")
	require.NotNil(t, names["getNutriScore"].Annotations)
	assert.True(t, names["getNutriScore"].Annotations.ReadOnlyHint)
	assert.Contains(t, names, "analyzeProduct")
}

func TestCallTool_Success(t *testing.T) {
	cs := connect(t, nil)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "getNutriScore",
		Arguments: map[string]any{"nameOrBarcode": "3017620422003"},
	})
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"nutriScoreGrade": "E"`)
}

func TestCallTool_ErrorsBecomeToolErrors(t *testing.T) {
	cs := connect(t, nil)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "searchProducts", args: map[string]any{"query": ""}, want: "Missing required argument: query"},
		{name: "getNutriScore", args: map[string]any{"nameOrBarcode": "unicorn cereal"}, want: `Product "unicorn cereal" not found`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: tt.name, Arguments: tt.args})
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestCallTool_SamplingRoundTrip(t *testing.T) {
	var got *mcp.CreateMessageParams
	cs := connect(t, func(_ context.Context, req *mcp.CreateMessageRequest) (*mcp.CreateMessageResult, error) {
		got = req.Params
		return &mcp.CreateMessageResult{
			Model:   "test-model",
			Role:    "assistant",
			Content: &mcp.TextContent{Text: "A sweet hazelnut spread."},
		}, nil
	})

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "analyzeProduct",
		Arguments: map[string]any{"nameOrBarcode": "3017620422003"},
	})
	require.NoError(t, err)

	assert.False(t, res.IsError)
	text := resultText(t, res)
	assert.True(t, strings.HasPrefix(text, "# Nutella (Ferrero)\n"))
	assert.True(t, strings.HasSuffix(text, "A sweet hazelnut spread."))

	require.NotNil(t, got)
	assert.EqualValues(t, 1500, got.MaxTokens)
	require.NotNil(t, got.ModelPreferences)
	require.Len(t, got.ModelPreferences.Hints, 2)
	assert.Equal(t, "claude-3", got.ModelPreferences.Hints[0].Name)
}

func TestCallTool_AnalysisDegradesWithoutSampling(t *testing.T) {
	cs := connect(t, nil)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "analyzeProduct",
		Arguments: map[string]any{"nameOrBarcode": "3017620422003"},
	})
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "AI analysis is unavailable.")
}

func TestReadResource(t *testing.T) {
	cs := connect(t, nil)

	tests := []struct {
		uri      string
		mimeType string
		contains string
	}{
		{uri: "openfoodfacts://help", mimeType: "text/markdown", contains: "Quick Help"},
		{uri: "openfoodfacts://info", mimeType: "application/json", contains: "Open Food Facts"},
		{uri: "openfoodfacts://taxonomy/categories", mimeType: "text/plain", contains: "Food Categories"},
		{uri: "openfoodfacts://taxonomy/allergens", mimeType: "text/plain", contains: "Taxonomy: allergens"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			res, err := cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: tt.uri})
			require.NoError(t, err)
			require.Len(t, res.Contents, 1)
			assert.Equal(t, tt.uri, res.Contents[0].URI)
			assert.Equal(t, tt.mimeType, res.Contents[0].MIMEType)
			assert.Contains(t, res.Contents[0].Text, tt.contains)
		})
	}
}

func TestReadResource_Unknown(t *testing.T) {
	cs := connect(t, nil)

	_, err := cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: "openfoodfacts://recipes"})
	assert.Error(t, err)
}

func TestGetPrompt(t *testing.T) {
	cs := connect(t, nil)

	res, err := cs.GetPrompt(context.Background(), &mcp.GetPromptParams{
		Name:      "compare-products",
		Arguments: map[string]string{"product1": "nutella", "product2": "nocilla"},
	})
	require.NoError(t, err)

	require.Len(t, res.Messages, 1)
	assert.Equal(t, mcp.Role("user"), res.Messages[0].Role)
	text, ok := res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `Compare "nutella" and "nocilla".`)
}

func TestGetPrompt_MissingArgument(t *testing.T) {
	cs := connect(t, nil)

	_, err := cs.GetPrompt(context.Background(), &mcp.GetPromptParams{
		Name:      "check-allergens",
		Arguments: map[string]string{"product": "nutella"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing required argument: allergens")
}
