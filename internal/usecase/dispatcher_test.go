package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"github.com/openfoodfacts-mcp/backend/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, client *MockUpstreamClient) *Dispatcher {
	t.Helper()
	reg, err := NewRegistry(NewService(client, nil, nil))
	require.NoError(t, err)
	return NewDispatcher(reg, nil, nil)
}

func requireCapabilityError(t *testing.T, err error) *domain.CapabilityError {
	t.Helper()
	var ce *domain.CapabilityError
	require.True(t, errors.As(err, &ce), "expected *domain.CapabilityError, got %T", err)
	return ce
}

func TestRegistry_Capabilities(t *testing.T) {
	reg, err := NewRegistry(NewService(NewMockUpstreamClient(), nil, nil))
	require.NoError(t, err)

	caps := reg.Capabilities()
	require.Len(t, caps, 21)

	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Description, c.Name)
		assert.True(t, json.Valid(c.InputSchema), c.Name)
		assert.Equal(t, readOnlyLookup, c.Annotations, c.Name)
	}
	assert.Equal(t, "searchProducts", names[0])
	assert.Contains(t, names, "getProductByBarcode")
	assert.Contains(t, names, "checkMultipleAllergens")
	assert.Contains(t, names, "getInsightTypes")
	assert.Contains(t, names, "suggestRecipes")

	analyze, ok := reg.Lookup("analyzeProduct")
	require.True(t, ok)
	assert.True(t, analyze.UsesSampling)

	_, ok = reg.Lookup("deleteProduct")
	assert.False(t, ok)
}

func TestRegistry_InputSchema(t *testing.T) {
	reg, err := NewRegistry(NewService(NewMockUpstreamClient(), nil, nil))
	require.NoError(t, err)

	c, ok := reg.Lookup("searchProducts")
	require.True(t, ok)

	var schema struct {
		Type       string                     `json:"type"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(c.InputSchema, &schema))
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"query"}, schema.Required)
	assert.Contains(t, schema.Properties, "page")
	assert.Contains(t, schema.Properties, "pageSize")
	assert.NotContains(t, string(c.InputSchema), "$schema")

	var pageSize map[string]any
	require.NoError(t, json.Unmarshal(schema.Properties["pageSize"], &pageSize))
	assert.Equal(t, "integer", pageSize["type"])
	assert.EqualValues(t, 100, pageSize["maximum"])
	assert.Contains(t, pageSize, "default")
}

func TestDispatcher_UnknownCapability(t *testing.T) {
	d := newTestDispatcher(t, NewMockUpstreamClient())

	_, err := d.Invoke(context.Background(), "deleteProduct", json.RawMessage(`{}`), nil)

	ce := requireCapabilityError(t, err)
	assert.Equal(t, domain.CategoryNotFound, ce.Category)
	assert.Equal(t, "deleteProduct", ce.Capability)
	assert.NotEmpty(t, ce.InvocationID)
}

func TestDispatcher_ValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		capability string
		args       string
		wantMsg    string
	}{
		{name: "missing required", capability: "getProductByBarcode", args: `{}`, wantMsg: "Missing required argument: barcode"},
		{name: "empty query", capability: "searchProducts", args: `{"query": ""}`, wantMsg: "Missing required argument: query"},
		{name: "page size above max", capability: "searchProducts", args: `{"query": "milk", "pageSize": 500}`, wantMsg: "argument pageSize must be at most 100"},
		{name: "bad enum", capability: "advancedSearch", args: `{"nutriscoreGrade": "z"}`, wantMsg: "argument nutriscoreGrade must be one of: a, b, c, d, e"},
		{name: "malformed json", capability: "searchProducts", args: `{"query": 12}`, wantMsg: "malformed arguments"},
		{name: "empty allergen list", capability: "checkMultipleAllergens", args: `{"nameOrBarcode": "nutella", "allergens": []}`, wantMsg: "argument allergens must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewMockUpstreamClient()
			d := newTestDispatcher(t, client)

			_, err := d.Invoke(context.Background(), tt.capability, json.RawMessage(tt.args), nil)

			ce := requireCapabilityError(t, err)
			assert.Equal(t, domain.CategoryInvalidArgument, ce.Category)
			assert.Contains(t, ce.Message, "Invalid arguments: ")
			assert.Contains(t, ce.Message, tt.wantMsg)
			assert.Equal(t, json.RawMessage(tt.args), ce.Arguments)
			assert.Empty(t, client.Calls(), "no upstream call on invalid arguments")
		})
	}
}

func TestDispatcher_AppliesDefaults(t *testing.T) {
	client := NewMockUpstreamClient()
	d := newTestDispatcher(t, client)

	_, err := d.Invoke(context.Background(), "searchPrices", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PriceQuery{OrderBy: "-date", Page: 1, PageSize: 20}, client.lastPrice)

	_, err = d.Invoke(context.Background(), "getRandomAIQuestions", json.RawMessage(`null`), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.QuestionQuery{Lang: "en", Count: 10}, client.lastQuestion)

	_, err = d.Invoke(context.Background(), "getProductInsights", json.RawMessage(`{"page": 2}`), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.InsightQuery{Count: 10, Page: 2}, client.lastInsight)
}

func TestDispatcher_UpstreamFailure(t *testing.T) {
	client := NewMockUpstreamClient()
	client.getErr = &domain.UpstreamError{Service: "product", StatusCode: 502, Err: domain.ErrUpstreamUnavailable}
	d := newTestDispatcher(t, client)

	_, err := d.Invoke(context.Background(), "getProductByBarcode", json.RawMessage(`{"barcode": "3017620422003"}`), nil)

	ce := requireCapabilityError(t, err)
	assert.Equal(t, domain.CategoryUpstreamUnavailable, ce.Category)
	assert.Equal(t, 502, ce.StatusCode)
	assert.Contains(t, ce.Message, "Open Food Facts request failed")
	assert.NotEmpty(t, ce.Hint)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestDispatcher_NotFoundCarriesHint(t *testing.T) {
	d := newTestDispatcher(t, NewMockUpstreamClient())

	_, err := d.Invoke(context.Background(), "getNutriScore", json.RawMessage(`{"nameOrBarcode": "unicorn cereal"}`), nil)

	ce := requireCapabilityError(t, err)
	assert.Equal(t, domain.CategoryNotFound, ce.Category)
	assert.Contains(t, ce.UserMessage(), `Product "unicorn cereal" not found`)
	assert.Contains(t, ce.UserMessage(), "searchProducts")
}

func TestDispatcher_RenderIsDeterministic(t *testing.T) {
	d := newTestDispatcher(t, NewMockUpstreamClient(nutellaRecord()))
	args := json.RawMessage(`{"nameOrBarcode": "3017620422003"}`)

	first, err := d.Invoke(context.Background(), "getNutriScore", args, nil)
	require.NoError(t, err)
	second, err := d.Invoke(context.Background(), "getNutriScore", args, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Render(), second.Render())
	assert.Contains(t, first.Render(), `"nutriScoreGrade": "E"`)
}

func TestDispatcher_RecordsMetrics(t *testing.T) {
	client := NewMockUpstreamClient(nutellaRecord())
	reg, err := NewRegistry(NewService(client, nil, nil))
	require.NoError(t, err)
	m := metrics.NewRegistry()
	d := NewDispatcher(reg, nil, m)

	_, err = d.Invoke(context.Background(), "getProductByBarcode", json.RawMessage(`{"barcode": "3017620422003"}`), nil)
	require.NoError(t, err)
	_, err = d.Invoke(context.Background(), "nope", nil, nil)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `offmcp_capability_invocations_total{capability="getProductByBarcode",outcome="ok"} 1`)
	assert.Contains(t, body, `offmcp_capability_invocations_total{capability="unknown",outcome="not_found"} 1`)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "ok", outcomeOf(&Result{}, nil))
	assert.Equal(t, "degraded", outcomeOf(&Result{Degraded: true, NoResults: true}, nil))
	assert.Equal(t, "no_results", outcomeOf(&Result{NoResults: true}, nil))
	assert.Equal(t, "upstream_unavailable", outcomeOf(nil, domain.ErrUpstreamUnavailable))
	assert.Equal(t, "internal", outcomeOf(nil, errors.New("boom")))
}

func TestResult_Render(t *testing.T) {
	assert.Equal(t, "hello", (&Result{Text: "hello"}).Render())
	assert.Equal(t, "{\n  \"a\": 1\n}", (&Result{Data: map[string]int{"a": 1}}).Render())
	assert.Equal(t, "Raw data:\n\n{\n  \"a\": 1\n}", (&Result{Text: "Raw data:\n", Data: map[string]int{"a": 1}}).Render())
}
