package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeProduct_Sampled(t *testing.T) {
	svc := NewService(NewMockUpstreamClient(nutellaRecord()), nil, nil)
	sampler := &MockSampler{text: "Very sweet spread."}

	res, err := svc.AnalyzeProduct(context.Background(), &IdentifierArgs{NameOrBarcode: "3017620422003"}, sampler)

	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, "# Nutella (Ferrero)\n*Nutri-Score: E • NOVA Group: 4*\n\nVery sweet spread.", res.Render())

	require.Len(t, sampler.requests, 1)
	req := sampler.requests[0]
	assert.Equal(t, 1500, req.MaxTokens)
	assert.Equal(t, 0.3, req.Temperature)
	assert.Equal(t, []string{"[END]"}, req.StopSequences)
	assert.Equal(t, []string{"claude-3", "gpt-4"}, req.ModelHints)
	assert.Equal(t, 0.9, req.IntelligencePriority)
	assert.Contains(t, req.Prompt, `"barcode": "3017620422003"`)
	assert.Contains(t, req.SystemPrompt, "nutritional expert")
}

func TestAnalyzeProduct_HeaderWithoutScores(t *testing.T) {
	p := nutellaRecord()
	p.NutriScore = "unknown"
	p.NovaGroup = 0

	assert.Equal(t, "# Nutella (Ferrero)\n", analysisHeader(p))
}

func TestAnalyzeProduct_DegradesWhenSamplingFails(t *testing.T) {
	tests := []struct {
		name    string
		sampler domain.Sampler
	}{
		{name: "client rejects", sampler: &MockSampler{err: errSamplingRejected}},
		{name: "no sampling support", sampler: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(NewMockUpstreamClient(nutellaRecord()), nil, nil)

			res, err := svc.AnalyzeProduct(context.Background(), &IdentifierArgs{NameOrBarcode: "3017620422003"}, tt.sampler)

			require.NoError(t, err)
			assert.True(t, res.Degraded)
			text := res.Render()
			assert.True(t, strings.HasPrefix(text, "AI analysis is unavailable."))
			assert.Contains(t, text, "Nutri-Score: E")
			assert.Contains(t, text, "Processing (NOVA): Group 4")
			assert.Contains(t, text, "- Energy: 539 kcal")
			assert.Contains(t, text, "- Fiber: N/Ag")
			assert.Contains(t, text, "Countries: N/A")
		})
	}
}

func TestAnalyzeProduct_NotFoundSkipsSampling(t *testing.T) {
	svc := NewService(NewMockUpstreamClient(), nil, nil)
	sampler := &MockSampler{text: "unused"}

	_, err := svc.AnalyzeProduct(context.Background(), &IdentifierArgs{NameOrBarcode: "ghost"}, sampler)

	assert.True(t, domain.IsNotFound(err))
	assert.Empty(t, sampler.requests)
}

func TestCompareProducts_Sampled(t *testing.T) {
	svc := NewService(NewMockUpstreamClient(nutellaRecord(), glutenTraceRecord()), nil, nil)
	sampler := &MockSampler{text: "Both are treats."}

	res, err := svc.CompareProducts(context.Background(), &CompareArgs{
		NameOrBarcode1: "3017620422003",
		NameOrBarcode2: "5000112637922",
	}, sampler)

	require.NoError(t, err)
	text := res.Render()
	assert.True(t, strings.HasPrefix(text, "# Comparison: Nutella vs Chocolate Bar\n\n"))
	assert.Contains(t, text, "**Nutella** (Ferrero) - Nutri-Score: E\n**Chocolate Bar** (Example) - Nutri-Score: D")
	assert.True(t, strings.HasSuffix(text, "Both are treats."))

	require.Len(t, sampler.requests, 1)
	req := sampler.requests[0]
	assert.Equal(t, 2000, req.MaxTokens)
	assert.Equal(t, 0.2, req.Temperature)
	assert.Contains(t, req.Prompt, "PRODUCT 1:")
	assert.Contains(t, req.Prompt, "PRODUCT 2:")
}

func TestCompareProducts_Fallback(t *testing.T) {
	svc := NewService(NewMockUpstreamClient(nutellaRecord(), glutenTraceRecord()), nil, nil)

	res, err := svc.CompareProducts(context.Background(), &CompareArgs{
		NameOrBarcode1: "3017620422003",
		NameOrBarcode2: "5000112637922",
	}, &MockSampler{err: errSamplingRejected})

	require.NoError(t, err)
	assert.True(t, res.Degraded)
	text := res.Render()
	assert.Contains(t, text, "NUTRI-SCORE:\nNutella: E\nChocolate Bar: D")
	assert.Contains(t, text, "ADDITIVES COUNT:\nNutella: 2\nChocolate Bar: 0")
}

func TestCompareProducts_EitherMissingFails(t *testing.T) {
	svc := NewService(NewMockUpstreamClient(nutellaRecord()), nil, nil)
	sampler := &MockSampler{text: "unused"}

	_, err := svc.CompareProducts(context.Background(), &CompareArgs{
		NameOrBarcode1: "3017620422003",
		NameOrBarcode2: "ghost",
	}, sampler)

	assert.True(t, domain.IsNotFound(err))
	assert.Empty(t, sampler.requests)
}

func TestSuggestRecipes(t *testing.T) {
	svc := NewService(NewMockUpstreamClient(nutellaRecord()), nil, nil)
	sampler := &MockSampler{text: "1. Crepes"}

	res, err := svc.SuggestRecipes(context.Background(), &IdentifierArgs{NameOrBarcode: "3017620422003"}, sampler)

	require.NoError(t, err)
	assert.Equal(t, "Recipe suggestions using Nutella:\n\n1. Crepes", res.Render())

	require.Len(t, sampler.requests, 1)
	req := sampler.requests[0]
	assert.Equal(t, 3500, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, []string{"claude-3", "gpt-4o"}, req.ModelHints)
	assert.Contains(t, req.Prompt, "Energy 539 kcal, Fat 30.9g, Proteins 6.3g, Carbs 57.5g")
	assert.Contains(t, req.Prompt, "Category: Spreads")
}

func TestSuggestRecipes_SamplingFailureIsError(t *testing.T) {
	svc := NewService(NewMockUpstreamClient(nutellaRecord()), nil, nil)

	_, err := svc.SuggestRecipes(context.Background(), &IdentifierArgs{NameOrBarcode: "3017620422003"}, &MockSampler{err: errSamplingRejected})

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "recipe generation failed")
}
