package usecase

import (
	"testing"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptTable_List(t *testing.T) {
	prompts := NewPromptTable().List()

	names := make([]string, 0, len(prompts))
	for _, p := range prompts {
		names = append(names, p.Name)
		assert.NotEmpty(t, p.Arguments, p.Name)
	}
	assert.Equal(t, []string{
		"analyze-product",
		"compare-products",
		"find-healthy-alternatives",
		"check-allergens",
		"whats-for-dinner",
		"check-additives",
	}, names)
}

func TestPromptTable_Render(t *testing.T) {
	table := NewPromptTable()

	tests := []struct {
		name     string
		prompt   string
		args     map[string]string
		contains []string
	}{
		{
			name:     "analyze",
			prompt:   "analyze-product",
			args:     map[string]string{"barcode": "3017620422003"},
			contains: []string{`Analyze the food product "3017620422003".`},
		},
		{
			name:     "compare",
			prompt:   "compare-products",
			args:     map[string]string{"product1": "nutella", "product2": "nocilla"},
			contains: []string{`Compare "nutella" and "nocilla".`, "which is healthier"},
		},
		{
			name:     "allergens",
			prompt:   "check-allergens",
			args:     map[string]string{"product": "nutella", "allergens": "milk, nuts"},
			contains: []string{`Check if "nutella" is safe for someone allergic to: milk, nuts.`, "traces"},
		},
		{
			name:     "additives",
			prompt:   "check-additives",
			args:     map[string]string{"barcode": "3017620422003"},
			contains: []string{"barcode 3017620422003", "getProductByBarcode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := table.Render(tt.prompt, tt.args)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
		})
	}
}

func TestPromptTable_RenderErrors(t *testing.T) {
	table := NewPromptTable()

	_, err := table.Render("order-pizza", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = table.Render("compare-products", map[string]string{"product1": "nutella", "product2": " "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "Missing required argument: product2")
}
