package usecase

import (
	"fmt"
	"strings"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

// PromptArgument describes one prompt argument.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Prompt is a named conversation starter rendered to one user message.
type Prompt struct {
	Name        string           `json:"name"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`

	render func(args map[string]string) string
}

// PromptTable is the immutable prompt set.
type PromptTable struct {
	prompts []*Prompt
	byName  map[string]*Prompt
}

// NewPromptTable builds the prompt set.
func NewPromptTable() *PromptTable {
	prompts := []*Prompt{
		{
			Name:        "analyze-product",
			Title:       "Analyze Product",
			Description: "Get a detailed health analysis of any food product",
			Arguments: []PromptArgument{
				{Name: "barcode", Description: "Product barcode or name", Required: true},
			},
			render: func(a map[string]string) string {
				return fmt.Sprintf("Analyze the food product %q. Provide a comprehensive nutritional analysis "+
					"including health implications, ingredient quality, allergens, and dietary considerations.", a["barcode"])
			},
		},
		{
			Name:        "compare-products",
			Title:       "Compare Products",
			Description: "Compare two products to find the healthier option",
			Arguments: []PromptArgument{
				{Name: "product1", Description: "First product (barcode or name)", Required: true},
				{Name: "product2", Description: "Second product (barcode or name)", Required: true},
			},
			render: func(a map[string]string) string {
				return fmt.Sprintf("Compare %q and %q. Tell me which is healthier and why, "+
					"comparing nutritional values, ingredients, and health scores.", a["product1"], a["product2"])
			},
		},
		{
			Name:        "find-healthy-alternatives",
			Title:       "Find Healthy Alternatives",
			Description: "Find healthier alternatives to a product",
			Arguments: []PromptArgument{
				{Name: "product", Description: "Product to find alternatives for", Required: true},
			},
			render: func(a map[string]string) string {
				return fmt.Sprintf("I want healthier alternatives to %q. "+
					"Search for similar products with better Nutri-Score ratings and fewer additives.", a["product"])
			},
		},
		{
			Name:        "check-allergens",
			Title:       "Check Allergens",
			Description: "Check if a product is safe for your allergies",
			Arguments: []PromptArgument{
				{Name: "product", Description: "Product barcode or name", Required: true},
				{Name: "allergens", Description: "Your allergens (comma-separated)", Required: true},
			},
			render: func(a map[string]string) string {
				return fmt.Sprintf("Check if %q is safe for someone allergic to: %s. Include any traces warnings.",
					a["product"], a["allergens"])
			},
		},
		{
			Name:        "whats-for-dinner",
			Title:       "What's for Dinner?",
			Description: "Get recipe ideas using a product",
			Arguments: []PromptArgument{
				{Name: "product", Description: "Main ingredient or product", Required: true},
			},
			render: func(a map[string]string) string {
				return fmt.Sprintf("Suggest healthy recipe ideas using %q as a main ingredient. Include nutritional tips.", a["product"])
			},
		},
		{
			Name:        "check-additives",
			Title:       "Check Additives",
			Description: "Check if a product contains questionable additives",
			Arguments: []PromptArgument{
				{Name: "barcode", Description: "The product barcode (EAN, UPC, etc.)", Required: true},
			},
			render: func(a map[string]string) string {
				return fmt.Sprintf("Please check the food product with barcode %s for any questionable additives or ingredients. "+
					"Use the getProductByBarcode tool to fetch the product details, then analyze the additives list "+
					"and highlight any ingredients that may be concerning from a health perspective.", a["barcode"])
			},
		},
	}

	t := &PromptTable{prompts: prompts, byName: make(map[string]*Prompt, len(prompts))}
	for _, p := range prompts {
		t.byName[p.Name] = p
	}
	return t
}

// List returns the prompts in registration order.
func (t *PromptTable) List() []*Prompt {
	out := make([]*Prompt, len(t.prompts))
	copy(out, t.prompts)
	return out
}

// Render validates args and returns the text of the single user message.
func (t *PromptTable) Render(name string, args map[string]string) (string, error) {
	p, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}
	for _, arg := range p.Arguments {
		if arg.Required && strings.TrimSpace(args[arg.Name]) == "" {
			return "", fmt.Errorf("%w: Missing required argument: %s", domain.ErrInvalidArgument, arg.Name)
		}
	}
	return p.render(args), nil
}
