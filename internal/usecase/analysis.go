package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

const notAvailable = "N/A"

const analysisSystemPrompt = "You are a nutritional expert specializing in analyzing food products. " +
	"Provide a detailed analysis of the product based on the Open Food Facts data. Include: \n\n" +
	"1. PRODUCT OVERVIEW: Basic details and classification\n" +
	"2. NUTRITION ANALYSIS: Review of nutritional data and what it means for dietary considerations\n" +
	"3. INGREDIENTS ASSESSMENT: Analysis of ingredients, highlighting potential concerns or benefits\n" +
	"4. ALLERGENS & RESTRICTIONS: Information relevant to dietary restrictions and allergies\n" +
	"5. HEALTH PERSPECTIVE: Overall assessment from a health and nutrition standpoint\n" +
	"6. RECOMMENDATIONS: Suggestions for consumers regarding this product"

const comparisonSystemPrompt = "You are a nutritional expert specializing in comparing food products. " +
	"Provide a comprehensive comparison between two products based on their Open Food Facts data. " +
	"Include the following sections:\n\n" +
	"1. OVERVIEW: Brief introduction to both products and what they are\n" +
	"2. NUTRITIONAL COMPARISON: Detailed side-by-side comparison of nutrients, highlighting significant differences\n" +
	"3. INGREDIENTS COMPARISON: Analysis of ingredients lists, highlighting differences and similarities\n" +
	"4. HEALTH RATING COMPARISON: Compare Nutri-Score, NOVA processing classification, and other health indicators\n" +
	"5. DIETARY CONSIDERATIONS: Compare allergens, dietary restrictions compatibility (vegan, vegetarian, etc.)\n" +
	"6. RECOMMENDATION: Which product might be preferable for different dietary needs and why"

const recipeSystemPrompt = `You are a creative culinary nutritionist. Generate 4 recipe suggestions:
1. LOW-CALORIE: Light meal focusing on weight management
2. PROTEIN-RICH: Recipe for fitness enthusiasts
3. QUICK & EASY: Minimal prep and cooking time
4. FAMILY-FRIENDLY: Balanced meal for all ages

For each recipe, provide:
- Recipe name
- Ingredient list with measurements
- Brief preparation steps
- Approximate nutrition per serving
- Health benefit highlight`

// errNoSampler is returned when the connected client cannot sample.
var errNoSampler = errors.New("client does not support sampling")

// CompareArgs are the arguments of compareProducts.
type CompareArgs struct {
	NameOrBarcode1 string `json:"nameOrBarcode1" jsonschema:"required,description=Name or barcode of the first product" validate:"required"`
	NameOrBarcode2 string `json:"nameOrBarcode2" jsonschema:"required,description=Name or barcode of the second product" validate:"required"`
}

// AnalyzeProduct asks the client's LLM for a nutritional analysis. When
// sampling fails the result degrades to the raw product data.
func (s *Service) AnalyzeProduct(ctx context.Context, args *IdentifierArgs, sampler domain.Sampler) (*Result, error) {
	product, err := s.resolver.Resolve(ctx, args.NameOrBarcode)
	if err != nil {
		return nil, err
	}

	resp, err := sample(ctx, sampler, &domain.SamplingRequest{
		SystemPrompt:         analysisSystemPrompt,
		Prompt:               "Analyze this product from the Open Food Facts database and provide a detailed nutritional assessment:\n\n" + productJSON(product),
		ModelHints:           []string{"claude-3", "gpt-4"},
		IntelligencePriority: 0.9,
		SpeedPriority:        0.6,
		CostPriority:         0.4,
		Temperature:          0.3,
		MaxTokens:            1500,
		StopSequences:        []string{"[END]"},
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("barcode", product.Barcode).Msg("product analysis sampling failed, returning raw data")
		return &Result{Text: analysisFallback(product), Degraded: true}, nil
	}

	text := resp.Text
	if strings.TrimSpace(text) == "" {
		text = "Analysis not available for this product."
	}
	return textResult(analysisHeader(product) + text), nil
}

// CompareProducts resolves both products concurrently and asks the
// client's LLM to compare them.
func (s *Service) CompareProducts(ctx context.Context, args *CompareArgs, sampler domain.Sampler) (*Result, error) {
	var first, second *domain.ProductRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.resolver.Resolve(gctx, args.NameOrBarcode1)
		first = p
		return err
	})
	g.Go(func() error {
		p, err := s.resolver.Resolve(gctx, args.NameOrBarcode2)
		second = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp, err := sample(ctx, sampler, &domain.SamplingRequest{
		SystemPrompt: comparisonSystemPrompt,
		Prompt: "Compare these two food products from the Open Food Facts database and provide a detailed nutritional comparison:\n\n" +
			"PRODUCT 1:\n" + productJSON(first) + "\n\nPRODUCT 2:\n" + productJSON(second),
		ModelHints:           []string{"claude-3", "gpt-4"},
		IntelligencePriority: 0.9,
		SpeedPriority:        0.5,
		CostPriority:         0.4,
		Temperature:          0.2,
		MaxTokens:            2000,
		StopSequences:        []string{"[END]"},
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Str("first", first.Barcode).
			Str("second", second.Barcode).
			Msg("product comparison sampling failed, returning side-by-side data")
		return &Result{Text: comparisonFallback(first, second), Degraded: true}, nil
	}

	text := resp.Text
	if strings.TrimSpace(text) == "" {
		text = "Comparison analysis not available."
	}
	return textResult(comparisonHeader(first, second) + text), nil
}

// SuggestRecipes asks the client's LLM for recipes using the product.
// There is no fallback: a sampling failure is an error.
func (s *Service) SuggestRecipes(ctx context.Context, args *IdentifierArgs, sampler domain.Sampler) (*Result, error) {
	product, err := s.resolver.Resolve(ctx, args.NameOrBarcode)
	if err != nil {
		return nil, err
	}

	n := product.Nutrition
	prompt := fmt.Sprintf("Generate recipe suggestions for %s (%s). "+
		"Nutritional profile: Energy %s kcal, Fat %sg, Proteins %sg, Carbs %sg.\n\n"+
		"Category: %s\nIngredients: %s\nAllergens: %s",
		product.Name, product.Brand,
		orUnknown(n.EnergyKcal), orUnknown(n.Fat), orUnknown(n.Proteins), orUnknown(n.Carbohydrates),
		orDefaultText(product.Categories, "food item"), product.Ingredients, product.AllergensText)

	resp, err := sample(ctx, sampler, &domain.SamplingRequest{
		SystemPrompt:         recipeSystemPrompt,
		Prompt:               prompt,
		ModelHints:           []string{"claude-3", "gpt-4o"},
		IntelligencePriority: 0.8,
		SpeedPriority:        0.5,
		Temperature:          0.7,
		MaxTokens:            3500,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: recipe generation failed: %v", domain.ErrUpstreamUnavailable, err)
	}

	return textResult(fmt.Sprintf("Recipe suggestions using %s:\n\n%s", product.Name, resp.Text)), nil
}

func sample(ctx context.Context, sampler domain.Sampler, req *domain.SamplingRequest) (*domain.SamplingResponse, error) {
	if sampler == nil {
		return nil, errNoSampler
	}
	resp, err := sampler.CreateMessage(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("empty sampling response")
	}
	return resp, nil
}

func analysisHeader(p *domain.ProductRecord) string {
	var tags []string
	if p.NutriScore != "" && p.NutriScore != unknownGrade {
		tags = append(tags, "Nutri-Score: "+DisplayGrade(p.NutriScore))
	}
	if p.NovaGroup > 0 {
		tags = append(tags, "NOVA Group: "+strconv.Itoa(p.NovaGroup))
	}

	header := fmt.Sprintf("# %s (%s)\n", p.Name, p.Brand)
	if len(tags) > 0 {
		header += "*" + strings.Join(tags, " • ") + "*\n\n"
	}
	return header
}

func comparisonHeader(a, b *domain.ProductRecord) string {
	return fmt.Sprintf("# Comparison: %s vs %s\n\n**%s** (%s) - Nutri-Score: %s\n**%s** (%s) - Nutri-Score: %s\n\n",
		a.Name, b.Name,
		a.Name, a.Brand, gradeOrNA(a.NutriScore),
		b.Name, b.Brand, gradeOrNA(b.NutriScore))
}

func analysisFallback(p *domain.ProductRecord) string {
	n := p.Nutrition
	var b strings.Builder
	fmt.Fprintf(&b, "AI analysis is unavailable. Basic product data follows.\n\n")
	fmt.Fprintf(&b, "Analysis of %s:\n\n", p.Name)
	fmt.Fprintf(&b, "Product: %s\n", p.Name)
	fmt.Fprintf(&b, "Brand: %s\n", p.Brand)
	fmt.Fprintf(&b, "Nutri-Score: %s\n", gradeOrNA(p.NutriScore))
	fmt.Fprintf(&b, "Processing (NOVA): Group %s\n\n", novaOrNA(p.NovaGroup))
	b.WriteString("Nutrition Facts (per 100g/100ml):\n")
	fmt.Fprintf(&b, "- Energy: %s kcal\n", orNA(n.EnergyKcal))
	fmt.Fprintf(&b, "- Fat: %sg\n", orNA(n.Fat))
	fmt.Fprintf(&b, "- Saturated Fat: %sg\n", orNA(n.SaturatedFat))
	fmt.Fprintf(&b, "- Carbohydrates: %sg\n", orNA(n.Carbohydrates))
	fmt.Fprintf(&b, "- Sugars: %sg\n", orNA(n.Sugars))
	fmt.Fprintf(&b, "- Fiber: %sg\n", orNA(n.Fiber))
	fmt.Fprintf(&b, "- Proteins: %sg\n", orNA(n.Proteins))
	fmt.Fprintf(&b, "- Salt: %sg\n\n", orNA(n.Salt))
	fmt.Fprintf(&b, "Ingredients: %s\n\n", orDefaultText(p.Ingredients, notAvailable))
	fmt.Fprintf(&b, "Allergens: %s\n\n", orDefaultText(p.AllergensText, "None listed"))
	fmt.Fprintf(&b, "Countries: %s", orDefaultText(p.Countries, notAvailable))
	return b.String()
}

func comparisonFallback(a, c *domain.ProductRecord) string {
	var b strings.Builder
	row := func(title, left, right string) {
		fmt.Fprintf(&b, "%s:\n%s: %s\n%s: %s\n\n", title, a.Name, left, c.Name, right)
	}

	b.WriteString("AI comparison is unavailable. Basic product data follows.\n\n")
	fmt.Fprintf(&b, "Comparison of %s vs %s:\n\n", a.Name, c.Name)
	row("NUTRI-SCORE", gradeOrNA(a.NutriScore), gradeOrNA(c.NutriScore))
	row("PROCESSING LEVEL (NOVA)", novaOrNA(a.NovaGroup), novaOrNA(c.NovaGroup))
	b.WriteString("NUTRITIONAL COMPARISON (per 100g/100ml):\n")
	row("CALORIES", orNA(a.Nutrition.EnergyKcal)+" kcal", orNA(c.Nutrition.EnergyKcal)+" kcal")
	row("FAT", orNA(a.Nutrition.Fat)+"g", orNA(c.Nutrition.Fat)+"g")
	row("SATURATED FAT", orNA(a.Nutrition.SaturatedFat)+"g", orNA(c.Nutrition.SaturatedFat)+"g")
	row("SUGARS", orNA(a.Nutrition.Sugars)+"g", orNA(c.Nutrition.Sugars)+"g")
	row("FIBER", orNA(a.Nutrition.Fiber)+"g", orNA(c.Nutrition.Fiber)+"g")
	row("PROTEINS", orNA(a.Nutrition.Proteins)+"g", orNA(c.Nutrition.Proteins)+"g")
	row("SALT", orNA(a.Nutrition.Salt)+"g", orNA(c.Nutrition.Salt)+"g")
	row("INGREDIENTS", orDefaultText(a.Ingredients, notAvailable), orDefaultText(c.Ingredients, notAvailable))
	row("ADDITIVES COUNT", strconv.Itoa(len(a.AdditiveTags)), strconv.Itoa(len(c.AdditiveTags)))
	return strings.TrimRight(b.String(), "\n")
}

// productJSON is the product payload handed to the LLM.
func productJSON(p *domain.ProductRecord) string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func gradeOrNA(grade string) string {
	if grade == "" || grade == unknownGrade {
		return notAvailable
	}
	return DisplayGrade(grade)
}

func novaOrNA(group int) string {
	if group < 1 || group > 4 {
		return notAvailable
	}
	return strconv.Itoa(group)
}

func orNA(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orUnknown(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orDefaultText(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
