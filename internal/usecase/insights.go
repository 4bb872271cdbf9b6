package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

const (
	productQuestionsLang  = "en"
	productQuestionsCount = 25
)

var insightTypes = []domain.InsightType{
	{Type: "label", Description: "Detected product labels (organic, fair-trade, etc.)"},
	{Type: "category", Description: "Product category suggestions"},
	{Type: "product_weight", Description: "Detected product weight/quantity"},
	{Type: "brand", Description: "Brand name detection"},
	{Type: "expiration_date", Description: "Expiration date detection from images"},
	{Type: "packaging", Description: "Packaging material and type"},
	{Type: "store", Description: "Store/retailer information"},
	{Type: "nutrient", Description: "Nutritional value detection"},
	{Type: "ingredient_spellcheck", Description: "Ingredient spellings corrections"},
	{Type: "nutrition_image", Description: "Nutrition table image detection"},
}

// InsightTypes returns the Robotoff insight types.
func InsightTypes() []domain.InsightType {
	out := make([]domain.InsightType, len(insightTypes))
	copy(out, insightTypes)
	return out
}

// RandomQuestionsArgs are the arguments of getRandomAIQuestions.
type RandomQuestionsArgs struct {
	Barcode     string `json:"barcode,omitempty" jsonschema:"description=Filter by product barcode"`
	InsightType string `json:"insightType,omitempty" jsonschema:"description=Type of question to retrieve,enum=label,enum=category,enum=product_weight,enum=brand,enum=expiration_date,enum=packaging,enum=store,enum=nutrient,enum=ingredient_spellcheck" validate:"omitempty,oneof=label category product_weight brand expiration_date packaging store nutrient ingredient_spellcheck"`
	Lang        string `json:"lang" jsonschema:"description=Language for questions,default=en" validate:"required"`
	Count       int    `json:"count" jsonschema:"description=Number of questions to return,minimum=1,maximum=100,default=10" validate:"min=1,max=100"`
}

// InsightsArgs are the filters of getProductInsights.
type InsightsArgs struct {
	Barcode     string `json:"barcode,omitempty" jsonschema:"description=Filter by product barcode"`
	InsightType string `json:"insightType,omitempty" jsonschema:"description=Type of insight to retrieve,enum=label,enum=category,enum=product_weight,enum=brand,enum=expiration_date,enum=packaging,enum=store,enum=nutrient,enum=ingredient_spellcheck,enum=nutrition_image" validate:"omitempty,oneof=label category product_weight brand expiration_date packaging store nutrient ingredient_spellcheck nutrition_image"`
	Country     string `json:"country,omitempty" jsonschema:"description=Filter by country"`
	Count       int    `json:"count" jsonschema:"description=Number of insights to return,minimum=1,maximum=100,default=10" validate:"min=1,max=100"`
	Page        int    `json:"page" jsonschema:"description=Page number,minimum=1,default=1" validate:"min=1"`
}

// NoArgs is used by capabilities without arguments.
type NoArgs struct{}

// GetProductAIQuestions lists the pending questions for one product.
func (s *Service) GetProductAIQuestions(ctx context.Context, args *BarcodeArgs) (*Result, error) {
	barcode := strings.TrimSpace(args.Barcode)
	result, err := s.client.Questions(ctx, domain.QuestionQuery{
		Barcode: barcode,
		Lang:    productQuestionsLang,
		Count:   productQuestionsCount,
	})
	if err != nil {
		return nil, err
	}

	if len(result.Questions) == 0 {
		return noResults(fmt.Sprintf("No AI questions pending for product %s. "+
			"The product data may be complete or not yet analyzed.", barcode)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d AI-generated questions for product %s:\n\n", result.Count, barcode)
	for i, q := range result.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
		fmt.Fprintf(&b, "   Suggested answer: %s\n", q.Value)
		fmt.Fprintf(&b, "   Type: %s\n\n", q.InsightType)
	}
	b.WriteString("Raw data:")

	return &Result{Text: b.String(), Data: result}, nil
}

// GetRandomAIQuestions lists questions across products.
func (s *Service) GetRandomAIQuestions(ctx context.Context, args *RandomQuestionsArgs) (*Result, error) {
	result, err := s.client.Questions(ctx, domain.QuestionQuery{
		Barcode:     strings.TrimSpace(args.Barcode),
		InsightType: args.InsightType,
		Lang:        args.Lang,
		Count:       args.Count,
	})
	if err != nil {
		return nil, err
	}

	if len(result.Questions) == 0 {
		return noResults("No AI questions available at this time."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d AI-generated questions:\n\n", result.Count)
	for i, q := range result.Questions {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, q.Barcode, q.Question)
		fmt.Fprintf(&b, "   Suggested: %s (%s)\n\n", q.Value, q.InsightType)
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil
}

// GetProductInsights lists insights that have not been annotated yet.
func (s *Service) GetProductInsights(ctx context.Context, args *InsightsArgs) (*Result, error) {
	result, err := s.client.Insights(ctx, domain.InsightQuery{
		Barcode:     strings.TrimSpace(args.Barcode),
		InsightType: args.InsightType,
		Country:     strings.TrimSpace(args.Country),
		Count:       args.Count,
		Page:        args.Page,
	})
	if err != nil {
		return nil, err
	}

	if len(result.Insights) == 0 {
		return noResults("No insights available matching your criteria."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d AI insights:\n\n", result.Count)
	for i, in := range result.Insights {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, in.Barcode, in.Type, in.Value)
		fmt.Fprintf(&b, "   Confidence: %.1f%%\n", in.Confidence*100)
		fmt.Fprintf(&b, "   Predictor: %s\n\n", in.Predictor)
	}
	b.WriteString("Raw data:")

	return &Result{Text: b.String(), Data: result}, nil
}

// GetInsightTypes describes the Robotoff insight types.
func (s *Service) GetInsightTypes(_ context.Context, _ *NoArgs) (*Result, error) {
	var b strings.Builder
	b.WriteString("# Robotoff AI Insight Types\n\n")
	b.WriteString("Robotoff is the AI system that analyzes product images and data.\n\n")
	for _, t := range insightTypes {
		fmt.Fprintf(&b, "- **%s**: %s\n", t.Type, t.Description)
	}
	return textResult(b.String()), nil
}
