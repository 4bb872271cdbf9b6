package off

import (
	"strings"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

const (
	unknownProduct  = "Unknown product"
	unknownBrand    = "Unknown brand"
	unknownLocation = "Unknown location"
	unknownGrade    = "unknown"
)

// Nutriment keys for the per-100g values we expose
const (
	nutrimentEnergyKcal    = "energy-kcal_100g"
	nutrimentFat           = "fat_100g"
	nutrimentSaturatedFat  = "saturated-fat_100g"
	nutrimentCarbohydrates = "carbohydrates_100g"
	nutrimentSugars        = "sugars_100g"
	nutrimentFiber         = "fiber_100g"
	nutrimentProteins      = "proteins_100g"
	nutrimentSalt          = "salt_100g"
)

// MapProduct converts an upstream product payload to the canonical record.
// fallbackBarcode is used when the payload omits its code.
func MapProduct(p *rawProduct, fallbackBarcode string) *domain.ProductRecord {
	barcode := orDefault(string(p.Code), fallbackBarcode)

	additives := p.AdditivesTags
	if len(additives) == 0 {
		additives = p.AdditivesOriginalTags
	}

	grade := string(p.NutriscoreGrade)
	if grade == "" {
		grade = string(p.NutritionGrades)
	}

	return &domain.ProductRecord{
		ID:            orDefault(string(p.ID), barcode),
		Barcode:       barcode,
		Name:          orDefault(string(p.ProductName), unknownProduct),
		Brand:         orDefault(string(p.Brands), unknownBrand),
		ImageURL:      orDefault(p.ImageFrontURL, p.ImageURL),
		Ingredients:   string(p.IngredientsText),
		AllergensText: string(p.Allergens),
		AllergenTags:  MergeTags(p.AllergensTags, p.AllergensHierarchy),
		TraceTags:     nonNil(p.TracesTags),
		AdditiveTags:  nonNil(additives),
		NutriScore:    NormalizeGrade(grade),
		NutriScoreVal: p.NutriscoreScore.Ptr(),
		EcoScore:      NormalizeGrade(string(p.EcoscoreGrade)),
		EcoScoreVal:   p.EcoscoreScore.Ptr(),
		NovaGroup:     NormalizeNova(p.NovaGroup),
		Categories:    string(p.Categories),
		Countries:     string(p.Countries),
		Labels:        string(p.Labels),
		Packaging:     string(p.Packaging),
		Origins:       string(p.Origins),
		Nutrition:     mapNutrition(p.Nutriments),
	}
}

// MapSummary converts a search hit to the lightweight search view.
// Search hits are sparser than product payloads, so grades that are absent
// stay empty rather than "unknown".
func MapSummary(p *rawProduct) domain.ProductSummary {
	code := string(p.Code)
	summary := domain.ProductSummary{
		ID:         orDefault(string(p.ID), code),
		Name:       orDefault(string(p.ProductName), unknownProduct),
		Brand:      orDefault(string(p.Brands), unknownBrand),
		Barcode:    code,
		ImageURL:   orDefault(p.ImageFrontURL, p.ImageURL),
		NovaGroup:  NormalizeNova(p.NovaGroup),
		Categories: string(p.Categories),
	}
	if g := NormalizeGrade(string(p.NutriscoreGrade)); g != unknownGrade {
		summary.NutriScore = g
	}
	if g := NormalizeGrade(string(p.EcoscoreGrade)); g != unknownGrade {
		summary.EcoScore = g
	}
	return summary
}

// MapSummaries maps a list of search hits.
func MapSummaries(products []rawProduct) []domain.ProductSummary {
	out := make([]domain.ProductSummary, 0, len(products))
	for i := range products {
		out = append(out, MapSummary(&products[i]))
	}
	return out
}

// MapPrice converts an upstream price item.
func MapPrice(p *rawPrice) domain.PriceRecord {
	location := unknownLocation
	if p.Location != nil && p.Location.OSMDisplayName != "" {
		location = p.Location.OSMDisplayName
	}
	return domain.PriceRecord{
		ProductCode:  string(p.ProductCode),
		Price:        p.Price.Value,
		Currency:     p.Currency,
		LocationName: location,
		LocationID:   int64(p.LocationID.Value),
		Date:         p.Date,
		ProofID:      int64(p.ProofID.Value),
	}
}

// MapQuestion converts an upstream Robotoff question.
func MapQuestion(q *rawQuestion) domain.QuestionRecord {
	return domain.QuestionRecord{
		Barcode:     string(q.Barcode),
		Type:        q.Type,
		Value:       string(q.Value),
		Question:    q.Question,
		InsightID:   string(q.InsightID),
		InsightType: q.InsightType,
		ImageURL:    q.SourceImageURL,
	}
}

// MapInsight converts an upstream Robotoff insight.
func MapInsight(i *rawInsight) domain.InsightRecord {
	return domain.InsightRecord{
		ID:          string(i.ID),
		Barcode:     string(i.Barcode),
		Type:        i.Type,
		Value:       string(i.Value),
		ValueTag:    string(i.ValueTag),
		Confidence:  i.Confidence.Value,
		LatestEvent: string(i.LatestEvent),
		Predictor:   string(i.Predictor),
	}
}

// NormalizeGrade lower-cases a Nutri-Score or Eco-Score grade. Anything
// outside a..e, including "not-applicable", becomes "unknown".
func NormalizeGrade(grade string) string {
	g := strings.ToLower(strings.TrimSpace(grade))
	switch g {
	case "a", "b", "c", "d", "e":
		return g
	default:
		return unknownGrade
	}
}

// NormalizeNova returns the NOVA group in 1..4, or 0 when not available.
func NormalizeNova(n number) int {
	g := n.Int()
	if g < 1 || g > 4 {
		return 0
	}
	return g
}

// MergeTags unions two tag lists, keeping first-seen order.
func MergeTags(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, tag := range list {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

func mapNutrition(n map[string]number) domain.NutritionFacts {
	return domain.NutritionFacts{
		EnergyKcal:    n[nutrimentEnergyKcal].Ptr(),
		Fat:           n[nutrimentFat].Ptr(),
		SaturatedFat:  n[nutrimentSaturatedFat].Ptr(),
		Carbohydrates: n[nutrimentCarbohydrates].Ptr(),
		Sugars:        n[nutrimentSugars].Ptr(),
		Fiber:         n[nutrimentFiber].Ptr(),
		Proteins:      n[nutrimentProteins].Ptr(),
		Salt:          n[nutrimentSalt].Ptr(),
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
