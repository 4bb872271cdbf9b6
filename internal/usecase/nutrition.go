package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

var (
	tagPrefixRegex    = regexp.MustCompile(`^[^:]{1,3}:`)
	additiveCodeRegex = regexp.MustCompile(`(?i)^(e\d+[a-z]?)`)
)

const (
	unknownGrade = "unknown"
	notSpecified = "Not specified"
)

var nutriScoreExplanations = map[string]string{
	"a":          "Excellent nutritional quality - This is a very healthy choice!",
	"b":          "Good nutritional quality - A healthy option.",
	"c":          "Average nutritional quality - Consume in moderation.",
	"d":          "Poor nutritional quality - Consider healthier alternatives.",
	"e":          "Very poor nutritional quality - Best to avoid or consume rarely.",
	unknownGrade: "Nutri-Score not available for this product.",
}

var ecoScoreExplanations = map[string]string{
	"a":          "Very low environmental impact - Excellent eco choice!",
	"b":          "Low environmental impact - Good for the planet.",
	"c":          "Moderate environmental impact - Consider the environment.",
	"d":          "High environmental impact - Consider eco-friendlier options.",
	"e":          "Very high environmental impact - Significant environmental footprint.",
	unknownGrade: "Eco-Score not available for this product.",
}

var novaExplanations = map[int]string{
	1: "Unprocessed or minimally processed foods",
	2: "Processed culinary ingredients",
	3: "Processed foods",
	4: "Ultra-processed foods - contains industrial additives",
}

const novaUnavailable = "NOVA group not available"

// ExplainNutriScore returns the fixed explanation for a grade.
func ExplainNutriScore(grade string) string {
	return explain(nutriScoreExplanations, grade)
}

// ExplainEcoScore returns the fixed explanation for a grade.
func ExplainEcoScore(grade string) string {
	return explain(ecoScoreExplanations, grade)
}

// ExplainNova returns the explanation for a NOVA group, for any input.
func ExplainNova(group int) string {
	if text, ok := novaExplanations[group]; ok {
		return text
	}
	return novaUnavailable
}

func explain(table map[string]string, grade string) string {
	if text, ok := table[strings.ToLower(strings.TrimSpace(grade))]; ok {
		return text
	}
	return table[unknownGrade]
}

// DisplayGrade upper-cases a grade for output. Anything outside a..e is
// shown as UNKNOWN.
func DisplayGrade(grade string) string {
	g := strings.ToLower(strings.TrimSpace(grade))
	if _, ok := nutriScoreExplanations[g]; !ok || g == unknownGrade {
		return strings.ToUpper(unknownGrade)
	}
	return strings.ToUpper(g)
}

// ReadableTag turns "en:peanut-butter" into "peanut butter".
func ReadableTag(tag string) string {
	return strings.ReplaceAll(tagPrefixRegex.ReplaceAllString(tag, ""), "-", " ")
}

// ReadableTags maps ReadableTag over a list.
func ReadableTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, ReadableTag(tag))
	}
	return out
}

// AdditiveName extracts the E-number from an additive tag, e.g.
// "en:e322i" becomes "E322I". Tags without one are upper-cased as-is.
func AdditiveName(tag string) string {
	stripped := tagPrefixRegex.ReplaceAllString(tag, "")
	if m := additiveCodeRegex.FindStringSubmatch(stripped); m != nil {
		return strings.ToUpper(m[1])
	}
	return strings.ToUpper(stripped)
}

// containsAllergen is a case-insensitive substring test over tags.
func containsAllergen(tags []string, allergen string) bool {
	needle := strings.ToLower(strings.TrimSpace(allergen))
	if needle == "" {
		return false
	}
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// BuildNutriScore extracts the Nutri-Score view of a product.
func BuildNutriScore(p *domain.ProductRecord) *domain.NutriScoreResult {
	return &domain.NutriScoreResult{
		Barcode:     p.Barcode,
		ProductName: p.Name,
		Brand:       p.Brand,
		Grade:       DisplayGrade(p.NutriScore),
		Score:       p.NutriScoreVal,
		Explanation: ExplainNutriScore(p.NutriScore),
	}
}

// BuildEcoScore extracts the Eco-Score view of a product.
func BuildEcoScore(p *domain.ProductRecord) *domain.EcoScoreResult {
	return &domain.EcoScoreResult{
		Barcode:     p.Barcode,
		ProductName: p.Name,
		Brand:       p.Brand,
		Grade:       DisplayGrade(p.EcoScore),
		Score:       p.EcoScoreVal,
		Packaging:   orDefaultText(p.Packaging, notSpecified),
		Origins:     orDefaultText(p.Origins, notSpecified),
		Explanation: ExplainEcoScore(p.EcoScore),
	}
}

// BuildAdditives lists a product's additives with its NOVA group.
func BuildAdditives(p *domain.ProductRecord) *domain.AdditivesResult {
	additives := make([]domain.Additive, 0, len(p.AdditiveTags))
	for _, tag := range p.AdditiveTags {
		additives = append(additives, domain.Additive{Tag: tag, Name: AdditiveName(tag)})
	}
	return &domain.AdditivesResult{
		Barcode:         p.Barcode,
		ProductName:     p.Name,
		Additives:       additives,
		Count:           len(additives),
		NovaGroup:       p.NovaGroup,
		NovaExplanation: ExplainNova(p.NovaGroup),
	}
}

// CheckAllergen checks one allergen against the product's allergen and
// trace tags. A trace match counts as found.
func CheckAllergen(p *domain.ProductRecord, allergen string) *domain.AllergenCheckResult {
	inIngredients := containsAllergen(p.AllergenTags, allergen)
	inTraces := containsAllergen(p.TraceTags, allergen)
	return &domain.AllergenCheckResult{
		Barcode:         p.Barcode,
		ProductName:     p.Name,
		AllergenFound:   inIngredients || inTraces,
		InIngredients:   inIngredients,
		InTraces:        inTraces,
		AllergenChecked: allergen,
		AllAllergens:    ReadableTags(p.AllergenTags),
		AllergensTags:   p.AllergenTags,
		Traces:          ReadableTags(p.TraceTags),
		TraceTags:       p.TraceTags,
	}
}

// CheckAllergens checks several allergens at once.
func CheckAllergens(p *domain.ProductRecord, allergens []string) *domain.MultiAllergenResult {
	statuses := make([]domain.AllergenStatus, 0, len(allergens))
	for _, allergen := range allergens {
		statuses = append(statuses, domain.AllergenStatus{
			Allergen: allergen,
			Found:    containsAllergen(p.AllergenTags, allergen),
			InTraces: containsAllergen(p.TraceTags, allergen),
		})
	}
	return &domain.MultiAllergenResult{
		Barcode:       p.Barcode,
		ProductName:   p.Name,
		CheckResults:  statuses,
		SafeToConsume: domain.SafeToConsume(statuses),
		AllAllergens:  ReadableTags(p.AllergenTags),
		Traces:        ReadableTags(p.TraceTags),
	}
}

// allergenSummary is the headline shown above a single allergen check.
func allergenSummary(r *domain.AllergenCheckResult) string {
	var b strings.Builder
	if r.AllergenFound {
		fmt.Fprintf(&b, "WARNING: %s found in this product!", strings.ToUpper(r.AllergenChecked))
	} else {
		fmt.Fprintf(&b, "%s not detected in this product.", strings.ToUpper(r.AllergenChecked))
	}
	if len(r.Traces) > 0 {
		fmt.Fprintf(&b, "\n\nNote: May contain traces of: %s", strings.Join(r.Traces, ", "))
	}
	return b.String()
}

// multiAllergenSummary lists one status line per allergen.
func multiAllergenSummary(r *domain.MultiAllergenResult) string {
	var b strings.Builder
	if r.SafeToConsume {
		b.WriteString("Product appears safe - none of the checked allergens were found.")
	} else {
		b.WriteString("WARNING: Some allergens were detected!")
	}
	for _, s := range r.CheckResults {
		fmt.Fprintf(&b, "\n  • %s: %s", s.Allergen, s.Label())
	}
	return b.String()
}
