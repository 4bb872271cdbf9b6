package domain

import (
	"regexp"
	"strings"
)

var barcodePattern = regexp.MustCompile(`^[0-9]{8,14}$`)

// ProductRecord is the canonical product shape every capability consumes.
// It is built once by the normalizer from the upstream product payload.
type ProductRecord struct {
	ID            string         `json:"id"`
	Barcode       string         `json:"barcode"`
	Name          string         `json:"name"`
	Brand         string         `json:"brand"`
	ImageURL      string         `json:"imageUrl"`
	Ingredients   string         `json:"ingredients"`
	AllergensText string         `json:"allergensText"`
	AllergenTags  []string       `json:"allergenTags"` // allergens_tags ∪ allergens_hierarchy
	TraceTags     []string       `json:"traceTags"`
	AdditiveTags  []string       `json:"additiveTags"`
	NutriScore    string         `json:"nutriScoreGrade"` // a..e or "unknown"
	NutriScoreVal *float64       `json:"nutriScoreScore"`
	EcoScore      string         `json:"ecoScoreGrade"` // a..e or "unknown"
	EcoScoreVal   *float64       `json:"ecoScoreScore"`
	NovaGroup     int            `json:"novaGroup"` // 1..4, 0 when not available
	Categories    string         `json:"categories"`
	Countries     string         `json:"countries"`
	Labels        string         `json:"labels"`
	Packaging     string         `json:"packaging"`
	Origins       string         `json:"origins"`
	Nutrition     NutritionFacts `json:"nutrition"`
}

// NutritionFacts holds per 100g/100ml values. A nil field means the value
// is unavailable upstream; zero is a measured value.
type NutritionFacts struct {
	EnergyKcal    *float64 `json:"energyKcal"`
	Fat           *float64 `json:"fat"`
	SaturatedFat  *float64 `json:"saturatedFat"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Sugars        *float64 `json:"sugars"`
	Fiber         *float64 `json:"fiber"`
	Proteins      *float64 `json:"proteins"`
	Salt          *float64 `json:"salt"`
}

// ProductSummary is the lightweight view returned by search endpoints.
type ProductSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	Barcode    string `json:"barcode"`
	ImageURL   string `json:"imageUrl"`
	NutriScore string `json:"nutriScore"` // a..e, empty when not available
	EcoScore   string `json:"ecoScore"`   // a..e, empty when not available
	NovaGroup  int    `json:"novaGroup"`
	Categories string `json:"categories"`
}

// SearchResultPage is one page of search hits.
type SearchResultPage struct {
	Products  []ProductSummary `json:"products"`
	Count     int              `json:"count"`
	Page      int              `json:"page"`
	PageSize  int              `json:"pageSize"`
	PageCount int              `json:"pageCount"`
}

// Summary returns the search view of a full product record.
func (p *ProductRecord) Summary() ProductSummary {
	return ProductSummary{
		ID:         p.ID,
		Name:       p.Name,
		Brand:      p.Brand,
		Barcode:    p.Barcode,
		ImageURL:   p.ImageURL,
		NutriScore: summaryGrade(p.NutriScore),
		EcoScore:   summaryGrade(p.EcoScore),
		NovaGroup:  p.NovaGroup,
		Categories: p.Categories,
	}
}

// summaryGrade keeps a..e and blanks everything else.
func summaryGrade(grade string) string {
	switch grade {
	case "a", "b", "c", "d", "e":
		return grade
	}
	return ""
}

// NewSearchResultPage builds a page and derives its page count.
// Page and pageSize are clamped to at least 1.
func NewSearchResultPage(products []ProductSummary, count, page, pageSize int) *SearchResultPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if count < 0 {
		count = 0
	}
	if products == nil {
		products = []ProductSummary{}
	}
	return &SearchResultPage{
		Products:  products,
		Count:     count,
		Page:      page,
		PageSize:  pageSize,
		PageCount: PageCount(count, pageSize),
	}
}

// PageCount returns ceil(count / pageSize).
func PageCount(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// ValidBarcode reports whether s is an 8 to 14 digit barcode.
func ValidBarcode(s string) bool {
	return barcodePattern.MatchString(s)
}

// IsNumeric reports whether s is non-empty and made only of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateBarcode returns ErrInvalidArgument unless barcode is 8 to 14 digits.
func ValidateBarcode(barcode string) error {
	if !ValidBarcode(strings.TrimSpace(barcode)) {
		return NewInvalidArgument("invalid barcode format %q: expected 8-14 digits", barcode)
	}
	return nil
}
