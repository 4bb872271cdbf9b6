package domain

// NutriScoreResult reports a product's Nutri-Score grade.
type NutriScoreResult struct {
	Barcode     string   `json:"barcode"`
	ProductName string   `json:"productName"`
	Brand       string   `json:"brand"`
	Grade       string   `json:"nutriScoreGrade"` // upper-cased, "UNKNOWN" when missing
	Score       *float64 `json:"nutriScoreScore"`
	Explanation string   `json:"explanation"`
}

// EcoScoreResult reports a product's Eco-Score grade.
type EcoScoreResult struct {
	Barcode     string   `json:"barcode"`
	ProductName string   `json:"productName"`
	Brand       string   `json:"brand"`
	Grade       string   `json:"ecoScoreGrade"`
	Score       *float64 `json:"ecoScoreScore"`
	Packaging   string   `json:"packaging"`
	Origins     string   `json:"origins"`
	Explanation string   `json:"explanation"`
}

// Additive is one additive tag with its display name (usually an E-number).
type Additive struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
}

// AdditivesResult lists the additives of a product with its NOVA group.
type AdditivesResult struct {
	Barcode         string     `json:"barcode"`
	ProductName     string     `json:"productName"`
	Additives       []Additive `json:"additives"`
	Count           int        `json:"count"`
	NovaGroup       int        `json:"novaGroup"`
	NovaExplanation string     `json:"novaExplanation"`
}

// AllergenCheckResult is the outcome of checking one allergen.
// AllergenFound is true when the allergen is in the ingredients or in traces.
type AllergenCheckResult struct {
	Barcode         string   `json:"barcode"`
	ProductName     string   `json:"productName"`
	AllergenFound   bool     `json:"allergenFound"`
	InIngredients   bool     `json:"inIngredients"`
	InTraces        bool     `json:"inTraces"`
	AllergenChecked string   `json:"allergenChecked"`
	AllAllergens    []string `json:"allAllergens"`
	AllergensTags   []string `json:"allergensTags"`
	Traces          []string `json:"traces"`
	TraceTags       []string `json:"traceTags"`
}

// AllergenStatus is the per-allergen line of a multi-allergen check.
type AllergenStatus struct {
	Allergen string `json:"allergen"`
	Found    bool   `json:"found"`
	InTraces bool   `json:"inTraces"`
}

// Label returns FOUND, TRACES or NOT FOUND.
func (s AllergenStatus) Label() string {
	switch {
	case s.Found:
		return "FOUND"
	case s.InTraces:
		return "TRACES"
	default:
		return "NOT FOUND"
	}
}

// MultiAllergenResult checks several allergens at once.
type MultiAllergenResult struct {
	Barcode       string           `json:"barcode"`
	ProductName   string           `json:"productName"`
	CheckResults  []AllergenStatus `json:"checkResults"`
	SafeToConsume bool             `json:"safeToConsume"`
	AllAllergens  []string         `json:"allAllergens"`
	Traces        []string         `json:"traces"`
}

// SafeToConsume is true iff no status is found in ingredients or traces.
func SafeToConsume(statuses []AllergenStatus) bool {
	for _, s := range statuses {
		if s.Found || s.InTraces {
			return false
		}
	}
	return true
}
