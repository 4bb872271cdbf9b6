package off

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// number decodes upstream numeric fields that sometimes arrive as strings
// ("4"), as empty strings, or as null. Valid is false when no usable value
// was present.
type number struct {
	Value float64
	Valid bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	*n = number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		n.Value, n.Valid = f, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return nil
		}
		n.Value, n.Valid = f, true
	}
	return nil
}

// Ptr returns nil when the value is unavailable.
func (n number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Int truncates the value, returning 0 when unavailable.
func (n number) Int() int {
	if !n.Valid {
		return 0
	}
	return int(n.Value)
}

// text decodes fields that are a string in the product API and a list in
// the search service (brands, categories). Lists are joined with ", ".
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	*t = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = text(s)
		}
	case '[':
		var parts []string
		if err := json.Unmarshal(data, &parts); err == nil {
			*t = text(strings.Join(parts, ", "))
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*t = text(data)
	}
	return nil
}

type rawProduct struct {
	ID                    text              `json:"_id"`
	Code                  text              `json:"code"`
	ProductName           text              `json:"product_name"`
	Brands                text              `json:"brands"`
	ImageURL              string            `json:"image_url"`
	ImageFrontURL         string            `json:"image_front_url"`
	IngredientsText       text              `json:"ingredients_text"`
	Allergens             text              `json:"allergens"`
	AllergensTags         []string          `json:"allergens_tags"`
	AllergensHierarchy    []string          `json:"allergens_hierarchy"`
	TracesTags            []string          `json:"traces_tags"`
	AdditivesTags         []string          `json:"additives_tags"`
	AdditivesOriginalTags []string          `json:"additives_original_tags"`
	NutriscoreGrade       text              `json:"nutriscore_grade"`
	NutritionGrades       text              `json:"nutrition_grades"`
	NutriscoreScore       number            `json:"nutriscore_score"`
	EcoscoreGrade         text              `json:"ecoscore_grade"`
	EcoscoreScore         number            `json:"ecoscore_score"`
	NovaGroup             number            `json:"nova_group"`
	Categories            text              `json:"categories"`
	Countries             text              `json:"countries"`
	Labels                text              `json:"labels"`
	Packaging             text              `json:"packaging"`
	Origins               text              `json:"origins"`
	Nutriments            map[string]number `json:"nutriments"`
}

type productEnvelope struct {
	Code          text        `json:"code"`
	Status        number      `json:"status"`
	StatusVerbose string      `json:"status_verbose"`
	Product       *rawProduct `json:"product"`
}

// searchResponse covers both the legacy search and the facet pages.
type searchResponse struct {
	Count    number       `json:"count"`
	Page     number       `json:"page"`
	PageSize number       `json:"page_size"`
	Products []rawProduct `json:"products"`
}

type advancedSearchResponse struct {
	Hits      []rawProduct    `json:"hits"`
	Count     number          `json:"count"`
	Page      number          `json:"page"`
	PageSize  number          `json:"page_size"`
	PageCount number          `json:"page_count"`
	Errors    json.RawMessage `json:"errors"`
}

type autocompleteResponse struct {
	Options []struct {
		ID           string `json:"id"`
		Text         string `json:"text"`
		TaxonomyName string `json:"taxonomy_name"`
	} `json:"options"`
}

type rawPrice struct {
	ProductCode text   `json:"product_code"`
	Price       number `json:"price"`
	Currency    string `json:"currency"`
	LocationID  number `json:"location_id"`
	Date        string `json:"date"`
	ProofID     number `json:"proof_id"`
	Location    *struct {
		OSMDisplayName string `json:"osm_display_name"`
	} `json:"location"`
}

type pricesResponse struct {
	Items []rawPrice `json:"items"`
	Total number     `json:"total"`
}

type rawQuestion struct {
	Barcode        text   `json:"barcode"`
	Type           string `json:"type"`
	Value          text   `json:"value"`
	Question       string `json:"question"`
	InsightID      text   `json:"insight_id"`
	InsightType    string `json:"insight_type"`
	SourceImageURL string `json:"source_image_url"`
}

type questionsResponse struct {
	Status    string        `json:"status"`
	Questions []rawQuestion `json:"questions"`
}

type rawInsight struct {
	ID          text   `json:"id"`
	Barcode     text   `json:"barcode"`
	Type        string `json:"type"`
	Value       text   `json:"value"`
	ValueTag    text   `json:"value_tag"`
	Confidence  number `json:"confidence"`
	LatestEvent text   `json:"latest_event"`
	Predictor   text   `json:"predictor"`
}

type insightsResponse struct {
	Status   string       `json:"status"`
	Insights []rawInsight `json:"insights"`
	Count    number       `json:"count"`
}
