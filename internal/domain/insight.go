package domain

// QuestionRecord is an AI-generated question awaiting human confirmation.
type QuestionRecord struct {
	Barcode     string `json:"barcode"`
	Type        string `json:"type"`
	Value       string `json:"value"`
	Question    string `json:"question"`
	InsightID   string `json:"insightId"`
	InsightType string `json:"insightType"`
	ImageURL    string `json:"imageUrl"`
}

// QuestionsResult wraps a list of questions.
type QuestionsResult struct {
	Status    string           `json:"status"`
	Questions []QuestionRecord `json:"questions"`
	Count     int              `json:"count"`
}

// InsightRecord is an AI-generated candidate fact about a product.
type InsightRecord struct {
	ID          string  `json:"id"`
	Barcode     string  `json:"barcode"`
	Type        string  `json:"type"`
	Value       string  `json:"value"`
	ValueTag    string  `json:"valueTag"`
	Confidence  float64 `json:"confidence"`
	LatestEvent string  `json:"latestEvent"`
	Predictor   string  `json:"predictor"`
}

// InsightsResult wraps a list of insights.
type InsightsResult struct {
	Status   string          `json:"status"`
	Insights []InsightRecord `json:"insights"`
	Count    int             `json:"count"`
}

// QuestionQuery selects questions. An empty Barcode asks for random ones.
type QuestionQuery struct {
	Barcode     string
	InsightType string
	Lang        string
	Count       int
}

// InsightQuery filters the insights endpoint.
type InsightQuery struct {
	Barcode     string
	InsightType string
	Country     string
	Count       int
	Page        int
}

// InsightType describes one kind of Robotoff insight.
type InsightType struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}
