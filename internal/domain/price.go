package domain

// PriceRecord is one crowd-sourced price observation.
type PriceRecord struct {
	ProductCode  string  `json:"productCode"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	LocationName string  `json:"locationName"`
	LocationID   int64   `json:"locationId"`
	Date         string  `json:"date"`
	ProofID      int64   `json:"proofId"`
}

// PricePage is one page of price records.
type PricePage struct {
	Prices   []PriceRecord `json:"prices"`
	Count    int           `json:"count"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// PriceQuery filters the prices endpoint. Empty fields are not sent.
type PriceQuery struct {
	Barcode  string
	Currency string
	OrderBy  string
	Page     int
	PageSize int
}
