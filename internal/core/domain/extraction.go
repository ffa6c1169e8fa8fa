package domain

// ExtractedBike is the structured guess returned by the extraction
// service for a free-text bike query. It is untrusted input: callers
// merge it into a bike draft and fall back to manual fields whenever a
// piece is missing or invalid.
type ExtractedBike struct {
	ExtractedName string     `json:"extracted_name"`
	ExtractedType BikeType   `json:"extracted_type"`
	Specs         *BikeSpecs `json:"specs,omitempty"`
}

// DealReport is the best-effort price search result for a product.
type DealReport struct {
	Text    string       `json:"text"`
	Sources []SpecSource `json:"sources,omitempty"`
}
