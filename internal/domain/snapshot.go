package domain

import "strings"

// Field identifies a snapshot attribute a transition depends on
type Field uint8

const (
	FieldName Field = 1 << iota
	FieldCountry
	FieldPrices
	FieldFloors
	FieldImage
)

// Snapshot is one scrape of current market data; every field may be empty
type Snapshot struct {
	Name            string `json:"name"`
	Country         string `json:"country"`
	Rating          string `json:"rating"`
	Card            string `json:"card"`
	PricePC         string `json:"pricePC"`
	PriceConsole    string `json:"priceConsole"`
	MinPCPrice      string `json:"minPCPrice"`
	MinConsolePrice string `json:"minConsolePrice"`
	Image           []byte `json:"image"`
}

// Has reports whether all fields in want are populated
func (s *Snapshot) Has(want Field) bool {
	if s == nil {
		return false
	}
	if want&FieldName != 0 && blank(s.Name) {
		return false
	}
	if want&FieldCountry != 0 && blank(s.Country) {
		return false
	}
	if want&FieldPrices != 0 && (blank(s.PricePC) || blank(s.PriceConsole)) {
		return false
	}
	if want&FieldFloors != 0 && (blank(s.MinPCPrice) || blank(s.MinConsolePrice)) {
		return false
	}
	if want&FieldImage != 0 && len(s.Image) == 0 {
		return false
	}
	return true
}

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}

// Required snapshot fields per transition
const (
	OpenFields   = FieldName | FieldCountry | FieldPrices | FieldFloors
	ProfitFields = FieldPrices | FieldImage
	ExitFields   = FieldImage
)
