package core

// validation.go checks one raw CSV row and produces a Product.
//
// Rules are applied in column order and the first failure wins, so a row
// with both a blank name and a bad price reports only the name.

import (
	"fmt"
)

// Validation messages surfaced to vendors in ImportError.Message.
const (
	msgNameRequired  = "name is required"
	msgInvalidPrice  = "invalid price: %s"
	msgNegativePrice = "price cannot be negative"
)

// ValidationError is a single field failure for a row.
type ValidationError struct {
	Row     int    // CSV line, header is 1
	Field   string // column name
	Value   string // the offending cell
	Message string // human-readable message
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateRow converts raw into a Product or returns a *ValidationError.
// VendorID and ID are left empty for the caller to fill in.
func ValidateRow(raw RawRow, row int) (Product, error) {
	name := optionalText(raw[ColName])
	if name == nil {
		return Product{}, &ValidationError{Row: row, Field: ColName, Message: msgNameRequired}
	}

	rawPrice := raw[ColPrice]
	price, ok := ParsePrice(rawPrice)
	if !ok {
		return Product{}, &ValidationError{
			Row:     row,
			Field:   ColPrice,
			Value:   rawPrice,
			Message: fmt.Sprintf(msgInvalidPrice, rawPrice),
		}
	}
	if price.IsNegative() {
		return Product{}, &ValidationError{Row: row, Field: ColPrice, Value: rawPrice, Message: msgNegativePrice}
	}

	stock, _ := ParseStock(raw[ColStockLevel])
	if stock < 0 {
		stock = 0
	}

	return Product{
		Name:        *name,
		Price:       price,
		StockLevel:  stock,
		Category:    optionalText(raw[ColCategory]),
		Description: optionalText(raw[ColDescription]),
		VoiceTags:   ParseVoiceTags(raw[ColVoiceTags]),
		ImageURL:    optionalText(raw[ColImageURL]),
	}, nil
}
