package core

// convert.go turns raw CSV cells into typed product fields.
//
// Vendors export from spreadsheets, so prices arrive with naira signs and
// thousands separators and stock counts arrive as "12" or " 12 " or "12.0".
// Each converter accepts the messy forms it reasonably can and reports the
// rest, except stock which falls back to zero.

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// numericRegex validates a price after currency glyphs and separators are gone.
// Matches plain integers and decimals only. Exponent notation is refused so
// a short cell such as "1e2000000000" cannot expand into billions of digits.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// maxPrice is the exclusive upper bound of an accepted price, matching
// twelve integer digits of a NUMERIC(14,2) column.
var maxPrice = decimal.New(1, 12)

// priceStripper removes the decorations vendors put around amounts.
var priceStripper = strings.NewReplacer(
	",", "",
	"₦", "", // Naira
	"$", "",
	"€", "", // Euro
	"£", "", // Pound
	" ", "",
)

// ParsePrice converts a price cell to a decimal amount.
// The second return is false when the cell is not a plain number or its
// magnitude reaches maxPrice.
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = priceStripper.Replace(strings.TrimSpace(s))
	if !numericRegex.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if d.Abs().Cmp(maxPrice) >= 0 {
		return decimal.Zero, false
	}
	return d, true
}

// ParseStock converts a stock cell to an integer. Anything that is not a
// plain base-10 integer yields zero; the second return reports whether the
// cell parsed.
func ParseStock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseVoiceTags splits a comma-separated tag cell, trimming each tag and
// dropping empties. It never returns nil.
func ParseVoiceTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// FormatVoiceTags is the inverse of ParseVoiceTags.
func FormatVoiceTags(tags []string) string {
	return strings.Join(tags, ",")
}

// optionalText trims s and returns nil when nothing is left.
func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// derefText returns the pointed-to string, or "" for nil.
func derefText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CleanHeader normalizes a header cell so "Name", " name " and "=\"name\""
// all match the name column.
func CleanHeader(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.ToLower(strings.TrimSpace(s))
}
