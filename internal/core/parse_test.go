package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const header = "name,price_ngn,stock_level,category,description,voice_tags,image_url\n"

// ============================================================================
// ValidateRow
// ============================================================================

func TestValidateRow(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawRow
		wantErr string
	}{
		{"valid minimal", RawRow{"name": "Rice", "price_ngn": "5000"}, ""},
		{"blank name", RawRow{"name": "   ", "price_ngn": "5000"}, "name is required"},
		{"missing name column", RawRow{"price_ngn": "5000"}, "name is required"},
		{"unparseable price", RawRow{"name": "Rice", "price_ngn": "abc"}, "invalid price: abc"},
		{"empty price", RawRow{"name": "Rice", "price_ngn": ""}, "invalid price: "},
		{"negative price", RawRow{"name": "Rice", "price_ngn": "-1"}, "price cannot be negative"},
		{"name checked before price", RawRow{"name": "", "price_ngn": "abc"}, "name is required"},
		{"exponent price", RawRow{"name": "Rice", "price_ngn": "1e400"}, "invalid price: 1e400"},
		{"huge exponent price", RawRow{"name": "Rice", "price_ngn": "1e2000000000"}, "invalid price: 1e2000000000"},
		{"price past max", RawRow{"name": "Rice", "price_ngn": "₦1,000,000,000,000"}, "invalid price: ₦1,000,000,000,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateRow(tt.raw, 5)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Row != 5 {
				t.Errorf("expected *ValidationError with row 5, got %#v", err)
			}
		})
	}
}

func TestValidateRow_Normalizes(t *testing.T) {
	p, err := ValidateRow(RawRow{
		"name":        "  Jollof Spice ",
		"price_ngn":   "₦1,500.25",
		"stock_level": "not a number",
		"category":    "  ",
		"description": " Hot blend ",
		"voice_tags":  "spice, , jollof",
		"image_url":   "",
	}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Name != "Jollof Spice" {
		t.Errorf("Name = %q", p.Name)
	}
	if !p.Price.Equal(decimal.RequireFromString("1500.25")) {
		t.Errorf("Price = %s", p.Price)
	}
	if p.StockLevel != 0 {
		t.Errorf("StockLevel = %d, want 0", p.StockLevel)
	}
	if p.Category != nil {
		t.Errorf("Category = %q, want nil", *p.Category)
	}
	if p.Description == nil || *p.Description != "Hot blend" {
		t.Errorf("Description = %v", p.Description)
	}
	if !reflect.DeepEqual(p.VoiceTags, []string{"spice", "jollof"}) {
		t.Errorf("VoiceTags = %#v", p.VoiceTags)
	}
	if p.ImageURL != nil {
		t.Errorf("ImageURL = %q, want nil", *p.ImageURL)
	}
}

func TestValidateRow_NegativeStockCoercesToZero(t *testing.T) {
	p, err := ValidateRow(RawRow{"name": "Rice", "price_ngn": "1", "stock_level": "-4"}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.StockLevel != 0 {
		t.Errorf("StockLevel = %d, want 0", p.StockLevel)
	}
}

// ============================================================================
// ParseCSV
// ============================================================================

func TestParseCSV_PartitionsRows(t *testing.T) {
	text := header +
		"Rice,5000,10,Grains,,,\n" +
		",100,1,,,,\n" +
		"Beans,abc,1,,,,\n" +
		"Oil,-5,1,,,,\n" +
		"Yam,\"₦2,000\",3,,,\"a,b\",\n"

	records, errs := ParseCSVString(context.Background(), text)

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if len(errs) != 3 {
		t.Fatalf("len(errs) = %d, want 3: %#v", len(errs), errs)
	}
	if len(records)+len(errs) != 5 {
		t.Errorf("every data row must land in exactly one output")
	}

	if records[0].Row != 2 || records[0].Product.Name != "Rice" {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Row != 6 || records[1].Product.Name != "Yam" {
		t.Errorf("records[1] = %+v", records[1])
	}
	if !records[1].Product.Price.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("Yam price = %s", records[1].Product.Price)
	}

	wantErrs := []struct {
		row int
		msg string
	}{
		{3, "name is required"},
		{4, "invalid price: abc"},
		{5, "price cannot be negative"},
	}
	for i, want := range wantErrs {
		if errs[i].Row != want.row || errs[i].Message != want.msg || errs[i].Kind != KindValidation {
			t.Errorf("errs[%d] = %+v, want row %d %q", i, errs[i], want.row, want.msg)
		}
		if errs[i].Data == nil {
			t.Errorf("errs[%d] should carry the raw row", i)
		}
	}
}

func TestParseCSV_ExponentPriceIsRowError(t *testing.T) {
	text := header + "Rice,1e2000000000,1,,,,\nBeans,1e400,1,,,,\nYam,700,1,,,,\n"

	records, errs := ParseCSVString(context.Background(), text)

	if len(records) != 1 || records[0].Product.Name != "Yam" {
		t.Fatalf("records = %+v, want only Yam", records)
	}
	if len(errs) != 2 {
		t.Fatalf("errs = %+v, want 2", errs)
	}
	if errs[0].Row != 2 || errs[0].Message != "invalid price: 1e2000000000" {
		t.Errorf("errs[0] = %+v", errs[0])
	}
	if errs[1].Row != 3 || errs[1].Message != "invalid price: 1e400" {
		t.Errorf("errs[1] = %+v", errs[1])
	}
}

func TestParseCSV_RowIndexIsOneBasedWithHeader(t *testing.T) {
	text := header + ",1,,,,,\n"
	_, errs := ParseCSVString(context.Background(), text)
	if len(errs) != 1 || errs[0].Row != 2 {
		t.Fatalf("errs = %+v, want one error at row 2", errs)
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	records, errs := ParseCSVString(context.Background(), header)
	if len(records) != 0 || len(errs) != 0 {
		t.Errorf("got %d records, %d errors; want none", len(records), len(errs))
	}
	if records == nil || errs == nil {
		t.Error("outputs should be empty, not nil")
	}
}

func TestParseCSV_EmptyInput(t *testing.T) {
	records, errs := ParseCSVString(context.Background(), "")
	if len(records) != 0 || len(errs) != 0 {
		t.Errorf("got %d records, %d errors; want none", len(records), len(errs))
	}
}

func TestParseCSV_StructuralFailure(t *testing.T) {
	text := header + "Rice,5000,1,,,,\nRi\"ce,5,1,,,,\n"

	records, errs := ParseCSVString(context.Background(), text)

	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
	if len(errs) != 1 {
		t.Fatalf("len(errs) = %d, want 1", len(errs))
	}
	if errs[0].Row != 0 || errs[0].Kind != KindParse {
		t.Errorf("errs[0] = %+v, want row 0 parse error", errs[0])
	}
	if !strings.HasPrefix(errs[0].Message, "CSV parse error") {
		t.Errorf("message = %q", errs[0].Message)
	}
}

func TestParseCSV_HeaderCaseAndBOM(t *testing.T) {
	text := "\xEF\xBB\xBFName, Price_NGN ,STOCK_LEVEL\nRice,100,2\n"

	records, errs := ParseCSVString(context.Background(), text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(records) != 1 || records[0].Product.Name != "Rice" || records[0].Product.StockLevel != 2 {
		t.Errorf("records = %+v", records)
	}
}

func TestParseCSV_InvalidUTF8IsReplaced(t *testing.T) {
	text := header + "Caf\xe9,100,1,,,,\n"

	records, errs := ParseCSVString(context.Background(), text)
	if len(errs) != 0 || len(records) != 1 {
		t.Fatalf("records=%d errs=%+v", len(records), errs)
	}
	if records[0].Product.Name != "Caf\uFFFD" {
		t.Errorf("Name = %q", records[0].Product.Name)
	}
}

func TestParseCSV_ShortAndLongRows(t *testing.T) {
	text := header + "Rice,100\nBeans,200,3,Grains,desc,tag,http://img,extra\n"

	records, errs := ParseCSVString(context.Background(), text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Product.Category != nil || records[0].Product.StockLevel != 0 {
		t.Errorf("short row should default missing cells: %+v", records[0].Product)
	}
	if records[1].Product.ImageURL == nil || *records[1].Product.ImageURL != "http://img" {
		t.Errorf("long row image = %v", records[1].Product.ImageURL)
	}
}

func TestParseCSV_TemplateRoundTrip(t *testing.T) {
	records, errs := ParseCSVString(context.Background(), GenerateTemplate())
	if len(errs) != 0 {
		t.Fatalf("template produced errors: %+v", errs)
	}
	if len(records) != 1 {
		t.Fatalf("template produced %d records, want 1", len(records))
	}
	p := records[0].Product
	if p.Name != "Example Product" || !p.Price.Equal(decimal.NewFromInt(5000)) || p.StockLevel != 10 {
		t.Errorf("template record = %+v", p)
	}
	if !reflect.DeepEqual(p.VoiceTags, []string{"tag1", "tag2", "tag3"}) {
		t.Errorf("VoiceTags = %#v", p.VoiceTags)
	}
	if p.ImageURL != nil {
		t.Errorf("ImageURL should be absent")
	}
}
