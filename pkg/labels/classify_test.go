package labels_test

import (
	"testing"

	"github.com/JaimeStill/labelsort/pkg/labels"
)

func newSorter(t *testing.T, opts ...labels.Option) *labels.Sorter {
	t.Helper()
	s, err := labels.New(labels.DefaultRules(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestProductClassifier(t *testing.T) {
	classifier := newSorter(t).Classifier(labels.ModeProduct)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled code", "Invoice No 123 SKU: ABC-123 Qty 2", "ABC-123"},
		{"label word kept inside key", "Order details SKU: SKU-001 Qty 1", "SKU-001"},
		{"product code label", "Product Code: XL_RED_02 shipped", "XL_RED_02"},
		{"quoted product name", `Product Name: "Cotton Kurta" Qty`, "Cotton-Kurta"},
		{"joined token", "deliver to Pune. item red_shirt_xl today", "red_shirt_xl"},
		{"uppercase code", "deliver quickly ABC12 now please", "ABC12"},
		{"mixed token", "please deliver kurta42 today at noon", "kurta42"},
		{"rejected candidate falls through", "SKU: 12345 then SKU: XYZ-9 follows", "XYZ-9"},
		{"model label", "Model: TEE99. and more words", "TEE99"},
		{"no pattern", "just plain words here without codes", "Product-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Key(labels.PageText{Index: 7, Text: tt.text})
			if got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProductClassifierStoplist(t *testing.T) {
	classifier := newSorter(t).Classifier(labels.ModeProduct)

	tests := []struct {
		name string
		text string
	}{
		{"marketplace name", "SKU: Meesho"},
		{"stop word", "SKU: TOTAL"},
		{"stop word mixed case", "Item Name: Invoice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Key(labels.PageText{Index: 3, Text: tt.text})
			if got != "Product-4" {
				t.Errorf("Key() = %q, want Product-4", got)
			}
		})
	}
}

func TestCourierClassifier(t *testing.T) {
	classifier := newSorter(t).Classifier(labels.ModeCourier)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"exact name", "Courier: Delhivery Surface", "Delhivery"},
		{"case insensitive with space", "shipped via XPRESS BEES express", "Xpress-Bees"},
		{"joined words", "BlueDart priority", "Blue-Dart"},
		{"list order wins over text order", "Blue Dart handover to Delhivery hub", "Delhivery"},
		{"unknown", "carried by a local runner", "Unknown-Courier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Key(labels.PageText{Index: 0, Text: tt.text})
			if got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCourierClassifierRepeatedPages(t *testing.T) {
	classifier := newSorter(t).Classifier(labels.ModeCourier)

	for i := range 3 {
		if got := classifier.Key(labels.PageText{Index: i, Text: "Delhivery Delhivery"}); got != "Delhivery" {
			t.Errorf("page %d: Key() = %q, want Delhivery", i, got)
		}
	}
}

func TestCustomRules(t *testing.T) {
	rules := labels.DefaultRules()
	rules.Marketplace = "flipkart"
	rules.Couriers = []labels.Courier{{Name: "Ekart", Pattern: `E\s*kart`}}

	s, err := labels.New(rules)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := s.Classifier(labels.ModeProduct).Key(labels.PageText{Text: "SKU: Flipkart"}); got != "Product-1" {
		t.Errorf("product Key() = %q, want Product-1", got)
	}
	if got := s.Classifier(labels.ModeCourier).Key(labels.PageText{Text: "via E kart logistics"}); got != "Ekart" {
		t.Errorf("courier Key() = %q, want Ekart", got)
	}
}

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*labels.Rules)
	}{
		{"zero ratio", func(r *labels.Rules) { r.LabelRatio = 0 }},
		{"ratio above one", func(r *labels.Rules) { r.LabelRatio = 1.5 }},
		{"inverted key bounds", func(r *labels.Rules) { r.MinKeyLength, r.MaxKeyLength = 10, 5 }},
		{"no product names", func(r *labels.Rules) { r.ProductNames = nil }},
		{"bad courier pattern", func(r *labels.Rules) { r.Couriers = []labels.Courier{{Name: "X", Pattern: "("}} }},
		{"unnamed courier", func(r *labels.Rules) { r.Couriers = []labels.Courier{{Pattern: "x"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := labels.DefaultRules()
			tt.modify(&rules)
			if _, err := labels.New(rules); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    labels.Mode
		wantErr bool
	}{
		{"", labels.ModeProduct, false},
		{"PRODUCT", labels.ModeProduct, false},
		{"courier", labels.ModeCourier, false},
		{" Courier ", labels.ModeCourier, false},
		{"weight", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := labels.ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
