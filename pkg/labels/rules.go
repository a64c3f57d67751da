package labels

import (
	"fmt"
	"regexp"
)

// Courier pairs a carrier group key with the case-insensitive pattern that detects it.
type Courier struct {
	Name    string `toml:"name" json:"name"`
	Pattern string `toml:"pattern" json:"pattern"`
}

// Rules holds the heuristic constants of the pipeline. They are tuned to one
// marketplace's label layout and are exposed so deployments can retune them.
type Rules struct {
	// MinTextLength is the trimmed extracted-text length below which a document is treated as unreadable.
	MinTextLength int
	// MinChunkLength is the trimmed page-chunk length a chunk must exceed to be classified.
	MinChunkLength int
	MinKeyLength   int
	MaxKeyLength   int
	// Stoplist holds words that are never accepted as product keys (case-insensitive).
	Stoplist []string
	// Marketplace is appended to the stoplist.
	Marketplace string
	// LabelRatio is the fraction of page height, measured from the top, kept when stripping invoices.
	LabelRatio     float64
	UnknownCourier string
	// ProductNames and CourierNames are assigned cyclically when no usable text exists.
	ProductNames []string
	CourierNames []string
	Couriers     []Courier
}

// DefaultRules returns the rules tuned for the Meesho bulk label export.
func DefaultRules() Rules {
	return Rules{
		MinTextLength:  50,
		MinChunkLength: 20,
		MinKeyLength:   3,
		MaxKeyLength:   30,
		Stoplist: []string{
			"the", "and", "for", "with", "size", "color", "price", "qty",
			"total", "page", "invoice", "bill", "ship", "sold", "order",
		},
		Marketplace:    "meesho",
		LabelRatio:     0.44,
		UnknownCourier: "Unknown-Courier",
		ProductNames: []string{
			"Temp-Red-01-A", "Ring-Blue-02-B", "Shirt-Green-03-C", "Pants-Black-04-D",
			"Jacket-Yellow-05-E", "Shoes-Pink-06-F", "Hat-Purple-07-G", "Socks-Orange-08-H",
		},
		CourierNames: []string{
			"Delhivery", "Xpress-Bees", "Blue-Dart", "DTDC", "Fedex", "Shiprocket",
		},
		Couriers: []Courier{
			{Name: "Delhivery", Pattern: `Delhivery`},
			{Name: "Xpress-Bees", Pattern: `Xpress\s*Bees`},
			{Name: "Blue-Dart", Pattern: `Blue\s*Dart`},
			{Name: "DTDC", Pattern: `DTDC`},
			{Name: "Fedex", Pattern: `Fedex`},
			{Name: "Shiprocket", Pattern: `Shiprocket`},
		},
	}
}

// Validate reports the first rule that cannot drive the pipeline.
func (r Rules) Validate() error {
	if r.MinTextLength < 0 || r.MinChunkLength < 0 {
		return fmt.Errorf("text length thresholds must not be negative")
	}
	if r.MinKeyLength < 1 || r.MaxKeyLength < r.MinKeyLength {
		return fmt.Errorf("invalid key length bounds [%d,%d]", r.MinKeyLength, r.MaxKeyLength)
	}
	if r.LabelRatio <= 0 || r.LabelRatio > 1 {
		return fmt.Errorf("label ratio must be in (0,1]: %v", r.LabelRatio)
	}
	if r.UnknownCourier == "" {
		return fmt.Errorf("unknown courier key required")
	}
	if len(r.ProductNames) == 0 || len(r.CourierNames) == 0 {
		return fmt.Errorf("fallback name lists must not be empty")
	}
	for _, c := range r.Couriers {
		if c.Name == "" {
			return fmt.Errorf("courier name required")
		}
		if _, err := regexp.Compile(c.Pattern); err != nil {
			return fmt.Errorf("courier %s: %w", c.Name, err)
		}
	}
	return nil
}

func (r Rules) fallbackNames(mode Mode) []string {
	if mode == ModeCourier {
		return r.CourierNames
	}
	return r.ProductNames
}
