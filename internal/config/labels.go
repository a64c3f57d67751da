package config

import (
	"fmt"

	"github.com/JaimeStill/labelsort/pkg/envvar"
	"github.com/JaimeStill/labelsort/pkg/labels"
)

const (
	EnvLabelsMinTextLength      = "LABELSORT_LABELS_MIN_TEXT_LENGTH"
	EnvLabelsMinChunkLength     = "LABELSORT_LABELS_MIN_CHUNK_LENGTH"
	EnvLabelsMinKeyLength       = "LABELSORT_LABELS_MIN_KEY_LENGTH"
	EnvLabelsMaxKeyLength       = "LABELSORT_LABELS_MAX_KEY_LENGTH"
	EnvLabelsStoplist           = "LABELSORT_LABELS_STOPLIST"
	EnvLabelsMarketplace        = "LABELSORT_LABELS_MARKETPLACE"
	EnvLabelsLabelRatio         = "LABELSORT_LABELS_LABEL_RATIO"
	EnvLabelsMaxConcurrentSorts = "LABELSORT_LABELS_MAX_CONCURRENT_SORTS"
)

// LabelsConfig holds the classification heuristics and sort admission limits.
// Zero values take the built-in marketplace defaults.
type LabelsConfig struct {
	MinTextLength      int              `toml:"min_text_length"`
	MinChunkLength     int              `toml:"min_chunk_length"`
	MinKeyLength       int              `toml:"min_key_length"`
	MaxKeyLength       int              `toml:"max_key_length"`
	Stoplist           []string         `toml:"stoplist"`
	Marketplace        string           `toml:"marketplace"`
	LabelRatio         float64          `toml:"label_ratio"`
	UnknownCourier     string           `toml:"unknown_courier"`
	ProductNames       []string         `toml:"product_names"`
	CourierNames       []string         `toml:"courier_names"`
	Couriers           []labels.Courier `toml:"couriers"`
	MaxConcurrentSorts int              `toml:"max_concurrent_sorts"`
}

// Rules converts the section into pipeline rules.
func (c *LabelsConfig) Rules() labels.Rules {
	return labels.Rules{
		MinTextLength:  c.MinTextLength,
		MinChunkLength: c.MinChunkLength,
		MinKeyLength:   c.MinKeyLength,
		MaxKeyLength:   c.MaxKeyLength,
		Stoplist:       c.Stoplist,
		Marketplace:    c.Marketplace,
		LabelRatio:     c.LabelRatio,
		UnknownCourier: c.UnknownCourier,
		ProductNames:   c.ProductNames,
		CourierNames:   c.CourierNames,
		Couriers:       c.Couriers,
	}
}

// Finalize applies defaults, environment overrides, and validation.
func (c *LabelsConfig) Finalize() error {
	c.loadDefaults()

	envvar.Int(&c.MinTextLength, EnvLabelsMinTextLength)
	envvar.Int(&c.MinChunkLength, EnvLabelsMinChunkLength)
	envvar.Int(&c.MinKeyLength, EnvLabelsMinKeyLength)
	envvar.Int(&c.MaxKeyLength, EnvLabelsMaxKeyLength)
	envvar.List(&c.Stoplist, EnvLabelsStoplist)
	envvar.String(&c.Marketplace, EnvLabelsMarketplace)
	envvar.Float(&c.LabelRatio, EnvLabelsLabelRatio)
	envvar.Int(&c.MaxConcurrentSorts, EnvLabelsMaxConcurrentSorts)

	if c.MaxConcurrentSorts < 1 {
		return fmt.Errorf("max_concurrent_sorts must be at least 1: %d", c.MaxConcurrentSorts)
	}
	return c.Rules().Validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LabelsConfig) Merge(overlay *LabelsConfig) {
	if overlay.MinTextLength != 0 {
		c.MinTextLength = overlay.MinTextLength
	}
	if overlay.MinChunkLength != 0 {
		c.MinChunkLength = overlay.MinChunkLength
	}
	if overlay.MinKeyLength != 0 {
		c.MinKeyLength = overlay.MinKeyLength
	}
	if overlay.MaxKeyLength != 0 {
		c.MaxKeyLength = overlay.MaxKeyLength
	}
	if overlay.Stoplist != nil {
		c.Stoplist = overlay.Stoplist
	}
	if overlay.Marketplace != "" {
		c.Marketplace = overlay.Marketplace
	}
	if overlay.LabelRatio != 0 {
		c.LabelRatio = overlay.LabelRatio
	}
	if overlay.UnknownCourier != "" {
		c.UnknownCourier = overlay.UnknownCourier
	}
	if overlay.ProductNames != nil {
		c.ProductNames = overlay.ProductNames
	}
	if overlay.CourierNames != nil {
		c.CourierNames = overlay.CourierNames
	}
	if overlay.Couriers != nil {
		c.Couriers = overlay.Couriers
	}
	if overlay.MaxConcurrentSorts != 0 {
		c.MaxConcurrentSorts = overlay.MaxConcurrentSorts
	}
}

func (c *LabelsConfig) loadDefaults() {
	d := labels.DefaultRules()

	if c.MinTextLength == 0 {
		c.MinTextLength = d.MinTextLength
	}
	if c.MinChunkLength == 0 {
		c.MinChunkLength = d.MinChunkLength
	}
	if c.MinKeyLength == 0 {
		c.MinKeyLength = d.MinKeyLength
	}
	if c.MaxKeyLength == 0 {
		c.MaxKeyLength = d.MaxKeyLength
	}
	if c.Stoplist == nil {
		c.Stoplist = d.Stoplist
	}
	if c.Marketplace == "" {
		c.Marketplace = d.Marketplace
	}
	if c.LabelRatio == 0 {
		c.LabelRatio = d.LabelRatio
	}
	if c.UnknownCourier == "" {
		c.UnknownCourier = d.UnknownCourier
	}
	if c.ProductNames == nil {
		c.ProductNames = d.ProductNames
	}
	if c.CourierNames == nil {
		c.CourierNames = d.CourierNames
	}
	if c.Couriers == nil {
		c.Couriers = d.Couriers
	}
	if c.MaxConcurrentSorts == 0 {
		c.MaxConcurrentSorts = 2
	}
}

// LoadLabels reads only the [labels] section of the TOML file at path. An
// empty path applies defaults and environment overrides alone.
func LoadLabels(path string) (*LabelsConfig, error) {
	labelsCfg := &LabelsConfig{}
	if path != "" {
		cfg, err := load(path)
		if err != nil {
			return nil, err
		}
		labelsCfg = &cfg.Labels
	}

	if err := labelsCfg.Finalize(); err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	return labelsCfg, nil
}
