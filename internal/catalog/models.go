package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultColor    = "Standard"
	DefaultSize     = "One size"
	DefaultCurrency = "EUR"
	AllCategories   = "Alle"
)

type Options struct {
	Colors []string `yaml:"colors" json:"colors"`
	Sizes  []string `yaml:"sizes" json:"sizes"`
}

type Product struct {
	ID           string          `yaml:"id" json:"id"`
	Name         string          `yaml:"name" json:"name"`
	Category     string          `yaml:"category" json:"category,omitempty"`
	Price        decimal.Decimal `yaml:"price" json:"price"`
	Currency     string          `yaml:"currency" json:"currency"`
	ShippingTime string          `yaml:"shippingTime" json:"shipping_time"`
	Images       []string        `yaml:"images" json:"images"`
	Options      Options         `yaml:"options" json:"options"`
	Highlights   []string        `yaml:"highlights" json:"highlights,omitempty"`
	Details      []string        `yaml:"details" json:"details,omitempty"`
	Description  string          `yaml:"description" json:"description"`
}

// Colors returns the selectable colors, falling back to a single sentinel.
func (p Product) Colors() []string {
	if len(p.Options.Colors) == 0 {
		return []string{DefaultColor}
	}
	return p.Options.Colors
}

func (p Product) Sizes() []string {
	if len(p.Options.Sizes) == 0 {
		return []string{DefaultSize}
	}
	return p.Options.Sizes
}

func (p Product) searchText() string {
	return strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
}

type CouponKind string

const (
	CouponPercent CouponKind = "percent"
	CouponFixed   CouponKind = "fixed"
)

type CouponRule struct {
	Kind  CouponKind      `yaml:"type" json:"type"`
	Value decimal.Decimal `yaml:"value" json:"value"`
}

// NormalizeCode trims and uppercases a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
