package catalog

import (
	_ "embed"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

//go:embed default.yaml
var defaultYAML []byte

var hundred = decimal.NewFromInt(100)

// Catalog is the read-only product list plus coupon table. It is never mutated
// after construction and is safe to share between goroutines.
type Catalog struct {
	products []Product
	byID     map[string]int
	coupons  map[string]CouponRule
	currency string
}

type file struct {
	Products []Product             `yaml:"products"`
	Coupons  map[string]CouponRule `yaml:"coupons"`
}

func New(products []Product, coupons map[string]CouponRule) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
		coupons:  make(map[string]CouponRule, len(coupons)),
	}
	for _, p := range products {
		if p.ID == "" {
			return nil, errors.Wrap(ErrInvalidCatalog, "product without id")
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, errors.Wrapf(ErrInvalidCatalog, "duplicate product id %q", p.ID)
		}
		if p.Price.IsNegative() {
			return nil, errors.Wrapf(ErrInvalidCatalog, "negative price for %q", p.ID)
		}
		if p.Currency == "" {
			p.Currency = DefaultCurrency
		}
		p.Currency = strings.ToUpper(p.Currency)
		if c.currency == "" {
			c.currency = p.Currency
		} else if c.currency != p.Currency {
			return nil, errors.Wrapf(ErrInvalidCatalog, "mixed currencies %s and %s", c.currency, p.Currency)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	if c.currency == "" {
		c.currency = DefaultCurrency
	}

	for code, r := range coupons {
		code = NormalizeCode(code)
		if code == "" {
			return nil, errors.Wrap(ErrInvalidCatalog, "empty coupon code")
		}
		switch r.Kind {
		case CouponPercent:
			if r.Value.IsNegative() || r.Value.GreaterThan(hundred) {
				return nil, errors.Wrapf(ErrInvalidCatalog, "coupon %s: percent must be 0-100", code)
			}
		case CouponFixed:
			if r.Value.IsNegative() {
				return nil, errors.Wrapf(ErrInvalidCatalog, "coupon %s: fixed value cannot be negative", code)
			}
		default:
			return nil, errors.Wrapf(ErrInvalidCatalog, "coupon %s: unknown type %q", code, r.Kind)
		}
		c.coupons[code] = r
	}
	return c, nil
}

func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return New(f.Products, f.Coupons)
}

func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return Parse(b)
}

// Default is the built-in demo catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Currency() string { return c.currency }

func (c *Catalog) Find(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Get(id string) (Product, error) {
	p, ok := c.Find(id)
	if !ok {
		return Product{}, errors.Wrapf(ErrProductNotFound, "id=%s", id)
	}
	return p, nil
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Coupon looks up a rule by code; the code is normalized first.
func (c *Catalog) Coupon(code string) (CouponRule, bool) {
	r, ok := c.coupons[NormalizeCode(code)]
	return r, ok
}

func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Search filters by category ("" or "Alle" = all) and a case-insensitive
// substring of name, description and category. Catalog order is kept.
func (c *Catalog) Search(query, category string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []Product{}
	for _, p := range c.products {
		if category != "" && category != AllCategories && p.Category != category {
			continue
		}
		if q != "" && !strings.Contains(p.searchText(), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories lists "Alle" followed by each distinct category in catalog order.
func (c *Catalog) Categories() []string {
	out := []string{AllCategories}
	seen := map[string]bool{}
	for _, p := range c.products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
