package cart

import (
	"context"

	"github.com/ariefcatur/go-heritage-shop.git/internal/catalog"
	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
	"github.com/ariefcatur/go-heritage-shop.git/internal/pricing"
)

const (
	StorageKey  = "shop_cart_v1"
	MaxQuantity = 99
)

// Line is one persisted cart row. Identity is (ProductID, Color, Size), encoded in Key.
type Line struct {
	Key       string `json:"key"`
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

// Entry is a displayable line: its persisted position plus the resolved product.
type Entry struct {
	Index   int             `json:"index"`
	Line    Line            `json:"line"`
	Product catalog.Product `json:"product"`
}

func LineKey(productID, color, size string) string {
	return productID + "__" + color + "__" + size
}

type Store struct {
	kv kv.Store
}

func NewStore(s kv.Store) *Store {
	return &Store{kv: s}
}

// Lines returns every persisted line, including those whose product is gone.
// Unreadable data reads as an empty cart.
func (s *Store) Lines(ctx context.Context) ([]Line, error) {
	var lines []Line
	ok, err := kv.GetJSON(ctx, s.kv, StorageKey, &lines)
	if err != nil {
		return nil, err
	}
	if !ok || lines == nil {
		return []Line{}, nil
	}
	return lines, nil
}

func (s *Store) save(ctx context.Context, lines []Line) error {
	return kv.SetJSON(ctx, s.kv, StorageKey, lines)
}

// Add merges into an existing line with the same identity or appends a new one.
// qty below 1 is raised to 1. It returns the new aggregate item count.
func (s *Store) Add(ctx context.Context, productID, color, size string, qty int) (int, error) {
	if color == "" {
		color = catalog.DefaultColor
	}
	if size == "" {
		size = catalog.DefaultSize
	}
	if qty < 1 {
		qty = 1
	}
	lines, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}

	key := LineKey(productID, color, size)
	merged := false
	for i := range lines {
		if lines[i].Key == key {
			lines[i].Qty = clamp(lines[i].Qty + qty)
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, Line{Key: key, ProductID: productID, Color: color, Size: size, Qty: clamp(qty)})
	}

	if err := s.save(ctx, lines); err != nil {
		return 0, err
	}
	return count(lines), nil
}

// SetQuantity replaces the quantity at index, bounded to [1, MaxQuantity].
// Out-of-range indexes are a no-op and report false.
func (s *Store) SetQuantity(ctx context.Context, index, qty int) (bool, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(lines) {
		return false, nil
	}
	lines[index].Qty = clamp(qty)
	return true, s.save(ctx, lines)
}

// Remove deletes the line at index; out-of-range indexes are a no-op.
func (s *Store) Remove(ctx context.Context, index int) (bool, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(lines) {
		return false, nil
	}
	lines = append(lines[:index], lines[index+1:]...)
	return true, s.save(ctx, lines)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.save(ctx, []Line{})
}

// Count sums quantities across all persisted lines, missing products included.
func (s *Store) Count(ctx context.Context) (int, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}
	return count(lines), nil
}

// List returns lines whose product still exists, in insertion order. Lines
// pointing at missing products are skipped but left in storage.
func (s *Store) List(ctx context.Context, cat *catalog.Catalog) ([]Entry, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(lines))
	for i, l := range lines {
		p, ok := cat.Find(l.ProductID)
		if !ok {
			continue
		}
		out = append(out, Entry{Index: i, Line: l, Product: p})
	}
	return out, nil
}

func PricingLines(entries []Entry) []pricing.Line {
	out := make([]pricing.Line, 0, len(entries))
	for _, e := range entries {
		out = append(out, pricing.Line{ProductID: e.Line.ProductID, Qty: e.Line.Qty})
	}
	return out
}

func count(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Qty
	}
	return n
}

func clamp(qty int) int {
	if qty < 1 {
		return 1
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}
