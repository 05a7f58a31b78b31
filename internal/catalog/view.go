// Package catalog holds the client-side view over the fetched product list:
// text search and sorting happen locally, without refetching.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/andresfq/mercadito/internal/model"
)

// SortKey names the supported orderings.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortName      SortKey = "name"
)

// Valid reports whether the key is one of the known orderings.
func (k SortKey) Valid() bool {
	switch k {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortName:
		return true
	}
	return false
}

// View filters and sorts a fetched catalog. The original fetch order is kept
// so clearing the query restores it.
type View struct {
	fetched []model.Product

	query string
	key   SortKey

	collator *collate.Collator
}

// NewView builds an empty view sorted by fetch order.
func NewView() *View {
	return &View{
		key:      SortNewest,
		collator: collate.New(language.Spanish, collate.IgnoreCase),
	}
}

// Load replaces the fetched list and keeps the current query and sort.
func (v *View) Load(products []model.Product) {
	v.fetched = append(v.fetched[:0], products...)
}

// Search sets the text filter. An empty query restores the full list in its
// original order (subject to the current sort).
func (v *View) Search(query string) {
	v.query = strings.TrimSpace(query)
}

// SortBy sets the ordering.
func (v *View) SortBy(key SortKey) error {
	if !key.Valid() {
		return fmt.Errorf("validation: unknown sort key %q", key)
	}
	v.key = key
	return nil
}

// Query returns the active text filter.
func (v *View) Query() string { return v.query }

// Key returns the active ordering.
func (v *View) Key() SortKey { return v.key }

// Products returns the filtered, sorted list. Filtering happens before
// sorting; the sort is stable so equal keys keep the fetched order.
func (v *View) Products() []model.Product {
	out := make([]model.Product, 0, len(v.fetched))
	q := strings.ToLower(v.query)
	for _, p := range v.fetched {
		if q == "" || matches(p, q) {
			out = append(out, p)
		}
	}

	switch v.key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Precio < out[j].Precio })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Precio > out[j].Precio })
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return v.collator.CompareString(out[i].Nombre, out[j].Nombre) < 0
		})
	case SortNewest:
		// fetch order is already newest first
	}
	return out
}

// matches searches nombre, descripcion and the seller display name, which
// falls back to the personal name when no business name is set.
func matches(p model.Product, q string) bool {
	return strings.Contains(strings.ToLower(p.Nombre), q) ||
		strings.Contains(strings.ToLower(p.Descripcion), q) ||
		strings.Contains(strings.ToLower(p.Vendedor.DisplayName()), q)
}
