// =============================================================================
// Sales Report Bot - Product Catalog
// =============================================================================
//
// This module holds the static, ordered list of products the operator reports
// on, together with the set of products that need an extra "exchange"
// quantity. The catalog is immutable once built.
//
// CATALOG SOURCES:
//   1. Built-in default (Default): the 35-product dairy assortment
//   2. YAML file (LoadYAML)
//   3. XLSX workbook (LoadXLSX)
//   4. CSV file (LoadCSV)
//
// ORDERING:
//   Product order drives the dialogue: the collector asks about products in
//   exactly this order, and reports list them in the same order.
//
// =============================================================================

package catalog

import (
	"fmt"

	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// =============================================================================
// CATALOG STRUCTURE
// =============================================================================

// Catalog is an ordered, immutable list of products.
type Catalog struct {
	products []types.Product
	index    map[string]int
	exchange map[string]struct{}
}

// Entry is a product definition before the exchange flag is derived.
type Entry struct {
	Name  string
	Price float64
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New builds a catalog from ordered entries and the names of products that
// require an exchange quantity.
//
// PARAMETERS:
//   - entries: The products, in dialogue order.
//   - exchange: Names of products requiring the exchange sub-field.
//
// RETURNS:
//   - The catalog.
//   - An error listing every validation problem found.
func New(entries []Entry, exchange []string) (*Catalog, error) {
	if err := Validate(entries, exchange); err != nil {
		return nil, err
	}

	c := &Catalog{
		products: make([]types.Product, 0, len(entries)),
		index:    make(map[string]int, len(entries)),
		exchange: make(map[string]struct{}, len(exchange)),
	}

	for _, name := range exchange {
		c.exchange[name] = struct{}{}
	}

	for i, e := range entries {
		_, required := c.exchange[e.Name]
		c.products = append(c.products, types.Product{
			Name:             e.Name,
			Price:            e.Price,
			ExchangeRequired: required,
		})
		c.index[e.Name] = i
	}

	return c, nil
}

// MustNew is like New but panics on invalid input. Used for the built-in
// catalog and in tests.
func MustNew(entries []Entry, exchange []string) *Catalog {
	c, err := New(entries, exchange)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// At returns the product at position i (0-based).
func (c *Catalog) At(i int) types.Product {
	return c.products[i]
}

// Products returns a copy of the ordered product list.
func (c *Catalog) Products() []types.Product {
	out := make([]types.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Lookup returns the product with the given name.
func (c *Catalog) Lookup(name string) (types.Product, bool) {
	i, ok := c.index[name]
	if !ok {
		return types.Product{}, false
	}
	return c.products[i], true
}

// RequiresExchange reports whether the named product needs an exchange
// quantity.
func (c *Catalog) RequiresExchange(name string) bool {
	_, ok := c.exchange[name]
	return ok
}

// ExchangeCount returns how many products require an exchange quantity.
func (c *Catalog) ExchangeCount() int {
	return len(c.exchange)
}

// NewRows returns one zero-valued row per product, in catalog order.
func (c *Catalog) NewRows() []types.Row {
	rows := make([]types.Row, len(c.products))
	for i, p := range c.products {
		rows[i] = types.Row{Name: p.Name, Price: p.Price}
	}
	return rows
}
