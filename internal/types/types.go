// =============================================================================
// Sales Report Bot - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - catalog
//   - session
//   - collector
//   - report
//   - export
//   - reporter and the transports
//
// =============================================================================

package types

import "time"

// =============================================================================
// CATALOG TYPES
// =============================================================================

// Product is a single sellable item of the catalog.
type Product struct {
	// Name is the user-facing product name. Unique within a catalog.
	Name string

	// Price is the unit price in whole currency units.
	Price float64

	// ExchangeRequired is true when the product is in the catalog's exchange
	// set and the operator is asked for an exchange quantity.
	ExchangeRequired bool
}

// =============================================================================
// SESSION TYPES
// =============================================================================

// Row holds the quantities collected for one product within a session.
// All quantities are zero until written.
type Row struct {
	// Name is the product name, copied from the catalog.
	Name string

	// Price is the unit price, copied from the catalog.
	Price float64

	// Morning is the quantity received in the morning.
	Morning float64

	// Evening is the quantity remaining (unsold) in the evening.
	Evening float64

	// Exchange is the quantity returned for exchange.
	// Always zero for products that do not require exchange.
	Exchange float64
}

// =============================================================================
// REPORT TYPES
// =============================================================================

// ReportLine is a derived, read-only view of a Row with its sold quantity
// and monetary amount.
type ReportLine struct {
	Name     string
	Price    float64
	Morning  float64
	Evening  float64
	Exchange float64

	// Sold = Morning - Evening - Exchange. May be negative.
	Sold float64

	// Amount = Sold * Price.
	Amount float64
}

// Report is the aggregated result of a completed session.
type Report struct {
	// UserID identifies the operator the report belongs to.
	UserID string

	// Lines are in catalog order.
	Lines []ReportLine

	// Total is the sum of all line amounts.
	Total float64

	// GeneratedAt is the completion time of the session.
	GeneratedAt time.Time
}

// =============================================================================
// DELIVERY TYPES
// =============================================================================

// Document is a generated file handed to a transport for delivery.
type Document struct {
	// Name is the file name shown to the recipient.
	Name string

	// Data is the document content.
	Data []byte

	// Path is set when the document was also spooled to disk. Transports that
	// upload from the filesystem may prefer it over Data.
	Path string
}
