// Package record defines the persisted entities of the boutique point of sale:
// products, customers, sales (with their line items) and users.
//
// This package contains type definitions and validation only. The store
// imports record; record imports nothing internal.
//
// Key constraints:
//   - Money is decimal.Decimal, never float64
//   - Sale items are snapshots of the product at sale time, not references
//   - Sale.CustomerID is a weak reference used for lookup only
//   - Timestamps are stamped by the store, millisecond resolution
package record
