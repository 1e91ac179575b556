// Package store provides SQLite-backed durable storage for the boutique
// point of sale.
//
// The store owns four collections:
//   - products:  unique sku, indexed by category
//   - customers: unique phone, running total_spent accumulator
//   - sales:     append-only ledger, indexed by created_at and customer_id
//   - users:     unique username, bcrypt password hashes
//
// # Lifecycle
//
// A Store moves Uninitialized → Opening → Ready, or Opening → Failed. The
// first operation (or Init) opens the file and applies the schema; the handle
// is then reused for the life of the process. A failed open is memoized and
// every later call returns ErrConnectionUnavailable without retrying.
// Concurrent first callers wait on the same initialization.
//
// # Recording a sale
//
// AddSale builds a unit of work (insert sale, adjust stock per line, accrue
// customer spend) and applies it in one SQLite transaction. Either every
// mutation commits or none does.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//   - One pooled connection: transactions never interleave
//
// Money columns hold canonical decimal strings; timestamps are unix
// milliseconds.
package store
