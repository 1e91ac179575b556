package store

import "github.com/google/uuid"

// IDGenerator generates unique ids.
// Implemented by UUIDv7Generator (production) and testutil.SequentialIDs (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
//
// UUIDv7 embeds a millisecond timestamp in the most significant bits followed
// by random bits, so two sales recorded in the same millisecond still get
// distinct ids and ids sort by creation time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Id prefixes, as seen on receipts and in the admin screens.
const (
	PrefixSale     = "SALE"
	PrefixProduct  = "PROD"
	PrefixCustomer = "CUST"
	PrefixUser     = "USER"
)

// NewID returns prefix-<UUIDv7>, e.g. "PROD-0190f7a2-...".
func NewID(prefix string) string {
	return prefix + "-" + UUIDv7Generator{}.Generate()
}
