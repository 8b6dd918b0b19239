package postgres

import "github.com/oklog/ulid/v2"

// ULIDGenerator issues ULID identifiers. They sort by creation time,
// so payments in one batch stay adjacent in index order.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
