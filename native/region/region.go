package region

import (
	"errors"
	"strings"
)

// Region identifies one of the deployment regions the ledger issues a
// stablecoin for. The set is closed; adding a region is a protocol upgrade.
type Region string

const (
	US Region = "US"
	EU Region = "EU"
	AS Region = "AS"
)

// ErrUnknownRegion indicates a region identifier outside the closed set.
var ErrUnknownRegion = errors.New("region: unknown region")

// All returns the closed set of regions in a stable order.
func All() []Region {
	return []Region{US, EU, AS}
}

// IsValid reports whether the region belongs to the closed set.
func IsValid(r Region) bool {
	switch r {
	case US, EU, AS:
		return true
	default:
		return false
	}
}

// Parse normalises an external region identifier. Matching is
// case-insensitive and ignores surrounding whitespace.
func Parse(s string) (Region, error) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	if !IsValid(r) {
		return "", ErrUnknownRegion
	}
	return r, nil
}
