package protocol

import "errors"

var (
	ErrOwnerOnly              = errors.New("protocol: owner only")
	ErrNotAuthorized          = errors.New("protocol: not authorized")
	ErrInvalidRegion          = errors.New("protocol: invalid region")
	ErrInvalidAmount          = errors.New("protocol: invalid amount")
	ErrInsufficientBalance    = errors.New("protocol: insufficient balance")
	ErrInsufficientCollateral = errors.New("protocol: insufficient collateral")
	// ErrOracleNotFound is part of the public error taxonomy for callers that
	// want strict lookups, but no operation currently returns it: price reads
	// fall back to the documented default instead of failing.
	ErrOracleNotFound = errors.New("protocol: oracle price not found")

	errNilState = errors.New("protocol: state not configured")
)
