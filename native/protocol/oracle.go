package protocol

import (
	"math/big"
	"strconv"

	"stablemesh/crypto"
	"stablemesh/native/region"
)

// UpdatePrice overwrites the regional oracle price. The protocol must be
// active and the caller flagged as an oracle operator; there is a single
// authoritative writer per call and no aggregation.
func (e *Engine) UpdatePrice(caller crypto.Address, r region.Region, price *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireActive(); err != nil {
		return err
	}
	authorized, err := e.state.GetOracleOperator(caller)
	if err != nil {
		return err
	}
	if !authorized {
		return ErrNotAuthorized
	}
	if !region.IsValid(r) {
		return ErrInvalidRegion
	}
	if price == nil || price.Sign() <= 0 {
		return ErrInvalidAmount
	}

	record := &OraclePrice{
		Price:      new(big.Int).Set(price),
		LastUpdate: e.blockHeight,
	}
	if err := e.state.PutOraclePrice(r, record); err != nil {
		return err
	}
	e.emit(eventOracleUpdated, caller, r, price, map[string]string{
		"lastUpdate": strconv.FormatUint(e.blockHeight, 10),
	})
	return nil
}

// RegionalPrice returns the oracle record for the region, defaulting to the
// documented micro-unit price with lastUpdate zero when it was never written.
// Lookups never fail on a missing record; ErrOracleNotFound stays reserved
// for callers that opt into strict reads in a future surface.
func (e *Engine) RegionalPrice(r region.Region) (*OraclePrice, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, err := e.state.GetOraclePrice(r)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &OraclePrice{Price: big.NewInt(DefaultOraclePrice)}, nil
	}
	if record.Price == nil || record.Price.Sign() <= 0 {
		record.Price = big.NewInt(DefaultOraclePrice)
	}
	return record, nil
}
