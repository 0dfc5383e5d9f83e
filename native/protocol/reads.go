package protocol

import (
	"math/big"

	"stablemesh/crypto"
	"stablemesh/native/region"
)

// The read surface never mutates state and applies the documented zero-value
// defaults, so a read on an untouched account or region is indistinguishable
// from one whose records were explicitly zeroed.

// Balance returns the account's stablecoin balance in the region.
func (e *Engine) Balance(addr crypto.Address, r region.Region) (*big.Int, error) {
	return e.ensureBalance(addr, r)
}

// Collateral returns the account's collateral pool with its region tag.
func (e *Engine) Collateral(addr crypto.Address) (*CollateralDeposit, error) {
	return e.ensureCollateral(addr)
}

// VaultBalance returns the pooled vault record for the region.
func (e *Engine) VaultBalance(r region.Region) (*Vault, error) {
	return e.ensureVault(r)
}

// Position returns the account's collateral/debt position in the region.
func (e *Engine) Position(addr crypto.Address, r region.Region) (*Position, error) {
	return e.ensurePosition(addr, r)
}

// CollateralRatio computes floor(collateral*100/debt) for the account's debt
// in the region, measured against the account's single collateral pool. It
// returns zero when the position carries no debt; this is the single source
// of truth for the minimum-ratio invariant consulted by minting and
// withdrawal.
func (e *Engine) CollateralRatio(addr crypto.Address, r region.Region) (*big.Int, error) {
	pos, err := e.ensurePosition(addr, r)
	if err != nil {
		return nil, err
	}
	dep, err := e.ensureCollateral(addr)
	if err != nil {
		return nil, err
	}
	return pos.Ratio(dep.Amount), nil
}

// Status returns the singleton protocol record with defaults applied.
func (e *Engine) Status() (*State, error) {
	return e.ensureProtocolState()
}

// IsOracleOperator reports whether the account may write oracle prices.
func (e *Engine) IsOracleOperator(addr crypto.Address) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.state.GetOracleOperator(addr)
}
