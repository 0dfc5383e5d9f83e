package protocol

import (
	"math/big"

	"stablemesh/crypto"
	"stablemesh/native/region"
)

// MinCollateralRatio is the minimum collateral-to-debt percentage a position
// must satisfy whenever debt is established or collateral released.
const MinCollateralRatio = 150

// DefaultOraclePrice is the micro-unit price reported for a region before its
// oracle is written for the first time.
const DefaultOraclePrice = 1_000_000

// Position tracks the collateral/debt pairing for one account in one region.
// Debt is denominated in the regional stablecoin; the ratio check compares it
// against the account's collateral pool.
type Position struct {
	Account    crypto.Address
	Region     region.Region
	Collateral *big.Int
	Debt       *big.Int
}

// Ratio returns floor(collateral*100/debt) against the supplied collateral
// pool, or zero when the position carries no debt. Integer division truncates
// toward zero, which is floor for the non-negative operands used here.
func (p *Position) Ratio(collateral *big.Int) *big.Int {
	if p == nil || p.Debt == nil || p.Debt.Sign() == 0 {
		return big.NewInt(0)
	}
	if collateral == nil {
		collateral = big.NewInt(0)
	}
	ratio := new(big.Int).Mul(collateral, big.NewInt(100))
	return ratio.Quo(ratio, p.Debt)
}

// CollateralDeposit records an account's collateral pool. An account holds
// collateral for exactly one region at a time: every deposit overwrites the
// stored region with the region of that call.
type CollateralDeposit struct {
	Account crypto.Address
	Amount  *big.Int
	Region  region.Region
}

// OraclePrice is the authorized-writer price record for one region.
type OraclePrice struct {
	Price      *big.Int
	LastUpdate uint64
}

// Vault is the pooled per-region yield vault. Balance grows through voluntary
// deposits from stablecoin balances; TotalYield is a slot reserved for an
// external yield distributor and is never mutated by this core.
type Vault struct {
	Balance    *big.Int
	TotalYield *big.Int
}

// Reward is the stability-mining accrual record for one account.
type Reward struct {
	Accumulated *big.Int
	LastClaim   uint64
}

// State is the singleton protocol record: the pause flag plus the global
// counters mirrored from the per-account ledgers.
type State struct {
	Active               bool
	TotalValueLocked     *big.Int
	StabilityPoolBalance *big.Int
}
