package protocol

import (
	"math/big"

	coretypes "stablemesh/core/types"
	"stablemesh/crypto"
	"stablemesh/native/region"
)

// engineState is the persistence surface the engine needs from the
// surrounding ledger. Absent records are reported as nil; the engine applies
// the documented zero-value defaults at its own boundary.
type engineState interface {
	GetPosition(addr crypto.Address, r region.Region) (*Position, error)
	PutPosition(pos *Position) error
	GetBalance(addr crypto.Address, r region.Region) (*big.Int, error)
	PutBalance(addr crypto.Address, r region.Region, balance *big.Int) error
	GetCollateral(addr crypto.Address) (*CollateralDeposit, error)
	PutCollateral(dep *CollateralDeposit) error
	GetOraclePrice(r region.Region) (*OraclePrice, error)
	PutOraclePrice(r region.Region, price *OraclePrice) error
	GetVault(r region.Region) (*Vault, error)
	PutVault(r region.Region, vault *Vault) error
	GetReward(addr crypto.Address) (*Reward, error)
	PutReward(addr crypto.Address, reward *Reward) error
	GetOracleOperator(addr crypto.Address) (bool, error)
	PutOracleOperator(addr crypto.Address, authorized bool) error
	GetProtocolState() (*State, error)
	PutProtocolState(st *State) error
	AppendEvent(evt *coretypes.Event)
}

// Engine orchestrates the state transitions of the collateral-and-debt core.
// The host guarantees strictly serialized execution, so the engine performs
// all failable checks before its first write: a rejected operation leaves no
// partial state behind.
type Engine struct {
	state       engineState
	owner       crypto.Address
	blockHeight uint64
}

// NewEngine constructs an engine with the protocol owner fixed at deploy time.
func NewEngine(owner crypto.Address) *Engine {
	return &Engine{owner: owner}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetBlockHeight records the monotonic block counter supplied by the host.
// Oracle updates and reward claims stamp this value.
func (e *Engine) SetBlockHeight(height uint64) {
	if e == nil {
		return
	}
	e.blockHeight = height
}

// Owner returns the protocol owner address fixed at construction.
func (e *Engine) Owner() crypto.Address {
	if e == nil {
		return crypto.Address{}
	}
	return e.owner
}

// requireActive gates every non-admin mutation on the protocol pause flag.
func (e *Engine) requireActive() error {
	st, err := e.ensureProtocolState()
	if err != nil {
		return err
	}
	if !st.Active {
		return ErrNotAuthorized
	}
	return nil
}

func (e *Engine) requireOwner(caller crypto.Address) error {
	if !caller.Equal(e.owner) {
		return ErrOwnerOnly
	}
	return nil
}

// DepositCollateral adds amount to the caller's collateral pool and tags the
// pool with the region of this call. Repeat deposits from a different region
// deliberately retag the whole pool: an account holds collateral for exactly
// one region at a time, its most recent deposit's region.
func (e *Engine) DepositCollateral(caller crypto.Address, amount *big.Int, r region.Region) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireActive(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if !region.IsValid(r) {
		return ErrInvalidRegion
	}

	dep, err := e.ensureCollateral(caller)
	if err != nil {
		return err
	}
	st, err := e.ensureProtocolState()
	if err != nil {
		return err
	}

	dep.Amount = new(big.Int).Add(dep.Amount, amount)
	dep.Region = r
	st.TotalValueLocked = new(big.Int).Add(st.TotalValueLocked, amount)

	if err := e.state.PutCollateral(dep); err != nil {
		return err
	}
	if err := e.state.PutProtocolState(st); err != nil {
		return err
	}
	e.emit(eventCollateralDeposited, caller, r, amount, nil)
	return nil
}

// WithdrawCollateral releases amount from the caller's collateral pool. When
// the caller carries debt in the pool's region, the projected ratio after the
// withdrawal must stay at or above the minimum; with no debt the check is
// skipped entirely.
func (e *Engine) WithdrawCollateral(caller crypto.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireActive(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	dep, err := e.ensureCollateral(caller)
	if err != nil {
		return err
	}
	if dep.Amount.Cmp(amount) < 0 {
		return ErrInsufficientCollateral
	}

	remaining := new(big.Int).Sub(dep.Amount, amount)

	pos, err := e.ensurePosition(caller, dep.Region)
	if err != nil {
		return err
	}
	if pos.Debt.Sign() > 0 {
		projected := pos.Ratio(remaining)
		if projected.Cmp(big.NewInt(MinCollateralRatio)) < 0 {
			return ErrInsufficientCollateral
		}
	}

	st, err := e.ensureProtocolState()
	if err != nil {
		return err
	}

	dep.Amount = remaining
	st.TotalValueLocked = new(big.Int).Sub(st.TotalValueLocked, amount)
	if st.TotalValueLocked.Sign() < 0 {
		st.TotalValueLocked = big.NewInt(0)
	}

	if err := e.state.PutCollateral(dep); err != nil {
		return err
	}
	if err := e.state.PutProtocolState(st); err != nil {
		return err
	}
	e.emit(eventCollateralWithdrawn, caller, dep.Region, amount, nil)
	return nil
}

// Mint issues regional stablecoin against the caller's collateral pool. The
// ratio check runs the account's single collateral pool against the debt of
// the target region, regardless of which region the pool is currently tagged
// to. newDebt is always positive here because amount is positive and debt is
// never negative, so the ratio division cannot hit zero.
func (e *Engine) Mint(caller crypto.Address, amount *big.Int, r region.Region) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireActive(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if !region.IsValid(r) {
		return ErrInvalidRegion
	}

	dep, err := e.ensureCollateral(caller)
	if err != nil {
		return err
	}
	pos, err := e.ensurePosition(caller, r)
	if err != nil {
		return err
	}

	newDebt := new(big.Int).Add(pos.Debt, amount)
	newRatio := new(big.Int).Mul(dep.Amount, big.NewInt(100))
	newRatio.Quo(newRatio, newDebt)
	if newRatio.Cmp(big.NewInt(MinCollateralRatio)) < 0 {
		return ErrInsufficientCollateral
	}

	balance, err := e.ensureBalance(caller, r)
	if err != nil {
		return err
	}

	pos.Debt = newDebt
	balance = new(big.Int).Add(balance, amount)

	if err := e.state.PutBalance(caller, r, balance); err != nil {
		return err
	}
	if err := e.state.PutPosition(pos); err != nil {
		return err
	}
	e.emit(eventStableMinted, caller, r, amount, map[string]string{"debt": newDebt.String()})
	return nil
}

// Burn retires regional stablecoin from the caller's balance and reduces the
// matching position debt symmetrically. Neither value can go negative: the
// balance is checked against the requested debit and a debit beyond the
// recorded debt is rejected as invalid.
func (e *Engine) Burn(caller crypto.Address, amount *big.Int, r region.Region) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireActive(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	balance, err := e.ensureBalance(caller, r)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	pos, err := e.ensurePosition(caller, r)
	if err != nil {
		return err
	}
	if pos.Debt.Cmp(amount) < 0 {
		return ErrInvalidAmount
	}

	balance = new(big.Int).Sub(balance, amount)
	pos.Debt = new(big.Int).Sub(pos.Debt, amount)

	if err := e.state.PutBalance(caller, r, balance); err != nil {
		return err
	}
	if err := e.state.PutPosition(pos); err != nil {
		return err
	}
	e.emit(eventStableBurned, caller, r, amount, map[string]string{"debt": pos.Debt.String()})
	return nil
}

func (e *Engine) ensureProtocolState() (*State, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	st, err := e.state.GetProtocolState()
	if err != nil {
		return nil, err
	}
	if st == nil {
		// The protocol deploys active; the flag only flips through the owner.
		st = &State{Active: true}
	}
	if st.TotalValueLocked == nil {
		st.TotalValueLocked = big.NewInt(0)
	}
	if st.StabilityPoolBalance == nil {
		st.StabilityPoolBalance = big.NewInt(0)
	}
	return st, nil
}

func (e *Engine) ensureCollateral(addr crypto.Address) (*CollateralDeposit, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	dep, err := e.state.GetCollateral(addr)
	if err != nil {
		return nil, err
	}
	if dep == nil {
		dep = &CollateralDeposit{Account: addr}
	}
	if dep.Amount == nil {
		dep.Amount = big.NewInt(0)
	}
	return dep, nil
}

func (e *Engine) ensurePosition(addr crypto.Address, r region.Region) (*Position, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pos, err := e.state.GetPosition(addr, r)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		pos = &Position{Account: addr, Region: r}
	}
	if pos.Collateral == nil {
		pos.Collateral = big.NewInt(0)
	}
	if pos.Debt == nil {
		pos.Debt = big.NewInt(0)
	}
	return pos, nil
}

func (e *Engine) ensureBalance(addr crypto.Address, r region.Region) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	balance, err := e.state.GetBalance(addr, r)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance = big.NewInt(0)
	}
	return balance, nil
}

func (e *Engine) ensureReward(addr crypto.Address) (*Reward, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	reward, err := e.state.GetReward(addr)
	if err != nil {
		return nil, err
	}
	if reward == nil {
		reward = &Reward{}
	}
	if reward.Accumulated == nil {
		reward.Accumulated = big.NewInt(0)
	}
	return reward, nil
}

func (e *Engine) ensureVault(r region.Region) (*Vault, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	vault, err := e.state.GetVault(r)
	if err != nil {
		return nil, err
	}
	if vault == nil {
		vault = &Vault{}
	}
	if vault.Balance == nil {
		vault.Balance = big.NewInt(0)
	}
	if vault.TotalYield == nil {
		vault.TotalYield = big.NewInt(0)
	}
	return vault, nil
}
