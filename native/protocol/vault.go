package protocol

import (
	"math/big"
	"strconv"

	"stablemesh/crypto"
	"stablemesh/native/region"
)

// DepositToVault moves amount out of the caller's regional stablecoin balance
// into the region's pooled vault. The vault's TotalYield slot belongs to an
// external yield distributor and is never touched here. An invalid region is
// rejected indirectly: its balance is always zero, so the debit fails.
func (e *Engine) DepositToVault(caller crypto.Address, amount *big.Int, r region.Region) error {
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

	vault, err := e.ensureVault(r)
	if err != nil {
		return err
	}

	balance = new(big.Int).Sub(balance, amount)
	vault.Balance = new(big.Int).Add(vault.Balance, amount)

	if err := e.state.PutBalance(caller, r, balance); err != nil {
		return err
	}
	if err := e.state.PutVault(r, vault); err != nil {
		return err
	}
	e.emit(eventVaultDeposited, caller, r, amount, nil)
	return nil
}

// InitializeVaults seeds all three regions with empty vaults and the default
// oracle price stamped at the current block counter. Owner-only; rerunning it
// resets vault balances, so the host invokes it once at genesis.
func (e *Engine) InitializeVaults(caller crypto.Address) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}

	for _, r := range region.All() {
		vault := &Vault{Balance: big.NewInt(0), TotalYield: big.NewInt(0)}
		if err := e.state.PutVault(r, vault); err != nil {
			return err
		}
		price := &OraclePrice{Price: big.NewInt(DefaultOraclePrice), LastUpdate: e.blockHeight}
		if err := e.state.PutOraclePrice(r, price); err != nil {
			return err
		}
	}
	e.emit(eventVaultsInitialized, caller, "", nil, map[string]string{
		"block": strconv.FormatUint(e.blockHeight, 10),
	})
	return nil
}
