package protocol

import (
	"errors"
	"math/big"
	"testing"

	"stablemesh/native/region"
)

func TestInactiveProtocolBlocksMutations(t *testing.T) {
	engine, state, owner := newTestEngine(t)
	account := makeAddress(0x10)
	feeder := makeAddress(0x30)

	if err := engine.DepositCollateral(account, big.NewInt(300), region.US); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := engine.Mint(account, big.NewInt(100), region.US); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.DistributeReward(owner, account, big.NewInt(25)); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if err := engine.SetOracleOperator(owner, feeder, true); err != nil {
		t.Fatalf("add operator: %v", err)
	}

	active, err := engine.ToggleActive(owner)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if active {
		t.Fatalf("expected protocol inactive after toggle")
	}

	mutations := map[string]func() error{
		"deposit":  func() error { return engine.DepositCollateral(account, big.NewInt(10), region.US) },
		"withdraw": func() error { return engine.WithdrawCollateral(account, big.NewInt(10)) },
		"mint":     func() error { return engine.Mint(account, big.NewInt(10), region.US) },
		"burn":     func() error { return engine.Burn(account, big.NewInt(10), region.US) },
		"vault":    func() error { return engine.DepositToVault(account, big.NewInt(10), region.US) },
		"claim": func() error {
			_, claimErr := engine.ClaimRewards(account)
			return claimErr
		},
		// The feeder is a flagged operator, so only the pause flag can
		// reject this write.
		"oracle": func() error { return engine.UpdatePrice(feeder, region.US, big.NewInt(2_000_000)) },
	}
	for name, op := range mutations {
		if err := op(); !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("%s: expected ErrNotAuthorized while inactive, got %v", name, err)
		}
	}

	if dep := state.collateral[state.key(account)]; dep.Amount.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("collateral mutated while inactive: %s", dep.Amount)
	}
	if balance := state.balances[state.regionKey(account, region.US)]; balance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("balance mutated while inactive: %s", balance)
	}
	if reward := state.rewards[state.key(account)]; reward.Accumulated.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("rewards mutated while inactive: %s", reward.Accumulated)
	}
	if state.protocol.TotalValueLocked.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("TVL mutated while inactive: %s", state.protocol.TotalValueLocked)
	}
	if _, ok := state.oracles[region.US]; ok {
		t.Fatalf("oracle price written while inactive")
	}
	price, err := engine.RegionalPrice(region.US)
	if err != nil {
		t.Fatalf("price read: %v", err)
	}
	if price.Price.Cmp(big.NewInt(DefaultOraclePrice)) != 0 {
		t.Fatalf("expected default price while inactive, got %s", price.Price)
	}
}

func TestAdminOperationsBypassPauseGate(t *testing.T) {
	engine, _, owner := newTestEngine(t)
	operator := makeAddress(0x20)
	account := makeAddress(0x10)

	if active, err := engine.ToggleActive(owner); err != nil || active {
		t.Fatalf("expected inactive after first toggle, got active=%v err=%v", active, err)
	}

	if err := engine.SetOracleOperator(owner, operator, true); err != nil {
		t.Fatalf("operator update while paused: %v", err)
	}
	if err := engine.DistributeReward(owner, account, big.NewInt(5)); err != nil {
		t.Fatalf("distribute while paused: %v", err)
	}
	if err := engine.InitializeVaults(owner); err != nil {
		t.Fatalf("initialize while paused: %v", err)
	}

	if active, err := engine.ToggleActive(owner); err != nil || !active {
		t.Fatalf("expected active after second toggle, got active=%v err=%v", active, err)
	}
}
