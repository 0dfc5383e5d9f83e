package protocol

import (
	"errors"
	"math/big"
	"testing"

	"stablemesh/native/region"
)

func TestDepositToVaultMovesBalance(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	account := makeAddress(0x10)

	if err := engine.DepositCollateral(account, big.NewInt(300), region.US); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := engine.Mint(account, big.NewInt(200), region.US); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.DepositToVault(account, big.NewInt(120), region.US); err != nil {
		t.Fatalf("vault deposit: %v", err)
	}

	if balance := state.balances[state.regionKey(account, region.US)]; balance.Cmp(big.NewInt(80)) != 0 {
		t.Fatalf("expected balance 80, got %s", balance)
	}
	vault := state.vaults[region.US]
	if vault.Balance.Cmp(big.NewInt(120)) != 0 {
		t.Fatalf("expected vault balance 120, got %s", vault.Balance)
	}
	if vault.TotalYield.Sign() != 0 {
		t.Fatalf("vault deposit must not touch totalYield, got %s", vault.TotalYield)
	}
}

func TestDepositToVaultValidation(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	account := makeAddress(0x10)

	if err := engine.DepositToVault(account, big.NewInt(0), region.US); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := engine.DepositToVault(account, big.NewInt(10), region.US); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestInitializeVaultsSeedsRegions(t *testing.T) {
	engine, _, owner := newTestEngine(t)
	intruder := makeAddress(0x40)

	if err := engine.InitializeVaults(intruder); !errors.Is(err, ErrOwnerOnly) {
		t.Fatalf("expected ErrOwnerOnly, got %v", err)
	}

	engine.SetBlockHeight(7)
	if err := engine.InitializeVaults(owner); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	vault, err := engine.VaultBalance(region.EU)
	if err != nil {
		t.Fatalf("vault read: %v", err)
	}
	if vault.Balance.Sign() != 0 || vault.TotalYield.Sign() != 0 {
		t.Fatalf("expected empty EU vault, got balance=%s yield=%s", vault.Balance, vault.TotalYield)
	}

	price, err := engine.RegionalPrice(region.EU)
	if err != nil {
		t.Fatalf("price read: %v", err)
	}
	if price.Price.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("expected seeded price 1000000, got %s", price.Price)
	}
	if price.LastUpdate != 7 {
		t.Fatalf("expected seeded lastUpdate 7, got %d", price.LastUpdate)
	}

	for _, r := range region.All() {
		if _, err := engine.VaultBalance(r); err != nil {
			t.Fatalf("vault read %s: %v", r, err)
		}
	}
}

func TestToggleProtocolScenario(t *testing.T) {
	engine, _, owner := newTestEngine(t)
	intruder := makeAddress(0x40)

	if _, err := engine.ToggleActive(intruder); !errors.Is(err, ErrOwnerOnly) {
		t.Fatalf("expected ErrOwnerOnly, got %v", err)
	}

	first, err := engine.ToggleActive(owner)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if first {
		t.Fatalf("expected active=false after first toggle")
	}
	second, err := engine.ToggleActive(owner)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if !second {
		t.Fatalf("expected active=true after second toggle")
	}
}
