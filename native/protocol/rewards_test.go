package protocol

import (
	"errors"
	"math/big"
	"testing"
)

func TestDistributeRewardAccrues(t *testing.T) {
	engine, state, owner := newTestEngine(t)
	account := makeAddress(0x10)

	if err := engine.DistributeReward(owner, account, big.NewInt(40)); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if err := engine.DistributeReward(owner, account, big.NewInt(10)); err != nil {
		t.Fatalf("second distribute: %v", err)
	}

	reward := state.rewards[state.key(account)]
	if reward.Accumulated.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("expected accumulated 50, got %s", reward.Accumulated)
	}
	if reward.LastClaim != 0 {
		t.Fatalf("distribute must not touch lastClaim, got %d", reward.LastClaim)
	}
}

func TestDistributeRewardValidation(t *testing.T) {
	engine, _, owner := newTestEngine(t)
	account := makeAddress(0x10)
	intruder := makeAddress(0x40)

	if err := engine.DistributeReward(intruder, account, big.NewInt(5)); !errors.Is(err, ErrOwnerOnly) {
		t.Fatalf("expected ErrOwnerOnly, got %v", err)
	}
	if err := engine.DistributeReward(owner, account, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestClaimRewardsResetsAndStamps(t *testing.T) {
	engine, state, owner := newTestEngine(t)
	account := makeAddress(0x10)

	if err := engine.DistributeReward(owner, account, big.NewInt(75)); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	engine.SetBlockHeight(9)
	claimed, err := engine.ClaimRewards(account)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Cmp(big.NewInt(75)) != 0 {
		t.Fatalf("expected claimed 75, got %s", claimed)
	}

	reward := state.rewards[state.key(account)]
	if reward.Accumulated.Sign() != 0 {
		t.Fatalf("expected accumulated reset to 0, got %s", reward.Accumulated)
	}
	if reward.LastClaim != 9 {
		t.Fatalf("expected lastClaim 9, got %d", reward.LastClaim)
	}

	if _, err := engine.ClaimRewards(account); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount on empty claim, got %v", err)
	}
}
