package protocol

import (
	"math/big"
	"strconv"

	"stablemesh/crypto"
)

// DistributeReward accrues a stability-mining reward onto the account's
// ledger. Only the protocol owner may distribute; the last-claim marker is
// left untouched so claim cadence stays with the account.
func (e *Engine) DistributeReward(caller, account crypto.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	reward, err := e.ensureReward(account)
	if err != nil {
		return err
	}
	reward.Accumulated = new(big.Int).Add(reward.Accumulated, amount)

	if err := e.state.PutReward(account, reward); err != nil {
		return err
	}
	e.emit(eventRewardsAccrued, account, "", amount, nil)
	return nil
}

// ClaimRewards zeroes the caller's accumulated rewards, stamps the claim with
// the current block counter and returns the claimed amount. Payout delivery
// is the responsibility of an external collaborator; no balance ledger moves
// here.
func (e *Engine) ClaimRewards(caller crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.requireActive(); err != nil {
		return nil, err
	}

	reward, err := e.ensureReward(caller)
	if err != nil {
		return nil, err
	}
	if reward.Accumulated.Sign() == 0 {
		return nil, ErrInvalidAmount
	}

	claimed := reward.Accumulated
	reward.Accumulated = big.NewInt(0)
	reward.LastClaim = e.blockHeight

	if err := e.state.PutReward(caller, reward); err != nil {
		return nil, err
	}
	e.emit(eventRewardsClaimed, caller, "", claimed, map[string]string{
		"lastClaim": strconv.FormatUint(e.blockHeight, 10),
	})
	return claimed, nil
}
