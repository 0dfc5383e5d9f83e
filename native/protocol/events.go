package protocol

import (
	"math/big"

	coretypes "stablemesh/core/types"
	"stablemesh/crypto"
	"stablemesh/native/region"
)

const (
	eventCollateralDeposited = "protocol.collateral.deposited"
	eventCollateralWithdrawn = "protocol.collateral.withdrawn"
	eventStableMinted        = "protocol.stable.minted"
	eventStableBurned        = "protocol.stable.burned"
	eventVaultDeposited      = "protocol.vault.deposited"
	eventRewardsAccrued      = "protocol.rewards.accrued"
	eventRewardsClaimed      = "protocol.rewards.claimed"
	eventOracleUpdated       = "protocol.oracle.updated"
	eventProtocolToggled     = "protocol.admin.toggled"
	eventOperatorUpdated     = "protocol.admin.operator"
	eventVaultsInitialized   = "protocol.vaults.initialized"
)

func (e *Engine) emit(eventType string, account crypto.Address, r region.Region, amount *big.Int, extra map[string]string) {
	if e == nil || e.state == nil {
		return
	}
	attrs := make(map[string]string, 4+len(extra))
	if !account.IsZero() {
		attrs["account"] = account.String()
	}
	if r != "" {
		attrs["region"] = string(r)
	}
	if amount != nil {
		attrs["amount"] = amount.String()
	}
	for k, v := range extra {
		attrs[k] = v
	}
	e.state.AppendEvent(&coretypes.Event{Type: eventType, Attributes: attrs})
}
