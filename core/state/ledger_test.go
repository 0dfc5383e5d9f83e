package state

import (
	"math/big"
	"testing"

	coretypes "stablemesh/core/types"
	"stablemesh/crypto"
	"stablemesh/native/protocol"
	"stablemesh/native/region"
	"stablemesh/storage"

	"github.com/stretchr/testify/require"
)

func testAddress(suffix byte) crypto.Address {
	raw := make([]byte, 20)
	raw[19] = suffix
	return crypto.NewAddress(crypto.StablePrefix, raw)
}

func TestLedgerAbsentRecordsDecodeToNil(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB())
	addr := testAddress(0x01)

	pos, err := ledger.GetPosition(addr, region.US)
	require.NoError(t, err)
	require.Nil(t, pos)

	balance, err := ledger.GetBalance(addr, region.US)
	require.NoError(t, err)
	require.Nil(t, balance)

	dep, err := ledger.GetCollateral(addr)
	require.NoError(t, err)
	require.Nil(t, dep)

	st, err := ledger.GetProtocolState()
	require.NoError(t, err)
	require.Nil(t, st)

	authorized, err := ledger.GetOracleOperator(addr)
	require.NoError(t, err)
	require.False(t, authorized)
}

func TestLedgerRoundTripsRecords(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB())
	addr := testAddress(0x02)

	require.NoError(t, ledger.PutPosition(&protocol.Position{
		Account:    addr,
		Region:     region.EU,
		Collateral: big.NewInt(0),
		Debt:       big.NewInt(1234),
	}))
	pos, err := ledger.GetPosition(addr, region.EU)
	require.NoError(t, err)
	require.Equal(t, int64(1234), pos.Debt.Int64())
	require.Equal(t, region.EU, pos.Region)

	require.NoError(t, ledger.PutBalance(addr, region.EU, big.NewInt(987)))
	balance, err := ledger.GetBalance(addr, region.EU)
	require.NoError(t, err)
	require.Equal(t, int64(987), balance.Int64())

	require.NoError(t, ledger.PutCollateral(&protocol.CollateralDeposit{
		Account: addr,
		Amount:  big.NewInt(500),
		Region:  region.US,
	}))
	dep, err := ledger.GetCollateral(addr)
	require.NoError(t, err)
	require.Equal(t, int64(500), dep.Amount.Int64())
	require.Equal(t, region.US, dep.Region)

	require.NoError(t, ledger.PutOraclePrice(region.AS, &protocol.OraclePrice{
		Price:      big.NewInt(1_050_000),
		LastUpdate: 11,
	}))
	price, err := ledger.GetOraclePrice(region.AS)
	require.NoError(t, err)
	require.Equal(t, int64(1_050_000), price.Price.Int64())
	require.Equal(t, uint64(11), price.LastUpdate)

	require.NoError(t, ledger.PutVault(region.US, &protocol.Vault{
		Balance:    big.NewInt(77),
		TotalYield: big.NewInt(3),
	}))
	vault, err := ledger.GetVault(region.US)
	require.NoError(t, err)
	require.Equal(t, int64(77), vault.Balance.Int64())
	require.Equal(t, int64(3), vault.TotalYield.Int64())

	require.NoError(t, ledger.PutReward(addr, &protocol.Reward{
		Accumulated: big.NewInt(42),
		LastClaim:   6,
	}))
	reward, err := ledger.GetReward(addr)
	require.NoError(t, err)
	require.Equal(t, int64(42), reward.Accumulated.Int64())
	require.Equal(t, uint64(6), reward.LastClaim)

	require.NoError(t, ledger.PutOracleOperator(addr, true))
	authorized, err := ledger.GetOracleOperator(addr)
	require.NoError(t, err)
	require.True(t, authorized)

	require.NoError(t, ledger.PutProtocolState(&protocol.State{
		Active:               true,
		TotalValueLocked:     big.NewInt(900),
		StabilityPoolBalance: big.NewInt(0),
	}))
	st, err := ledger.GetProtocolState()
	require.NoError(t, err)
	require.True(t, st.Active)
	require.Equal(t, int64(900), st.TotalValueLocked.Int64())
}

func TestLedgerBlockHeightRoundTrip(t *testing.T) {
	db := storage.NewMemDB()
	ledger := NewLedger(db)

	height, err := ledger.GetBlockHeight()
	require.NoError(t, err)
	require.Zero(t, height)

	require.NoError(t, ledger.PutBlockHeight(17))

	// A fresh Ledger over the same database sees the committed counter.
	height, err = NewLedger(db).GetBlockHeight()
	require.NoError(t, err)
	require.Equal(t, uint64(17), height)
}

func TestLedgerKeysIsolatePerRegionAndAccount(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB())
	alice := testAddress(0x03)
	bob := testAddress(0x04)

	require.NoError(t, ledger.PutBalance(alice, region.US, big.NewInt(10)))
	require.NoError(t, ledger.PutBalance(alice, region.EU, big.NewInt(20)))
	require.NoError(t, ledger.PutBalance(bob, region.US, big.NewInt(30)))

	got, err := ledger.GetBalance(alice, region.US)
	require.NoError(t, err)
	require.Equal(t, int64(10), got.Int64())

	got, err = ledger.GetBalance(alice, region.EU)
	require.NoError(t, err)
	require.Equal(t, int64(20), got.Int64())

	got, err = ledger.GetBalance(bob, region.US)
	require.NoError(t, err)
	require.Equal(t, int64(30), got.Int64())
}

func TestLedgerEventBuffer(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB())

	ledger.AppendEvent(&coretypes.Event{Type: "protocol.test", Attributes: map[string]string{"k": "v"}})
	ledger.AppendEvent(&coretypes.Event{Type: "protocol.test.second"})

	events := ledger.Events()
	require.Len(t, events, 2)
	events[0].Attributes["k"] = "mutated"

	drained := ledger.DrainEvents()
	require.Len(t, drained, 2)
	require.Equal(t, "v", drained[0].Attributes["k"])
	require.Empty(t, ledger.DrainEvents())
}
