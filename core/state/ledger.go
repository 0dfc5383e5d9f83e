package state

import (
	"fmt"
	"math/big"

	coretypes "stablemesh/core/types"
	"stablemesh/crypto"
	"stablemesh/native/protocol"
	"stablemesh/native/region"
	"stablemesh/storage"

	"github.com/ethereum/go-ethereum/rlp"
)

// Ledger persists the protocol's eight entity maps on a key-value database
// and implements the engine's state interface. Records are RLP encoded with
// big integers rendered as decimal strings for stable round-trips. Absent
// keys decode to nil; the engine applies the documented defaults.
type Ledger struct {
	db     storage.Database
	events []*coretypes.Event
}

// NewLedger constructs a Ledger backed by the provided database.
func NewLedger(db storage.Database) *Ledger {
	return &Ledger{db: db}
}

type storedPosition struct {
	Account    string
	Region     string
	Collateral string
	Debt       string
}

type storedBalance struct {
	Balance string
}

type storedCollateral struct {
	Account string
	Amount  string
	Region  string
}

type storedOraclePrice struct {
	Price      string
	LastUpdate uint64
}

type storedVault struct {
	Balance    string
	TotalYield string
}

type storedReward struct {
	Accumulated string
	LastClaim   uint64
}

type storedOperator struct {
	Authorized bool
}

type storedProtocolState struct {
	Active               bool
	TotalValueLocked     string
	StabilityPoolBalance string
}

func (l *Ledger) get(key []byte, out interface{}) (bool, error) {
	raw, err := l.db.Get(key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

func (l *Ledger) put(key []byte, value interface{}) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return l.db.Put(key, raw)
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("state: malformed amount %q", s)
	}
	return v, nil
}

// GetPosition loads the collateral/debt position for (addr, region).
func (l *Ledger) GetPosition(addr crypto.Address, r region.Region) (*protocol.Position, error) {
	var stored storedPosition
	ok, err := l.get(accountRegionKey(positionPrefix, addr, r), &stored)
	if err != nil || !ok {
		return nil, err
	}
	collateral, err := parseAmount(stored.Collateral)
	if err != nil {
		return nil, err
	}
	debt, err := parseAmount(stored.Debt)
	if err != nil {
		return nil, err
	}
	return &protocol.Position{Account: addr, Region: r, Collateral: collateral, Debt: debt}, nil
}

func (l *Ledger) PutPosition(pos *protocol.Position) error {
	stored := storedPosition{
		Account:    pos.Account.String(),
		Region:     string(pos.Region),
		Collateral: formatAmount(pos.Collateral),
		Debt:       formatAmount(pos.Debt),
	}
	return l.put(accountRegionKey(positionPrefix, pos.Account, pos.Region), &stored)
}

// GetBalance loads the stablecoin balance for (addr, region).
func (l *Ledger) GetBalance(addr crypto.Address, r region.Region) (*big.Int, error) {
	var stored storedBalance
	ok, err := l.get(accountRegionKey(balancePrefix, addr, r), &stored)
	if err != nil || !ok {
		return nil, err
	}
	return parseAmount(stored.Balance)
}

func (l *Ledger) PutBalance(addr crypto.Address, r region.Region, balance *big.Int) error {
	stored := storedBalance{Balance: formatAmount(balance)}
	return l.put(accountRegionKey(balancePrefix, addr, r), &stored)
}

// GetCollateral loads the account's collateral pool record.
func (l *Ledger) GetCollateral(addr crypto.Address) (*protocol.CollateralDeposit, error) {
	var stored storedCollateral
	ok, err := l.get(accountKey(collateralPrefix, addr), &stored)
	if err != nil || !ok {
		return nil, err
	}
	amount, err := parseAmount(stored.Amount)
	if err != nil {
		return nil, err
	}
	return &protocol.CollateralDeposit{Account: addr, Amount: amount, Region: region.Region(stored.Region)}, nil
}

func (l *Ledger) PutCollateral(dep *protocol.CollateralDeposit) error {
	stored := storedCollateral{
		Account: dep.Account.String(),
		Amount:  formatAmount(dep.Amount),
		Region:  string(dep.Region),
	}
	return l.put(accountKey(collateralPrefix, dep.Account), &stored)
}

// GetOraclePrice loads the oracle record for the region.
func (l *Ledger) GetOraclePrice(r region.Region) (*protocol.OraclePrice, error) {
	var stored storedOraclePrice
	ok, err := l.get(regionKey(oraclePrefix, r), &stored)
	if err != nil || !ok {
		return nil, err
	}
	price, err := parseAmount(stored.Price)
	if err != nil {
		return nil, err
	}
	return &protocol.OraclePrice{Price: price, LastUpdate: stored.LastUpdate}, nil
}

func (l *Ledger) PutOraclePrice(r region.Region, price *protocol.OraclePrice) error {
	stored := storedOraclePrice{Price: formatAmount(price.Price), LastUpdate: price.LastUpdate}
	return l.put(regionKey(oraclePrefix, r), &stored)
}

// GetVault loads the pooled vault record for the region.
func (l *Ledger) GetVault(r region.Region) (*protocol.Vault, error) {
	var stored storedVault
	ok, err := l.get(regionKey(vaultPrefix, r), &stored)
	if err != nil || !ok {
		return nil, err
	}
	balance, err := parseAmount(stored.Balance)
	if err != nil {
		return nil, err
	}
	totalYield, err := parseAmount(stored.TotalYield)
	if err != nil {
		return nil, err
	}
	return &protocol.Vault{Balance: balance, TotalYield: totalYield}, nil
}

func (l *Ledger) PutVault(r region.Region, vault *protocol.Vault) error {
	stored := storedVault{Balance: formatAmount(vault.Balance), TotalYield: formatAmount(vault.TotalYield)}
	return l.put(regionKey(vaultPrefix, r), &stored)
}

// GetReward loads the stability-mining accrual record for the account.
func (l *Ledger) GetReward(addr crypto.Address) (*protocol.Reward, error) {
	var stored storedReward
	ok, err := l.get(accountKey(rewardPrefix, addr), &stored)
	if err != nil || !ok {
		return nil, err
	}
	accumulated, err := parseAmount(stored.Accumulated)
	if err != nil {
		return nil, err
	}
	return &protocol.Reward{Accumulated: accumulated, LastClaim: stored.LastClaim}, nil
}

func (l *Ledger) PutReward(addr crypto.Address, reward *protocol.Reward) error {
	stored := storedReward{Accumulated: formatAmount(reward.Accumulated), LastClaim: reward.LastClaim}
	return l.put(accountKey(rewardPrefix, addr), &stored)
}

// GetOracleOperator reports the stored authorization flag, false when unset.
func (l *Ledger) GetOracleOperator(addr crypto.Address) (bool, error) {
	var stored storedOperator
	ok, err := l.get(accountKey(operatorPrefix, addr), &stored)
	if err != nil || !ok {
		return false, err
	}
	return stored.Authorized, nil
}

func (l *Ledger) PutOracleOperator(addr crypto.Address, authorized bool) error {
	stored := storedOperator{Authorized: authorized}
	return l.put(accountKey(operatorPrefix, addr), &stored)
}

// GetProtocolState loads the singleton protocol record, nil when never
// written.
func (l *Ledger) GetProtocolState() (*protocol.State, error) {
	var stored storedProtocolState
	ok, err := l.get(protocolStateKey, &stored)
	if err != nil || !ok {
		return nil, err
	}
	tvl, err := parseAmount(stored.TotalValueLocked)
	if err != nil {
		return nil, err
	}
	pool, err := parseAmount(stored.StabilityPoolBalance)
	if err != nil {
		return nil, err
	}
	return &protocol.State{Active: stored.Active, TotalValueLocked: tvl, StabilityPoolBalance: pool}, nil
}

func (l *Ledger) PutProtocolState(st *protocol.State) error {
	stored := storedProtocolState{
		Active:               st.Active,
		TotalValueLocked:     formatAmount(st.TotalValueLocked),
		StabilityPoolBalance: formatAmount(st.StabilityPoolBalance),
	}
	return l.put(protocolStateKey, &stored)
}

type storedBlockHeight struct {
	Height uint64
}

// GetBlockHeight loads the last committed block counter, zero when the
// database has never served a write.
func (l *Ledger) GetBlockHeight() (uint64, error) {
	var stored storedBlockHeight
	ok, err := l.get(blockHeightKey, &stored)
	if err != nil || !ok {
		return 0, err
	}
	return stored.Height, nil
}

// PutBlockHeight records the block counter so a restarted node resumes
// numbering where the previous run stopped.
func (l *Ledger) PutBlockHeight(height uint64) error {
	return l.put(blockHeightKey, &storedBlockHeight{Height: height})
}

// AppendEvent records a side effect emitted by the engine.
func (l *Ledger) AppendEvent(evt *coretypes.Event) {
	if evt == nil {
		return
	}
	l.events = append(l.events, evt.Copy())
}

// Events returns copies of the accumulated events without draining them.
func (l *Ledger) Events() []*coretypes.Event {
	out := make([]*coretypes.Event, 0, len(l.events))
	for _, evt := range l.events {
		out = append(out, evt.Copy())
	}
	return out
}

// DrainEvents returns the accumulated events and clears the buffer; the host
// calls this after each committed operation.
func (l *Ledger) DrainEvents() []*coretypes.Event {
	out := l.events
	l.events = nil
	return out
}
