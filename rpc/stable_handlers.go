package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"stablemesh/crypto"
	"stablemesh/native/region"
)

type callerAmountRegionParams struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
	Region string `json:"region"`
}

type callerAmountParams struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type callerParams struct {
	Caller string `json:"caller"`
}

type operatorParams struct {
	Caller   string `json:"caller"`
	Operator string `json:"operator"`
}

type oracleUpdateParams struct {
	Caller string `json:"caller"`
	Region string `json:"region"`
	Price  string `json:"price"`
}

type distributeParams struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type accountRegionParams struct {
	Address string `json:"address"`
	Region  string `json:"region"`
}

type accountParams struct {
	Address string `json:"address"`
}

type regionParams struct {
	Region string `json:"region"`
}

type balanceResult struct {
	Balance string `json:"balance"`
}

type collateralResult struct {
	Amount string `json:"amount"`
	Region string `json:"region,omitempty"`
}

type priceResult struct {
	Price      string `json:"price"`
	LastUpdate uint64 `json:"lastUpdate"`
}

type vaultResult struct {
	Balance    string `json:"balance"`
	TotalYield string `json:"totalYield"`
}

type positionResult struct {
	Collateral string `json:"collateral"`
	Debt       string `json:"debt"`
}

type ratioResult struct {
	Ratio string `json:"ratio"`
}

type statusResult struct {
	Active               bool   `json:"active"`
	TotalValueLocked     string `json:"totalValueLocked"`
	StabilityPoolBalance string `json:"stabilityPoolBalance"`
}

type operatorResult struct {
	Authorized bool `json:"authorized"`
}

type toggleResult struct {
	Active bool `json:"active"`
}

type claimResult struct {
	Claimed string `json:"claimed"`
}

type ackResult struct {
	OK bool `json:"ok"`
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("missing params")
	}
	return json.Unmarshal(req.Params, out)
}

func parseAddress(field, value string) (crypto.Address, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return crypto.Address{}, fmt.Errorf("%s: %w", field, err)
	}
	return addr, nil
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, fmt.Errorf("amount must be a base-10 integer")
	}
	return amount, nil
}

func (s *Server) handleDepositCollateral(w http.ResponseWriter, req *RPCRequest) {
	var params callerAmountRegionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	// Region validation belongs to the engine so invalid identifiers surface
	// as the tagged InvalidRegion failure rather than a transport error.
	r := region.Region(strings.ToUpper(strings.TrimSpace(params.Region)))
	if err := s.withBlock(func() error {
		return s.engine.DepositCollateral(caller, amount, r)
	}); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResult{OK: true})
}

func (s *Server) handleWithdrawCollateral(w http.ResponseWriter, req *RPCRequest) {
	var params callerAmountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	if err := s.withBlock(func() error {
		return s.engine.WithdrawCollateral(caller, amount)
	}); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResult{OK: true})
}

func (s *Server) handleMint(w http.ResponseWriter, req *RPCRequest) {
	s.handleBalanceMutation(w, req, s.engine.Mint)
}

func (s *Server) handleBurn(w http.ResponseWriter, req *RPCRequest) {
	s.handleBalanceMutation(w, req, s.engine.Burn)
}

func (s *Server) handleDepositToVault(w http.ResponseWriter, req *RPCRequest) {
	s.handleBalanceMutation(w, req, s.engine.DepositToVault)
}

func (s *Server) handleBalanceMutation(w http.ResponseWriter, req *RPCRequest, op func(crypto.Address, *big.Int, region.Region) error) {
	var params callerAmountRegionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	r := region.Region(strings.ToUpper(strings.TrimSpace(params.Region)))
	if err := s.withBlock(func() error {
		return op(caller, amount, r)
	}); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResult{OK: true})
}

func (s *Server) handleClaimRewards(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	var claimed *big.Int
	if err := s.withBlock(func() error {
		var opErr error
		claimed, opErr = s.engine.ClaimRewards(caller)
		return opErr
	}); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, claimResult{Claimed: claimed.String()})
}

func (s *Server) handleDistributeRewards(w http.ResponseWriter, req *RPCRequest) {
	var params distributeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	account, err := parseAddress("account", params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	if err := s.withBlock(func() error {
		return s.engine.DistributeReward(caller, account, amount)
	}); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResult{OK: true})
}

func (s *Server) handleUpdateOracle(w http.ResponseWriter, req *RPCRequest) {
	var params oracleUpdateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	r := region.Region(strings.ToUpper(strings.TrimSpace(params.Region)))
	if err := s.withBlock(func() error {
		return s.engine.UpdatePrice(caller, r, price)
	}); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResult{OK: true})
}

func (s *Server) handleAddOracleOperator(w http.ResponseWriter, req *RPCRequest) {
	s.handleOperatorUpdate(w, req, true)
}

func (s *Server) handleRemoveOracleOperator(w http.ResponseWriter, req *RPCRequest) {
	s.handleOperatorUpdate(w, req, false)
}

func (s *Server) handleOperatorUpdate(w http.ResponseWriter, req *RPCRequest, authorized bool) {
	var params operatorParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	operator, err := parseAddress("operator", params.Operator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	if err := s.withBlock(func() error {
		return s.engine.SetOracleOperator(caller, operator, authorized)
	}); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResult{OK: true})
}

func (s *Server) handleToggleProtocol(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	var active bool
	if err := s.withBlock(func() error {
		var opErr error
		active, opErr = s.engine.ToggleActive(caller)
		return opErr
	}); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, toggleResult{Active: active})
}

func (s *Server) handleInitializeVaults(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	if err := s.withBlock(func() error {
		return s.engine.InitializeVaults(caller)
	}); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResult{OK: true})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, req *RPCRequest) {
	var params accountRegionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	s.serveRead(func() {
		balance, err := s.engine.Balance(addr, region.Region(strings.ToUpper(strings.TrimSpace(params.Region))))
		if err != nil {
			writeEngineError(w, req.ID, err)
			return
		}
		writeResult(w, req.ID, balanceResult{Balance: balance.String()})
	})
}

func (s *Server) handleGetCollateral(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	s.serveRead(func() {
		dep, err := s.engine.Collateral(addr)
		if err != nil {
			writeEngineError(w, req.ID, err)
			return
		}
		writeResult(w, req.ID, collateralResult{Amount: dep.Amount.String(), Region: string(dep.Region)})
	})
}

func (s *Server) handleGetRegionalPrice(w http.ResponseWriter, req *RPCRequest) {
	var params regionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	s.serveRead(func() {
		price, err := s.engine.RegionalPrice(region.Region(strings.ToUpper(strings.TrimSpace(params.Region))))
		if err != nil {
			writeEngineError(w, req.ID, err)
			return
		}
		writeResult(w, req.ID, priceResult{Price: price.Price.String(), LastUpdate: price.LastUpdate})
	})
}

func (s *Server) handleGetVaultBalance(w http.ResponseWriter, req *RPCRequest) {
	var params regionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	s.serveRead(func() {
		vault, err := s.engine.VaultBalance(region.Region(strings.ToUpper(strings.TrimSpace(params.Region))))
		if err != nil {
			writeEngineError(w, req.ID, err)
			return
		}
		writeResult(w, req.ID, vaultResult{Balance: vault.Balance.String(), TotalYield: vault.TotalYield.String()})
	})
}

func (s *Server) handleGetUserPosition(w http.ResponseWriter, req *RPCRequest) {
	var params accountRegionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	s.serveRead(func() {
		pos, err := s.engine.Position(addr, region.Region(strings.ToUpper(strings.TrimSpace(params.Region))))
		if err != nil {
			writeEngineError(w, req.ID, err)
			return
		}
		writeResult(w, req.ID, positionResult{Collateral: pos.Collateral.String(), Debt: pos.Debt.String()})
	})
}

func (s *Server) handleGetCollateralRatio(w http.ResponseWriter, req *RPCRequest) {
	var params accountRegionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	s.serveRead(func() {
		ratio, err := s.engine.CollateralRatio(addr, region.Region(strings.ToUpper(strings.TrimSpace(params.Region))))
		if err != nil {
			writeEngineError(w, req.ID, err)
			return
		}
		writeResult(w, req.ID, ratioResult{Ratio: ratio.String()})
	})
}

func (s *Server) handleGetProtocolStatus(w http.ResponseWriter, req *RPCRequest) {
	s.serveRead(func() {
		st, err := s.engine.Status()
		if err != nil {
			writeEngineError(w, req.ID, err)
			return
		}
		writeResult(w, req.ID, statusResult{
			Active:               st.Active,
			TotalValueLocked:     st.TotalValueLocked.String(),
			StabilityPoolBalance: st.StabilityPoolBalance.String(),
		})
	})
}

func (s *Server) handleIsOracleOperator(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid params", err.Error())
		return
	}
	s.serveRead(func() {
		authorized, err := s.engine.IsOracleOperator(addr)
		if err != nil {
			writeEngineError(w, req.ID, err)
			return
		}
		writeResult(w, req.ID, operatorResult{Authorized: authorized})
	})
}
