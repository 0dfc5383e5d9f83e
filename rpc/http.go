package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"stablemesh/core/state"
	"stablemesh/native/protocol"
	"stablemesh/native/region"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError             = -32700
	codeInvalidRequest         = -32600
	codeMethodNotFound         = -32601
	codeInvalidParams          = -32602
	codeServerError            = -32000
	codeOwnerOnly              = -32021
	codeNotAuthorized          = -32022
	codeInvalidRegion          = -32023
	codeInvalidAmount          = -32024
	codeInsufficientBalance    = -32025
	codeInsufficientCollateral = -32026
)

// Server dispatches JSON-RPC requests onto the protocol engine. It is the
// host side of the ledger: it resolves the caller identity from the request,
// advances the monotonic block counter, and serializes operations so the
// engine observes one transaction at a time. Writes hold the lock
// exclusively; reads share it, so no read can land between the individual
// puts of an in-flight write.
type Server struct {
	mu     sync.RWMutex
	engine *protocol.Engine
	ledger *state.Ledger
	height uint64
	logger *slog.Logger
}

func NewServer(engine *protocol.Engine, ledger *state.Ledger, height uint64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, ledger: ledger, height: height, logger: logger}
}

// Handler returns the http.Handler serving the RPC endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	return mux
}

type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      interface{}     `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, nil, codeInvalidRequest, "POST required", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request body", nil)
		return
	}

	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON-RPC request", err.Error())
		return
	}

	handler, ok := s.route(req.Method)
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		return
	}
	handler(w, &req)
}

type handlerFunc func(http.ResponseWriter, *RPCRequest)

func (s *Server) route(method string) (handlerFunc, bool) {
	switch method {
	case "stable_depositCollateral":
		return s.handleDepositCollateral, true
	case "stable_withdrawCollateral":
		return s.handleWithdrawCollateral, true
	case "stable_mint":
		return s.handleMint, true
	case "stable_burn":
		return s.handleBurn, true
	case "stable_depositToVault":
		return s.handleDepositToVault, true
	case "stable_claimRewards":
		return s.handleClaimRewards, true
	case "stable_distributeRewards":
		return s.handleDistributeRewards, true
	case "stable_updateOracle":
		return s.handleUpdateOracle, true
	case "stable_addOracleOperator":
		return s.handleAddOracleOperator, true
	case "stable_removeOracleOperator":
		return s.handleRemoveOracleOperator, true
	case "stable_toggleProtocol":
		return s.handleToggleProtocol, true
	case "stable_initializeVaults":
		return s.handleInitializeVaults, true
	case "stable_getBalance":
		return s.handleGetBalance, true
	case "stable_getCollateral":
		return s.handleGetCollateral, true
	case "stable_getRegionalPrice":
		return s.handleGetRegionalPrice, true
	case "stable_getVaultBalance":
		return s.handleGetVaultBalance, true
	case "stable_getUserPosition":
		return s.handleGetUserPosition, true
	case "stable_getCollateralRatio":
		return s.handleGetCollateralRatio, true
	case "stable_getProtocolStatus":
		return s.handleGetProtocolStatus, true
	case "stable_isOracleOperator":
		return s.handleIsOracleOperator, true
	default:
		return nil, false
	}
}

// writeEngineError maps the engine's error taxonomy onto JSON-RPC codes. The
// caller observes exactly one tagged error per failed operation.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	switch {
	case errors.Is(err, protocol.ErrOwnerOnly):
		writeError(w, http.StatusForbidden, id, codeOwnerOnly, err.Error(), nil)
	case errors.Is(err, protocol.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, id, codeNotAuthorized, err.Error(), nil)
	case errors.Is(err, protocol.ErrInvalidRegion), errors.Is(err, region.ErrUnknownRegion):
		writeError(w, http.StatusBadRequest, id, codeInvalidRegion, err.Error(), nil)
	case errors.Is(err, protocol.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, id, codeInvalidAmount, err.Error(), nil)
	case errors.Is(err, protocol.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, id, codeInsufficientBalance, err.Error(), nil)
	case errors.Is(err, protocol.ErrInsufficientCollateral):
		writeError(w, http.StatusBadRequest, id, codeInsufficientCollateral, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, id, codeServerError, err.Error(), nil)
	}
}

// withBlock serializes a write operation and advances the block counter the
// engine observes. The counter only moves forward and is persisted so stamps
// cannot regress across a restart; a failed operation still consumes a block,
// matching the host model where every submitted transaction lands in some
// block.
func (s *Server) withBlock(op func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.height++
	s.engine.SetBlockHeight(s.height)
	if s.ledger != nil {
		if err := s.ledger.PutBlockHeight(s.height); err != nil {
			return err
		}
	}
	err := op()
	if err == nil && s.ledger != nil {
		for _, evt := range s.ledger.DrainEvents() {
			s.logger.Info("ledger event", "type", evt.Type, "attributes", evt.Attributes)
		}
	}
	return err
}

// serveRead runs a read handler under the shared lock so it only ever
// observes fully committed operations.
func (s *Server) serveRead(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}
