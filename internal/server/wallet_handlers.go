package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"megatron-solana/internal/wallet"
)

// ImportRequest is the JSON body for POST /api/wallet/import.
type ImportRequest struct {
	PrivateKey  string `json:"privateKey"`
	RPCEndpoint string `json:"rpcEndpoint,omitempty"`
}

// TransferRequest is the JSON body for POST /api/wallet/transfer.
type TransferRequest struct {
	ToAddress string  `json:"toAddress"`
	AmountSOL float64 `json:"amountSol"`
}

// TransferResponse is the JSON response for a successful transfer.
type TransferResponse struct {
	Signature string `json:"signature"`
}

// BuyRequest is the JSON body for POST /api/wallet/buy. An empty mint
// defaults to the configured token.
type BuyRequest struct {
	MintAddress string  `json:"mintAddress,omitempty"`
	AmountSOL   float64 `json:"amountSol"`
}

// handleWalletImport imports a private key and replaces the active session.
func (s *Server) handleWalletImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PrivateKey == "" {
		writeError(w, http.StatusBadRequest, "privateKey is required")
		return
	}

	sess, err := s.wallet.Import(r.Context(), req.PrivateKey, req.RPCEndpoint)
	if err != nil {
		s.logger.Printf("Wallet import failed: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, sess.State)
}

func (s *Server) handleWalletTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()

	signature, err := s.wallet.Transfer(r.Context(), sess, req.ToAddress, req.AmountSOL)
	if err != nil {
		s.logger.Printf("Transfer failed: %v", err)
		writeError(w, walletErrorStatus(err), err.Error())
		return
	}

	s.refreshSession(r, sess)
	writeJSON(w, http.StatusOK, TransferResponse{Signature: signature})
}

func (s *Server) handleWalletBuy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	mint := req.MintAddress
	if mint == "" {
		mint = s.cfg.TokenAddress
	}

	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()

	result, err := s.wallet.BuyOnCurve(r.Context(), sess, mint, req.AmountSOL)
	if err != nil {
		s.logger.Printf("Buy failed: %v", err)
		writeError(w, walletErrorStatus(err), err.Error())
		return
	}

	s.refreshSession(r, sess)
	writeJSON(w, http.StatusOK, result)
}

// refreshSession re-reads balances after a confirmed transaction. Failures
// only log; the transaction already succeeded.
func (s *Server) refreshSession(r *http.Request, sess *wallet.Session) {
	if err := s.wallet.Refresh(r.Context(), sess); err != nil {
		s.logger.Printf("Balance refresh failed: %v", err)
	}
}

// walletErrorStatus maps wallet validation errors to 4xx and everything
// else (RPC, confirmation) to 502.
func walletErrorStatus(err error) int {
	switch {
	case errors.Is(err, wallet.ErrNotConnected):
		return http.StatusConflict
	case errors.Is(err, wallet.ErrInvalidAddress), errors.Is(err, wallet.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
