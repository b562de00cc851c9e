package server

import (
	"fmt"
	"net/http"
	"testing"

	"megatron-solana/internal/domain"
	"megatron-solana/internal/solana"
)

func importWallet(t *testing.T, f *fixture) *solana.Keypair {
	t.Helper()
	kp, err := solana.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}
	f.rpc.Balances[kp.PublicKey().String()] = 3_000_000_000

	body := fmt.Sprintf(`{"privateKey":%q}`, kp.SecretBase58())
	rec := f.post(t, "/api/wallet/import", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status mismatch: got %d, body %s", rec.Code, rec.Body.String())
	}
	return kp
}

func TestWalletImport(t *testing.T) {
	f := newFixture(t)
	kp := importWallet(t, f)

	// Re-import to inspect the wallet state the handler returns.
	body := fmt.Sprintf(`{"privateKey":%q}`, kp.SecretBase58())
	rec := f.post(t, "/api/wallet/import", body)

	var state domain.WalletState
	decodeInto(t, rec, &state)

	if !state.Connected {
		t.Error("wallet state should be connected")
	}
	if state.PublicKey != kp.PublicKey().String() {
		t.Errorf("public key mismatch: got %s", state.PublicKey)
	}
	if state.BalanceSOL != 3 {
		t.Errorf("balance mismatch: got %v, want 3", state.BalanceSOL)
	}

	var status StatusResponse
	decodeInto(t, f.get(t, "/api/status"), &status)
	if !status.WalletConnected {
		t.Error("status should report the wallet as connected")
	}
}

func TestWalletImport_Errors(t *testing.T) {
	f := newFixture(t)

	if rec := f.get(t, "/api/wallet/import"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status mismatch: got %d, want 405", rec.Code)
	}
	if rec := f.post(t, "/api/wallet/import", "{not json"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status mismatch: got %d, want 400", rec.Code)
	}
	if rec := f.post(t, "/api/wallet/import", `{"privateKey":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty key status mismatch: got %d, want 400", rec.Code)
	}
	if rec := f.post(t, "/api/wallet/import", `{"privateKey":"garbage"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid key status mismatch: got %d, want 400", rec.Code)
	}
}

func TestWalletTransfer(t *testing.T) {
	f := newFixture(t)
	importWallet(t, f)

	dest, err := solana.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}

	body := fmt.Sprintf(`{"toAddress":%q,"amountSol":0.5}`, dest.PublicKey().String())
	rec := f.post(t, "/api/wallet/transfer", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer status mismatch: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp TransferResponse
	decodeInto(t, rec, &resp)
	if resp.Signature == "" {
		t.Error("expected a signature")
	}
	if len(f.rpc.SentTransactions) != 1 {
		t.Errorf("sent transaction count mismatch: got %d, want 1", len(f.rpc.SentTransactions))
	}
}

func TestWalletTransfer_WithoutSession(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/api/wallet/transfer", `{"toAddress":"11111111111111111111111111111111","amountSol":1}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status mismatch: got %d, want 409", rec.Code)
	}
}

func TestWalletTransfer_InvalidRequest(t *testing.T) {
	f := newFixture(t)
	importWallet(t, f)

	rec := f.post(t, "/api/wallet/transfer", `{"toAddress":"bad","amountSol":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad address status mismatch: got %d, want 400", rec.Code)
	}

	rec = f.post(t, "/api/wallet/transfer", `{"toAddress":"11111111111111111111111111111111","amountSol":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero amount status mismatch: got %d, want 400", rec.Code)
	}
}

func TestWalletBuy(t *testing.T) {
	f := newFixture(t)
	importWallet(t, f)

	// Empty mint defaults to the configured token.
	rec := f.post(t, "/api/wallet/buy", `{"amountSol":0.1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("buy status mismatch: got %d, body %s", rec.Code, rec.Body.String())
	}

	var result domain.BuyResult
	decodeInto(t, rec, &result)
	if !result.Success {
		t.Error("buy should succeed")
	}
	if result.TxHash == "" {
		t.Error("expected a transaction hash")
	}
}

func TestWalletBuy_WithoutSession(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/api/wallet/buy", `{"amountSol":0.1}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status mismatch: got %d, want 409", rec.Code)
	}
}
