package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface the wallet relies on.
type RPCClient interface {
	// GetBalance retrieves an account's lamport balance.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetAccountInfo retrieves account info by public key. Returns nil
	// when the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetTokenAccountBalance retrieves an SPL token account's balance.
	// Returns nil when the token account does not exist.
	GetTokenAccountBalance(ctx context.Context, tokenAccount string) (*TokenAmount, error)

	// GetLatestBlockhash retrieves a recent blockhash for transaction
	// construction.
	GetLatestBlockhash(ctx context.Context) (*LatestBlockhash, error)

	// SendTransaction submits a signed, base64-encoded transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, signedTxBase64 string) (string, error)

	// GetSignatureStatuses retrieves confirmation statuses for signatures.
	// Entries are nil for unknown signatures.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// TokenAmount represents an SPL token account balance.
type TokenAmount struct {
	Amount   string  `json:"amount"` // base units, decimal string
	Decimals int     `json:"decimals"`
	UIAmount float64 `json:"uiAmount"`
}

// LatestBlockhash is a recent blockhash plus its validity horizon.
type LatestBlockhash struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// SignatureStatus is the confirmation state of a submitted transaction.
type SignatureStatus struct {
	Slot               int64       `json:"slot"`
	Confirmations      *uint64     `json:"confirmations"`
	ConfirmationStatus string      `json:"confirmationStatus"` // processed, confirmed, finalized
	Err                interface{} `json:"err"`
}
