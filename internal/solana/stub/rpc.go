package stub

import (
	"context"
	"fmt"

	"megatron-solana/internal/solana"
)

// RPCClient implements solana.RPCClient for testing. Balances and accounts
// are seeded directly on the maps; submitted transactions are captured for
// inspection.
type RPCClient struct {
	Balances      map[string]uint64
	Accounts      map[string]*solana.AccountInfo
	TokenBalances map[string]*solana.TokenAmount
	Blockhash     string

	// SentTransactions captures base64 payloads passed to SendTransaction.
	SentTransactions []string
	// SendSignature is returned by SendTransaction; falls back to a
	// deterministic placeholder when empty.
	SendSignature string
	// SendErr, when set, fails SendTransaction.
	SendErr error
	// Statuses is returned by GetSignatureStatuses for any signature.
	Statuses []*solana.SignatureStatus
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances:      make(map[string]uint64),
		Accounts:      make(map[string]*solana.AccountInfo),
		TokenBalances: make(map[string]*solana.TokenAmount),
		Blockhash:     "GfVcyD4kkTrj4bKc7WA9sZCin9JDbdT4Zkd3EittNR1W",
	}
}

// GetBalance returns the seeded lamport balance (0 for unknown accounts).
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	return c.Balances[pubkey], nil
}

// GetAccountInfo returns the seeded account or nil.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	return c.Accounts[pubkey], nil
}

// GetTokenAccountBalance returns the seeded token balance or nil.
func (c *RPCClient) GetTokenAccountBalance(_ context.Context, tokenAccount string) (*solana.TokenAmount, error) {
	return c.TokenBalances[tokenAccount], nil
}

// GetLatestBlockhash returns the seeded blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (*solana.LatestBlockhash, error) {
	if c.Blockhash == "" {
		return nil, fmt.Errorf("no blockhash seeded")
	}
	return &solana.LatestBlockhash{Blockhash: c.Blockhash, LastValidBlockHeight: 1000}, nil
}

// SendTransaction captures the payload and returns the configured signature.
func (c *RPCClient) SendTransaction(_ context.Context, signedTxBase64 string) (string, error) {
	if c.SendErr != nil {
		return "", c.SendErr
	}
	c.SentTransactions = append(c.SentTransactions, signedTxBase64)
	if c.SendSignature != "" {
		return c.SendSignature, nil
	}
	return fmt.Sprintf("stub-signature-%d", len(c.SentTransactions)), nil
}

// GetSignatureStatuses returns the configured statuses, defaulting to one
// confirmed entry per requested signature.
func (c *RPCClient) GetSignatureStatuses(_ context.Context, signatures []string) ([]*solana.SignatureStatus, error) {
	if c.Statuses != nil {
		return c.Statuses, nil
	}
	statuses := make([]*solana.SignatureStatus, len(signatures))
	for i := range signatures {
		statuses[i] = &solana.SignatureStatus{ConfirmationStatus: "confirmed"}
	}
	return statuses, nil
}

var _ solana.RPCClient = (*RPCClient)(nil)
