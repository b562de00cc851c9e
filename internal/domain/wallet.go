package domain

// WalletState is the displayable state of an imported wallet. The signing
// keypair itself lives in the wallet session, never here.
type WalletState struct {
	Connected   bool               `json:"connected"`
	PublicKey   string             `json:"publicKey"`
	BalanceSOL  float64            `json:"balanceSol"`
	Tokens      map[string]float64 `json:"tokens"` // mint address -> UI amount
	RPCEndpoint string             `json:"rpcEndpoint"`
}

// BuyResult is the outcome of a bonding-curve buy transaction.
type BuyResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash"`
	Message string `json:"message"`
}
