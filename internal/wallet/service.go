// Package wallet implements the session wallet: private-key import, SOL
// transfers carrying the token gas-fee leg, and pump.fun bonding-curve buys.
// All signing happens locally; the chain is reached only through the
// solana.RPCClient interface.
package wallet

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"

	"megatron-solana/internal/config"
	"megatron-solana/internal/domain"
	"megatron-solana/internal/observability"
	"megatron-solana/internal/solana"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// PumpProgramID is the pump.fun bonding curve program.
const PumpProgramID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

// Gas fee charged in Diamond tokens per transfer, paid to the treasury.
const (
	gasFeeTokenAmount   = 10
	gasFeeTokenDecimals = 6
)

// Service errors.
var (
	// ErrNotConnected is returned for operations without an imported wallet.
	ErrNotConnected = errors.New("wallet not connected")

	// ErrInvalidAddress is returned for malformed destination addresses.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Session is one imported wallet with its own scoped RPC client. Nothing
// here is process-global: switching RPC endpoints means importing again,
// which builds a new session.
type Session struct {
	keypair  *solana.Keypair
	rpc      solana.RPCClient
	endpoint string

	// State is the displayable wallet state.
	State domain.WalletState
}

// PublicKey returns the session's base58 address.
func (s *Session) PublicKey() string {
	return s.keypair.PublicKey().String()
}

// ServiceOptions contains configuration for creating a Service.
type ServiceOptions struct {
	Config config.Config

	// DialRPC builds an RPC client for an endpoint. Default: NewHTTPClient.
	DialRPC func(endpoint string) solana.RPCClient

	Logger *log.Logger
}

// Service performs wallet operations against sessions it created.
type Service struct {
	cfg     config.Config
	dialRPC func(endpoint string) solana.RPCClient
	logger  *log.Logger
}

// NewService creates a wallet Service.
func NewService(opts ServiceOptions) *Service {
	dialRPC := opts.DialRPC
	if dialRPC == nil {
		dialRPC = func(endpoint string) solana.RPCClient {
			return solana.NewHTTPClient(endpoint)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		cfg:     opts.Config,
		dialRPC: dialRPC,
		logger:  logger,
	}
}

// Import decodes a base58 private key, connects a session-scoped RPC client
// and loads the wallet's SOL and token balances. A non-empty customRPC
// overrides the configured endpoint for this session only.
func (s *Service) Import(ctx context.Context, privateKey, customRPC string) (*Session, error) {
	endpoint := s.cfg.RPCEndpoint
	if customRPC != "" {
		u, err := url.Parse(customRPC)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			observability.RecordWalletImport("error")
			return nil, fmt.Errorf("invalid custom RPC URL %q", customRPC)
		}
		endpoint = customRPC
	}

	keypair, err := solana.KeypairFromBase58(privateKey)
	if err != nil {
		observability.RecordWalletImport("error")
		return nil, err
	}

	sess := &Session{
		keypair:  keypair,
		rpc:      s.dialRPC(endpoint),
		endpoint: endpoint,
	}

	if err := s.Refresh(ctx, sess); err != nil {
		observability.RecordWalletImport("error")
		return nil, err
	}

	observability.RecordWalletImport("success")
	s.logger.Printf("Wallet imported: %s (endpoint %s)", sess.PublicKey(), endpoint)
	return sess, nil
}

// Refresh re-reads the session's SOL and token balances.
func (s *Service) Refresh(ctx context.Context, sess *Session) error {
	if sess == nil {
		return ErrNotConnected
	}
	owner := sess.keypair.PublicKey()

	lamports, err := sess.rpc.GetBalance(ctx, owner.String())
	if err != nil {
		return fmt.Errorf("mainnet connection failed: %w", err)
	}

	// The token account may simply not exist yet; that is a zero balance,
	// not an error.
	tokenBalance := 0.0
	mint, err := solana.ParsePublicKey(s.cfg.TokenAddress)
	if err == nil {
		if ata, err := solana.AssociatedTokenAddress(owner, mint); err == nil {
			amount, err := sess.rpc.GetTokenAccountBalance(ctx, ata.String())
			if err != nil {
				s.logger.Printf("Token balance lookup failed for %s: %v", ata, err)
			} else if amount != nil {
				tokenBalance = amount.UIAmount
			}
		}
	}

	sess.State = domain.WalletState{
		Connected:   true,
		PublicKey:   owner.String(),
		BalanceSOL:  float64(lamports) / LamportsPerSOL,
		Tokens:      map[string]float64{s.cfg.TokenAddress: tokenBalance},
		RPCEndpoint: sess.endpoint,
	}
	return nil
}

// Transfer sends SOL to a destination, attaching a best-effort gas-fee leg
// of Diamond tokens to the treasury. The fee leg is skipped when the sender
// has no token account. Returns the transaction signature.
func (s *Service) Transfer(ctx context.Context, sess *Session, toAddress string, amountSOL float64) (string, error) {
	if sess == nil || !sess.State.Connected {
		return "", ErrNotConnected
	}
	if amountSOL <= 0 {
		return "", fmt.Errorf("%w: %v SOL", ErrInvalidAmount, amountSOL)
	}
	to, err := solana.ParsePublicKey(toAddress)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	from := sess.keypair.PublicKey()
	lamports := uint64(math.Floor(amountSOL * LamportsPerSOL))

	instructions := []solana.Instruction{
		solana.NewTransferInstruction(from, to, lamports),
	}

	if feeIx, ok := s.gasFeeInstruction(ctx, sess, from); ok {
		instructions = append(instructions, feeIx)
	}

	signature, err := s.submit(ctx, sess, "transfer", instructions...)
	if err != nil {
		return "", fmt.Errorf("mainnet transfer failed: %w", err)
	}

	s.logger.Printf("Transfer confirmed: %s", signature)
	return signature, nil
}

// gasFeeInstruction builds the token fee leg when the sender has a token
// account. The treasury account is assumed initialized.
func (s *Service) gasFeeInstruction(ctx context.Context, sess *Session, from solana.PublicKey) (solana.Instruction, bool) {
	mint, err := solana.ParsePublicKey(s.cfg.TokenAddress)
	if err != nil {
		return solana.Instruction{}, false
	}
	treasury, err := solana.ParsePublicKey(s.cfg.TreasuryAddress)
	if err != nil {
		return solana.Instruction{}, false
	}

	sourceATA, err := solana.AssociatedTokenAddress(from, mint)
	if err != nil {
		return solana.Instruction{}, false
	}
	destATA, err := solana.AssociatedTokenAddress(treasury, mint)
	if err != nil {
		return solana.Instruction{}, false
	}

	info, err := sess.rpc.GetAccountInfo(ctx, sourceATA.String())
	if err != nil || info == nil {
		s.logger.Printf("Skipping gas fee leg: sender token account unavailable")
		return solana.Instruction{}, false
	}

	feeAmount := uint64(gasFeeTokenAmount) * uint64(math.Pow10(gasFeeTokenDecimals))
	return solana.NewTokenTransferInstruction(sourceATA, destATA, from, feeAmount), true
}

// BuyOnCurve buys the token on its pump.fun bonding curve for amountSOL.
func (s *Service) BuyOnCurve(ctx context.Context, sess *Session, mintAddress string, amountSOL float64) (*domain.BuyResult, error) {
	if sess == nil || !sess.State.Connected {
		return nil, ErrNotConnected
	}
	if amountSOL <= 0 {
		return nil, fmt.Errorf("%w: %v SOL", ErrInvalidAmount, amountSOL)
	}
	mint, err := solana.ParsePublicKey(mintAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	payer := sess.keypair.PublicKey()
	pumpProgram := solana.MustPublicKey(PumpProgramID)

	bondingCurve, _, err := solana.FindProgramAddress([][]byte{mint.Bytes()}, pumpProgram)
	if err != nil {
		return nil, fmt.Errorf("derive bonding curve account: %w", err)
	}

	buyerATA, err := solana.AssociatedTokenAddress(payer, mint)
	if err != nil {
		return nil, fmt.Errorf("derive buyer token account: %w", err)
	}

	var instructions []solana.Instruction

	info, err := sess.rpc.GetAccountInfo(ctx, buyerATA.String())
	if err != nil {
		return nil, fmt.Errorf("check buyer token account: %w", err)
	}
	if info == nil {
		instructions = append(instructions, solana.NewCreateATAInstruction(payer, buyerATA, payer, mint))
	}

	instructions = append(instructions, buyInstruction(pumpProgram, mint, bondingCurve, buyerATA, payer, amountSOL))

	signature, err := s.submit(ctx, sess, "buy", instructions...)
	if err != nil {
		return nil, fmt.Errorf("bonding curve buy failed: %w", err)
	}

	s.logger.Printf("Bonding curve buy confirmed: %s", signature)
	return &domain.BuyResult{
		Success: true,
		TxHash:  signature,
		Message: fmt.Sprintf("Buy confirmed, tx %s", shortSig(signature)),
	}, nil
}

// buyInstruction encodes the bonding-curve buy: one tag byte plus the
// lamport amount little-endian.
func buyInstruction(program, mint, bondingCurve, buyerATA, payer solana.PublicKey, amountSOL float64) solana.Instruction {
	lamports := uint64(math.Floor(amountSOL * LamportsPerSOL))
	data := make([]byte, 9)
	data[0] = 0 // buy
	binary.LittleEndian.PutUint64(data[1:9], lamports)

	return solana.Instruction{
		ProgramID: program,
		Accounts: []solana.AccountMeta{
			{Pubkey: mint, Writable: true},
			{Pubkey: bondingCurve, Writable: true},
			{Pubkey: buyerATA, Writable: true},
			{Pubkey: payer, Signer: true, Writable: true},
			{Pubkey: solana.MustPublicKey(solana.SystemProgramID)},
		},
		Data: data,
	}
}

// submit builds, signs, sends and confirms one transaction.
func (s *Service) submit(ctx context.Context, sess *Session, kind string, instructions ...solana.Instruction) (string, error) {
	blockhash, err := sess.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		observability.RecordTransaction(kind, "error")
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(sess.keypair.PublicKey(), blockhash.Blockhash, instructions...)
	if err != nil {
		observability.RecordTransaction(kind, "error")
		return "", fmt.Errorf("build transaction: %w", err)
	}
	if err := tx.Sign(sess.keypair); err != nil {
		observability.RecordTransaction(kind, "error")
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	payload, err := tx.Base64()
	if err != nil {
		observability.RecordTransaction(kind, "error")
		return "", err
	}

	signature, err := sess.rpc.SendTransaction(ctx, payload)
	if err != nil {
		observability.RecordTransaction(kind, "error")
		return "", fmt.Errorf("send transaction: %w", err)
	}

	confirmer := solana.NewConfirmer(s.cfg.WSEndpoint, sess.rpc, nil)
	if err := confirmer.Confirm(ctx, signature); err != nil {
		observability.RecordTransaction(kind, "unconfirmed")
		return "", fmt.Errorf("confirm %s: %w", signature, err)
	}

	observability.RecordTransaction(kind, "success")
	return signature, nil
}

func shortSig(sig string) string {
	if len(sig) <= 8 {
		return sig
	}
	return sig[:8] + "..."
}
