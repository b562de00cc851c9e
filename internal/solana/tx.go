package solana

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// signatureSize is the length of an ed25519 signature.
const signatureSize = 64

// ErrMissingSignature is returned when serializing a transaction whose
// required signatures are not all present.
var ErrMissingSignature = errors.New("missing required signature")

// AccountMeta describes how an instruction touches an account.
type AccountMeta struct {
	Pubkey   PublicKey
	Signer   bool
	Writable bool
}

// Instruction is one program invocation within a transaction.
type Instruction struct {
	ProgramID PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// Transaction is a legacy (pre-versioned) Solana transaction: a compiled
// message plus one signature per required signer.
type Transaction struct {
	message    []byte
	signers    []PublicKey // required signers in message order
	signatures [][]byte    // parallel to signers; nil until signed
}

// NewTransaction compiles instructions into a legacy message. The fee payer
// is always the first account and first required signer.
func NewTransaction(feePayer PublicKey, recentBlockhash string, instructions ...Instruction) (*Transaction, error) {
	if feePayer.IsZero() {
		return nil, fmt.Errorf("fee payer is required")
	}
	if len(instructions) == 0 {
		return nil, fmt.Errorf("at least one instruction is required")
	}

	blockhash, err := base58.Decode(recentBlockhash)
	if err != nil || len(blockhash) != 32 {
		return nil, fmt.Errorf("invalid recent blockhash %q", recentBlockhash)
	}

	accounts := compileAccounts(feePayer, instructions)

	index := make(map[PublicKey]int, len(accounts))
	var signers []PublicKey
	numRequiredSignatures := 0
	numReadonlySigned := 0
	numReadonlyUnsigned := 0
	for i, m := range accounts {
		index[m.Pubkey] = i
		if m.Signer {
			numRequiredSignatures++
			signers = append(signers, m.Pubkey)
			if !m.Writable {
				numReadonlySigned++
			}
		} else if !m.Writable {
			numReadonlyUnsigned++
		}
	}

	// Header, account keys, blockhash, compiled instructions.
	msg := make([]byte, 0, 256)
	msg = append(msg, byte(numRequiredSignatures), byte(numReadonlySigned), byte(numReadonlyUnsigned))

	msg = appendCompactU16(msg, len(accounts))
	for _, m := range accounts {
		msg = append(msg, m.Pubkey[:]...)
	}

	msg = append(msg, blockhash...)

	msg = appendCompactU16(msg, len(instructions))
	for _, ix := range instructions {
		msg = append(msg, byte(index[ix.ProgramID]))
		msg = appendCompactU16(msg, len(ix.Accounts))
		for _, m := range ix.Accounts {
			msg = append(msg, byte(index[m.Pubkey]))
		}
		msg = appendCompactU16(msg, len(ix.Data))
		msg = append(msg, ix.Data...)
	}

	return &Transaction{
		message:    msg,
		signers:    signers,
		signatures: make([][]byte, len(signers)),
	}, nil
}

// compileAccounts merges instruction account metas into the canonical
// message ordering: fee payer, writable signers, readonly signers, writable
// non-signers, readonly non-signers. Program IDs join as readonly
// non-signers unless referenced otherwise.
func compileAccounts(feePayer PublicKey, instructions []Instruction) []AccountMeta {
	merged := map[PublicKey]*AccountMeta{
		feePayer: {Pubkey: feePayer, Signer: true, Writable: true},
	}
	var order []PublicKey
	order = append(order, feePayer)

	upsert := func(m AccountMeta) {
		if existing, ok := merged[m.Pubkey]; ok {
			existing.Signer = existing.Signer || m.Signer
			existing.Writable = existing.Writable || m.Writable
			return
		}
		copied := m
		merged[m.Pubkey] = &copied
		order = append(order, m.Pubkey)
	}

	for _, ix := range instructions {
		for _, m := range ix.Accounts {
			upsert(m)
		}
		upsert(AccountMeta{Pubkey: ix.ProgramID})
	}

	rank := func(m *AccountMeta) int {
		switch {
		case m.Pubkey == feePayer:
			return 0
		case m.Signer && m.Writable:
			return 1
		case m.Signer:
			return 2
		case m.Writable:
			return 3
		default:
			return 4
		}
	}

	// Stable bucket sort: first-appearance order within each class.
	var result []AccountMeta
	for class := 0; class <= 4; class++ {
		for _, pk := range order {
			if m := merged[pk]; rank(m) == class {
				result = append(result, *m)
			}
		}
	}
	return result
}

// Message returns the serialized message bytes (what gets signed).
func (tx *Transaction) Message() []byte {
	return tx.message
}

// Signers returns the required signers in message order.
func (tx *Transaction) Signers() []PublicKey {
	return tx.signers
}

// Sign fills in signatures for every provided keypair that is a required
// signer. Unknown keypairs are rejected.
func (tx *Transaction) Sign(keypairs ...*Keypair) error {
	for _, kp := range keypairs {
		found := false
		for i, signer := range tx.signers {
			if signer == kp.PublicKey() {
				tx.signatures[i] = kp.Sign(tx.message)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("keypair %s is not a required signer", kp.PublicKey())
		}
	}
	return nil
}

// Serialize returns the wire form: compact array of signatures followed by
// the message. All required signatures must be present.
func (tx *Transaction) Serialize() ([]byte, error) {
	out := make([]byte, 0, len(tx.signatures)*signatureSize+len(tx.message)+4)
	out = appendCompactU16(out, len(tx.signatures))
	for i, sig := range tx.signatures {
		if len(sig) != signatureSize {
			return nil, fmt.Errorf("%w: signer %s", ErrMissingSignature, tx.signers[i])
		}
		out = append(out, sig...)
	}
	out = append(out, tx.message...)
	return out, nil
}

// Base64 returns the wire form base64-encoded for sendTransaction.
func (tx *Transaction) Base64() (string, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Signature returns the base58 transaction signature (the fee payer's),
// or "" before signing.
func (tx *Transaction) Signature() string {
	if len(tx.signatures) == 0 || len(tx.signatures[0]) != signatureSize {
		return ""
	}
	return base58.Encode(tx.signatures[0])
}

// appendCompactU16 appends the compact-u16 (shortvec) encoding of n.
func appendCompactU16(buf []byte, n int) []byte {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}
