package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

const testBlockhash = "GfVcyD4kkTrj4bKc7WA9sZCin9JDbdT4Zkd3EittNR1W"

func mustKeypair(t *testing.T) *Keypair {
	t.Helper()
	kp, err := NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}
	return kp
}

func TestNewTransaction_HeaderAndOrdering(t *testing.T) {
	payer := mustKeypair(t)
	dest := mustKeypair(t).PublicKey()

	tx, err := NewTransaction(payer.PublicKey(), testBlockhash,
		NewTransferInstruction(payer.PublicKey(), dest, 1000))
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}

	msg := tx.Message()
	// Header: 1 required signature, 0 readonly signed, 1 readonly unsigned
	// (the system program).
	if msg[0] != 1 || msg[1] != 0 || msg[2] != 1 {
		t.Errorf("header mismatch: got %d %d %d, want 1 0 1", msg[0], msg[1], msg[2])
	}

	// Account keys: compact length then 32 bytes each, payer first,
	// program last.
	if msg[3] != 3 {
		t.Fatalf("account count mismatch: got %d, want 3", msg[3])
	}
	keys := msg[4 : 4+3*32]
	if !bytes.Equal(keys[:32], payer.PublicKey().Bytes()) {
		t.Error("fee payer is not the first account")
	}
	if !bytes.Equal(keys[32:64], dest.Bytes()) {
		t.Error("destination is not the second account")
	}
	system := MustPublicKey(SystemProgramID)
	if !bytes.Equal(keys[64:96], system.Bytes()) {
		t.Error("system program is not the last account")
	}

	// Blockhash follows the account keys.
	rawHash, _ := base58.Decode(testBlockhash)
	if !bytes.Equal(msg[4+3*32:4+3*32+32], rawHash) {
		t.Error("blockhash not found after account keys")
	}

	if len(tx.Signers()) != 1 || tx.Signers()[0] != payer.PublicKey() {
		t.Errorf("signers mismatch: got %v", tx.Signers())
	}
}

func TestTransaction_SignAndSerialize(t *testing.T) {
	payer := mustKeypair(t)
	dest := mustKeypair(t).PublicKey()

	tx, err := NewTransaction(payer.PublicKey(), testBlockhash,
		NewTransferInstruction(payer.PublicKey(), dest, 1000))
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}

	// Serializing before signing fails.
	if _, err := tx.Serialize(); !errors.Is(err, ErrMissingSignature) {
		t.Errorf("unsigned serialize error = %v, want ErrMissingSignature", err)
	}

	if err := tx.Sign(payer); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	raw, err := tx.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	// Wire form: signature count, signatures, then the message.
	if raw[0] != 1 {
		t.Fatalf("signature count mismatch: got %d, want 1", raw[0])
	}
	sig := raw[1 : 1+signatureSize]
	msg := raw[1+signatureSize:]
	if !bytes.Equal(msg, tx.Message()) {
		t.Error("serialized message does not match Message()")
	}
	if !ed25519.Verify(payer.PublicKey().Bytes(), msg, sig) {
		t.Error("signature does not verify against the message")
	}
	if tx.Signature() != base58.Encode(sig) {
		t.Errorf("Signature() mismatch: got %s", tx.Signature())
	}
}

func TestTransaction_RejectsForeignSigner(t *testing.T) {
	payer := mustKeypair(t)
	stranger := mustKeypair(t)

	tx, err := NewTransaction(payer.PublicKey(), testBlockhash,
		NewTransferInstruction(payer.PublicKey(), stranger.PublicKey(), 1))
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	if err := tx.Sign(stranger); err == nil {
		t.Error("expected error signing with a non-required keypair")
	}
}

func TestCompileAccounts_MergesDuplicates(t *testing.T) {
	payer := mustKeypair(t).PublicKey()
	other := mustKeypair(t).PublicKey()
	program := MustPublicKey(TokenProgramID)

	// The same account appears readonly in one instruction and writable in
	// another; the merged meta must be writable.
	ix1 := Instruction{ProgramID: program, Accounts: []AccountMeta{{Pubkey: other}}}
	ix2 := Instruction{ProgramID: program, Accounts: []AccountMeta{{Pubkey: other, Writable: true}}}

	accounts := compileAccounts(payer, []Instruction{ix1, ix2})
	if len(accounts) != 3 {
		t.Fatalf("account count mismatch: got %d, want 3", len(accounts))
	}

	found := false
	for _, m := range accounts {
		if m.Pubkey == other {
			found = true
			if !m.Writable {
				t.Error("merged account lost writable flag")
			}
		}
	}
	if !found {
		t.Fatal("merged account missing")
	}

	// Writable non-signer sorts before the readonly program account.
	if accounts[1].Pubkey != other || accounts[2].Pubkey != program {
		t.Errorf("ordering mismatch: got %v then %v", accounts[1].Pubkey, accounts[2].Pubkey)
	}
}

func TestAppendCompactU16(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}
	for _, tt := range tests {
		got := appendCompactU16(nil, tt.n)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("appendCompactU16(%d) = %x, want %x", tt.n, got, tt.want)
		}
	}
}

func TestInstructionEncodings(t *testing.T) {
	from := mustKeypair(t).PublicKey()
	to := mustKeypair(t).PublicKey()

	transfer := NewTransferInstruction(from, to, 5_000_000)
	if len(transfer.Data) != 12 {
		t.Fatalf("system transfer data length mismatch: got %d, want 12", len(transfer.Data))
	}
	if tag := binary.LittleEndian.Uint32(transfer.Data[0:4]); tag != 2 {
		t.Errorf("system transfer tag mismatch: got %d, want 2", tag)
	}
	if amt := binary.LittleEndian.Uint64(transfer.Data[4:12]); amt != 5_000_000 {
		t.Errorf("system transfer lamports mismatch: got %d", amt)
	}

	tokenTransfer := NewTokenTransferInstruction(from, to, from, 10_000_000)
	if len(tokenTransfer.Data) != 9 {
		t.Fatalf("token transfer data length mismatch: got %d, want 9", len(tokenTransfer.Data))
	}
	if tokenTransfer.Data[0] != 3 {
		t.Errorf("token transfer tag mismatch: got %d, want 3", tokenTransfer.Data[0])
	}
	if amt := binary.LittleEndian.Uint64(tokenTransfer.Data[1:9]); amt != 10_000_000 {
		t.Errorf("token transfer amount mismatch: got %d", amt)
	}

	mint := MustPublicKey(TokenProgramID)
	ata, err := AssociatedTokenAddress(from, mint)
	if err != nil {
		t.Fatalf("AssociatedTokenAddress failed: %v", err)
	}
	create := NewCreateATAInstruction(from, ata, from, mint)
	if len(create.Data) != 0 {
		t.Errorf("create ATA data should be empty, got %d bytes", len(create.Data))
	}
	if create.ProgramID != MustPublicKey(AssociatedTokenProgramID) {
		t.Errorf("create ATA program mismatch: got %s", create.ProgramID)
	}
}
