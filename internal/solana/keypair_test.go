package solana

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

func TestKeypairFromBase58_RoundTrip(t *testing.T) {
	kp, err := NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}

	restored, err := KeypairFromBase58(kp.SecretBase58())
	if err != nil {
		t.Fatalf("KeypairFromBase58 failed: %v", err)
	}
	if restored.PublicKey() != kp.PublicKey() {
		t.Errorf("public key mismatch: got %s, want %s", restored.PublicKey(), kp.PublicKey())
	}
}

func TestKeypairFromBase58_TrimsWhitespace(t *testing.T) {
	kp, err := NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}
	if _, err := KeypairFromBase58("  " + kp.SecretBase58() + "\n"); err != nil {
		t.Errorf("whitespace-padded secret rejected: %v", err)
	}
}

func TestKeypairFromBase58_Invalid(t *testing.T) {
	// Wrong length.
	short := base58.Encode(make([]byte, 32))
	if _, err := KeypairFromBase58(short); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Errorf("short secret error = %v, want ErrInvalidPrivateKey", err)
	}

	// Not base58 at all.
	if _, err := KeypairFromBase58("0O0O0O"); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Errorf("garbage secret error = %v, want ErrInvalidPrivateKey", err)
	}

	// 64 bytes whose second half is not the matching public key.
	bogus := make([]byte, ed25519.PrivateKeySize)
	bogus[0] = 1
	if _, err := KeypairFromBase58(base58.Encode(bogus)); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Errorf("mismatched secret error = %v, want ErrInvalidPrivateKey", err)
	}
}

func TestKeypairFromBase58_RejectsForeignPublicHalf(t *testing.T) {
	// Splice one keypair's seed with another's public key. Accepting it
	// would yield signatures that never verify against the address.
	a, err := NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}
	b, err := NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}

	rawA, err := base58.Decode(a.SecretBase58())
	if err != nil {
		t.Fatalf("decode secret: %v", err)
	}
	spliced := make([]byte, ed25519.PrivateKeySize)
	copy(spliced[:32], rawA[:32])
	copy(spliced[32:], b.PublicKey().Bytes())

	if _, err := KeypairFromBase58(base58.Encode(spliced)); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Errorf("spliced secret error = %v, want ErrInvalidPrivateKey", err)
	}
}

func TestKeypairSign(t *testing.T) {
	kp, err := NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}

	msg := []byte("payload")
	sig := kp.Sign(msg)
	if len(sig) != ed25519.SignatureSize {
		t.Fatalf("signature length mismatch: got %d", len(sig))
	}
	if !ed25519.Verify(kp.PublicKey().Bytes(), msg, sig) {
		t.Error("signature does not verify")
	}
}
