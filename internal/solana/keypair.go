package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ErrInvalidPrivateKey is returned when a base58 secret cannot be decoded
// into a 64-byte ed25519 keypair.
var ErrInvalidPrivateKey = errors.New("invalid private key")

// Keypair is a signing ed25519 keypair. The 64-byte Solana secret embeds
// the public key in its second half.
type Keypair struct {
	pub  PublicKey
	priv ed25519.PrivateKey
}

// KeypairFromBase58 decodes a base58-encoded 64-byte secret key.
func KeypairFromBase58(secret string) (*Keypair, error) {
	raw, err := base58.Decode(strings.TrimSpace(secret))
	if err != nil {
		return nil, fmt.Errorf("%w: not base58: %v", ErrInvalidPrivateKey, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPrivateKey, len(raw), ed25519.PrivateKeySize)
	}

	// The embedded public key must match the one derived from the seed, or
	// every signature would fail verification against the address.
	priv := ed25519.NewKeyFromSeed(raw[:32])
	derived := priv.Public().(ed25519.PublicKey)
	if !bytes.Equal(raw[32:], derived) {
		return nil, fmt.Errorf("%w: embedded public key mismatch", ErrInvalidPrivateKey)
	}

	var pub PublicKey
	copy(pub[:], derived)
	return &Keypair{pub: pub, priv: priv}, nil
}

// NewKeypair generates a fresh keypair.
func NewKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	var pub PublicKey
	copy(pub[:], priv.Public().(ed25519.PublicKey))
	return &Keypair{pub: pub, priv: priv}, nil
}

// PublicKey returns the public half.
func (k *Keypair) PublicKey() PublicKey {
	return k.pub
}

// SecretBase58 returns the base58 form of the 64-byte secret.
func (k *Keypair) SecretBase58() string {
	return base58.Encode(k.priv)
}

// Sign signs the message with the private key.
func (k *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.priv, message)
}
