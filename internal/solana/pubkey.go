package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Well-known program addresses.
const (
	SystemProgramID          = "11111111111111111111111111111111"
	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

// ErrInvalidPublicKey is returned for malformed base58 addresses.
var ErrInvalidPublicKey = errors.New("invalid public key")

// ErrNoViableBump is returned when no off-curve PDA exists for the seeds.
var ErrNoViableBump = errors.New("no viable bump seed found")

// PublicKey is a 32-byte ed25519 public key / account address.
type PublicKey [32]byte

// ParsePublicKey decodes a base58 address.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != len(pk) {
		return pk, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPublicKey, len(raw), len(pk))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustPublicKey parses a base58 address and panics on failure. For
// compiled-in program IDs only.
func MustPublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String returns the base58 form.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// Bytes returns the raw 32 bytes.
func (pk PublicKey) Bytes() []byte {
	return pk[:]
}

// IsZero reports whether the key is all zero.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// isOnCurve reports whether the 32 bytes decode to a point on the ed25519
// curve. PDAs must be off-curve so no private key can exist for them.
func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// FindProgramAddress derives a Program Derived Address for the seeds:
// starting from bump 255, hash seeds|bump|programID|"ProgramDerivedAddress"
// with SHA256 until the digest is off the ed25519 curve.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, byte, error) {
	for bump := 255; bump >= 0; bump-- {
		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, byte(bump))
		data = append(data, programID[:]...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)
		if !isOnCurve(hash[:]) {
			var pk PublicKey
			copy(pk[:], hash[:])
			return pk, byte(bump), nil
		}
	}
	return PublicKey{}, 0, ErrNoViableBump
}

// AssociatedTokenAddress derives the associated token account of a wallet
// for a mint.
func AssociatedTokenAddress(wallet, mint PublicKey) (PublicKey, error) {
	tokenProgram := MustPublicKey(TokenProgramID)
	ataProgram := MustPublicKey(AssociatedTokenProgramID)

	addr, _, err := FindProgramAddress(
		[][]byte{wallet[:], tokenProgram[:], mint[:]},
		ataProgram,
	)
	if err != nil {
		return PublicKey{}, fmt.Errorf("derive associated token address: %w", err)
	}
	return addr, nil
}
