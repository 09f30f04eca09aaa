// Package cloudsync pushes the student record to a remote document store
// keyed by the trainer's identity.
package cloudsync

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ErrUnauthenticated means the caller is not signed in, or the token does not
// match the uid.
var ErrUnauthenticated = errors.New("sign in to sync")

// Identity is an externally issued sign-in: the trainer's uid and a token
// bound to it.
type Identity struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

// Signer issues and verifies identity tokens as keyed BLAKE2b MACs of the uid.
type Signer struct {
	key []byte
}

// NewSigner creates a signer. The secret must be 16 to 64 bytes.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) < 16 || len(secret) > blake2b.Size {
		return nil, fmt.Errorf("sync secret must be 16-%d bytes, got %d", blake2b.Size, len(secret))
	}
	return &Signer{key: append([]byte(nil), secret...)}, nil
}

// IssueToken returns the token for uid.
func (s *Signer) IssueToken(uid string) (string, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", ErrUnauthenticated
	}
	return s.mac(uid)
}

// Verify checks that id carries a token issued for its uid.
func (s *Signer) Verify(id Identity) error {
	uid := strings.TrimSpace(id.UID)
	if uid == "" || id.Token == "" {
		return ErrUnauthenticated
	}
	want, err := s.mac(uid)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(id.Token))) != 1 {
		return ErrUnauthenticated
	}
	return nil
}

func (s *Signer) mac(uid string) (string, error) {
	h, err := blake2b.New256(s.key)
	if err != nil {
		return "", fmt.Errorf("init mac: %w", err)
	}
	h.Write([]byte(uid))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Checksum is the hex BLAKE2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
