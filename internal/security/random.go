package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// RandomSource supplies the random material the auth flows need. It is an
// interface so tests can substitute deterministic values.
type RandomSource interface {
	// ResetToken returns an opaque url-safe token for password resets.
	ResetToken() string
	// Salt returns a fresh per-account key for the password codec.
	Salt() string
	// TempPassword returns a generated password for newly provisioned accounts.
	TempPassword() string
}

// CryptoRandomSource is the production RandomSource backed by crypto/rand.
type CryptoRandomSource struct{}

func NewCryptoRandomSource() *CryptoRandomSource {
	return &CryptoRandomSource{}
}

func (CryptoRandomSource) ResetToken() string {
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func (CryptoRandomSource) Salt() string {
	return randomDigits()
}

func (CryptoRandomSource) TempPassword() string {
	return randomDigits()
}

// randomDigits mirrors the legacy registry's numeric salt/password format so
// values remain interchangeable with rows written by the old system.
func randomDigits() string {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d", n)
}
