// Package security holds the password codec, token generation and the
// injectable clock/randomness seams used by the auth services.
package security

import (
	"encoding/base64"
)

// EncryptPassword applies the registry's legacy reversible transform: each
// plaintext byte is XOR-combined with the repeating salt key, then the result
// is base64 encoded for storage.
//
// This is NOT a one-way hash. It exists solely for compatibility with
// password secrets carried over from the legacy registry database. New
// deployments without legacy data should store bcrypt hashes instead (see
// HashPassword) and migrate accounts off this codec on their next reset.
func EncryptPassword(plaintext, key string) string {
	if key == "" {
		return ""
	}
	kb := []byte(key)
	out := make([]byte, len(plaintext))
	for i := 0; i < len(plaintext); i++ {
		out[i] = plaintext[i] ^ kb[i%len(kb)]
	}
	return base64.StdEncoding.EncodeToString(out)
}

// DecryptPassword inverts EncryptPassword. It fails closed: any decode
// failure or empty key yields "", which callers must treat as
// "password cannot match" rather than an error.
func DecryptPassword(encoded, key string) string {
	if key == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ""
	}
	kb := []byte(key)
	out := make([]byte, len(raw))
	for i := 0; i < len(raw); i++ {
		out[i] = raw[i] ^ kb[i%len(kb)]
	}
	return string(out)
}
