package security

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password with bcrypt. This is the storage format new
// systems should use once legacy codec compatibility is no longer needed.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyHashedPassword checks a password against a bcrypt hash.
func VerifyHashedPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// EncryptPasswordLegacyMD5 reproduces the pre-migration C# scheme:
// md5(md5(password) + salt), lowercased hex. Kept only to verify rows that
// predate the XOR codec.
func EncryptPasswordLegacyMD5(password, salt string) string {
	first := md5.Sum([]byte(password))
	combined := strings.ToLower(hex.EncodeToString(first[:])) + salt
	second := md5.Sum([]byte(combined))
	return strings.ToLower(hex.EncodeToString(second[:]))
}

// VerifyPasswordLegacyMD5 checks a password against the pre-migration scheme.
func VerifyPasswordLegacyMD5(password, encrypted, salt string) bool {
	return EncryptPasswordLegacyMD5(password, salt) == encrypted
}
