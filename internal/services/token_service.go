package services

import (
	"fmt"
	"time"

	"github.com/dftlabs-home/oyoagro-api/internal/config"
	"github.com/dftlabs-home/oyoagro-api/internal/models"
	"github.com/dftlabs-home/oyoagro-api/internal/security"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims carries the account identity inside the signed bearer token.
// The claim names match the payloads the legacy registry issued, so existing
// frontends keep working.
type TokenClaims struct {
	UserID     string `json:"UserId"`
	Username   string `json:"UserName"`
	UserStatus int    `json:"UserStatus"`
	Email      string `json:"Email"`
	jwt.RegisteredClaims
}

// TokenService mints and validates bearer tokens. Signing key, lifetime,
// issuer and audience are fixed at construction; nothing here reads ambient
// global state.
type TokenService struct {
	secret   []byte
	expiry   time.Duration
	issuer   string
	audience string
	clock    security.Clock
}

func NewTokenService(cfg *config.JWTConfig, clock security.Clock) (*TokenService, error) {
	expiry, err := cfg.GetAccessTokenExpiry()
	if err != nil {
		return nil, fmt.Errorf("invalid access_token_expiry: %w", err)
	}
	if expiry == 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		expiry:   expiry,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		clock:    clock,
	}, nil
}

// Expiry returns the configured token lifetime.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// Issue mints a signed token for the account using the default lifetime.
func (s *TokenService) Issue(user *models.UserAccount) (string, error) {
	return s.IssueWithTTL(user, s.expiry)
}

// IssueWithTTL mints a signed token with an explicit lifetime.
func (s *TokenService) IssueWithTTL(user *models.UserAccount, ttl time.Duration) (string, error) {
	now := s.clock.Now()
	claims := TokenClaims{
		UserID:     user.ID.String(),
		Username:   user.Username,
		UserStatus: user.Status,
		Email:      user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the decoded claims iff the signature is valid, the token is
// unexpired and issuer/audience match configuration. Every failure mode maps
// to ErrInvalidToken; callers get no oracle for why a token was rejected.
//
// Verify checks the token in isolation. Revocation (logout, superseded
// session) is the caller's responsibility: the presented token must still
// equal the account's stored active token.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
