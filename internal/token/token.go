// Package token implements the credential primitives: signed session tokens,
// opaque-value hashing, and API key generation.
//
// Session tokens are dually protected. The JWT signature makes them
// tamper-evident and self-expiring; a bcrypt hash of the exact token string is
// additionally persisted against the issuing user, so nulling the stored hash
// revokes the token regardless of its remaining lifetime.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Kind distinguishes access tokens from refresh tokens. A token of one kind
// presented where the other is expected is rejected even if validly signed.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const apiKeyBytes = 32

var (
	// ErrInvalidToken indicates a malformed, badly signed, or expired token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrKindMismatch indicates a structurally valid token of the wrong kind
	// (e.g. a refresh token replayed against the access gate).
	ErrKindMismatch = errors.New("token kind mismatch")
)

// Claims are the JWT claims carried by session tokens. Username is set on
// access tokens only; refresh tokens assert identity alone.
type Claims struct {
	Username string `json:"username,omitempty"`
	Kind     Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens and hashes opaque credentials.
// It is constructed once at startup with the signing secret; nothing here is
// ambient state.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	bcryptCost int
}

// NewService creates a token service. cost is the bcrypt cost factor used for
// all opaque-value hashes; values outside the bcrypt range fall back to the
// bcrypt default (cost 10).
func NewService(secret string, accessTTL, refreshTTL time.Duration, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		bcryptCost: cost,
	}
}

// IssueAccessToken signs a short-lived access token for the user.
func (s *Service) IssueAccessToken(userID, username string) (string, error) {
	return s.sign(Claims{
		Username: username,
		Kind:     KindAccess,
	}, userID, s.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the user.
func (s *Service) IssueRefreshToken(userID string) (string, error) {
	return s.sign(Claims{Kind: KindRefresh}, userID, s.refreshTTL)
}

func (s *Service) sign(claims Claims, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    "minigate",
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, expiry, and kind. It returns ErrKindMismatch
// only for tokens that are otherwise valid; anything structurally broken is
// ErrInvalidToken.
func (s *Service) VerifyToken(tokenString string, want Kind) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != want {
		return nil, ErrKindMismatch
	}
	return claims, nil
}

// HashValue produces a bcrypt hash of an opaque value (token or API key).
// The value is SHA-256 digested first: bcrypt rejects input over 72 bytes and
// signed tokens always exceed that.
func (s *Service) HashValue(value string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(digest(value), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash value: %w", err)
	}
	return string(hash), nil
}

// VerifyValue reports whether value matches a hash produced by HashValue.
func (s *Service) VerifyValue(value, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(value)) == nil
}

// HashPassword produces a bcrypt hash of a user password. Passwords are
// hashed directly (they fit bcrypt's 72-byte input limit).
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches its stored bcrypt hash.
func (s *Service) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func digest(value string) []byte {
	sum := sha256.Sum256([]byte(value))
	return sum[:]
}

// GenerateAPIKey returns a cryptographically random hex-encoded API key
// (32 random bytes, 64 hex characters). API keys are opaque and never expire
// structurally; they die only by regeneration.
func GenerateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Obfuscate renders a secret for display: first four characters, four
// asterisks, last four characters. Secrets shorter than 8 characters are
// fully masked instead of sliced, since overlapping head and tail would echo
// most of the secret; unreachable for bcrypt hashes, which are always 60
// characters. The empty string stays empty (rendered as null upstream).
func Obfuscate(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) < 8 {
		return "****"
	}
	return secret[:4] + "****" + secret[len(secret)-4:]
}
