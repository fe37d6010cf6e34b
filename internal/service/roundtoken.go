package service

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	roundTokenIssuer = "whoyap"
	roundKeyInfo     = "whoyap round token v1"
)

// RoundClaims is what a round token seals: the question it was issued for
// and the options that were offered.
type RoundClaims struct {
	SessionID int64   `json:"sid"`
	MessageID int64   `json:"mid"`
	Options   []int64 `json:"opts"`
	jwt.RegisteredClaims
}

// RoundSigner issues and verifies round tokens.
type RoundSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewRoundSigner derives the signing key from secret. An empty secret gets a
// random key, so tokens do not survive a restart.
func NewRoundSigner(secret string, ttl time.Duration) (*RoundSigner, error) {
	ikm := []byte(secret)
	if secret == "" {
		ikm = make([]byte, 32)
		if _, err := rand.Read(ikm); err != nil {
			return nil, fmt.Errorf("failed to generate round key: %w", err)
		}
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(roundKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive round key: %w", err)
	}

	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RoundSigner{key: key, ttl: ttl, now: time.Now}, nil
}

// Sign issues a token for one question.
func (s *RoundSigner) Sign(sessionID, messageID int64, options []int64) (string, *RoundClaims, error) {
	now := s.now()
	claims := &RoundClaims{
		SessionID: sessionID,
		MessageID: messageID,
		Options:   options,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    roundTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign round token: %w", err)
	}
	return token, claims, nil
}

// Verify checks signature, issuer and expiry.
func (s *RoundSigner) Verify(token string) (*RoundClaims, error) {
	claims := &RoundClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(roundTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoundToken, err)
	}
	return claims, nil
}
