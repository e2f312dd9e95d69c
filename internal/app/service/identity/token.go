package identity

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cerebra-app/checkout/pkg/config"

	"github.com/golang-jwt/jwt"
)

var (
	ErrTokenInvalid  = errors.New("session token invalid")
	ErrTokenMismatch = errors.New("session token does not match transaction")
)

// SessionTokenClaims bind a checkout session token to the transaction it was
// issued for and the fingerprint observed at creation time.
type SessionTokenClaims struct {
	TransactionID int64  `json:"txn_id"`
	Fingerprint   string `json:"fp"`
	jwt.StandardClaims
}

// TokenIssuer issues and verifies signed checkout session tokens. Unlike the
// fingerprint, a token is cryptographically bound ownership evidence.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	ttl := cfg.SessionToken.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(cfg.SessionToken.Secret), ttl: ttl}
}

// Issue signs a token for a freshly created transaction.
func (t *TokenIssuer) Issue(transactionID int64, fingerprint string, now time.Time) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("session token secret not configured")
	}
	claims := SessionTokenClaims{
		TransactionID: transactionID,
		Fingerprint:   fingerprint,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatInt(transactionID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(t.ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses a token and checks it was issued for the given transaction
// and to a caller presenting the same fingerprint it was bound to at issue
// time. A stolen token replayed from a different client fails the
// fingerprint check.
func (t *TokenIssuer) Verify(tokenString string, transactionID int64, fingerprint string) (*SessionTokenClaims, error) {
	if len(t.secret) == 0 {
		return nil, ErrTokenInvalid
	}
	claims := &SessionTokenClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TransactionID != transactionID {
		return nil, ErrTokenMismatch
	}
	if claims.Fingerprint != fingerprint {
		return nil, ErrTokenMismatch
	}
	return claims, nil
}
