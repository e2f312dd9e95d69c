package identity

import (
	"strings"
	"testing"
	"time"

	"github.com/cerebra-app/checkout/pkg/config"

	"github.com/stretchr/testify/require"
)

func TestFingerprint_StableAndDistinct(t *testing.T) {
	s := NewService()

	a := s.Fingerprint("203.0.113.7", "Mozilla/5.0")
	b := s.Fingerprint("203.0.113.7", "Mozilla/5.0")
	require.Equal(t, a, b)

	require.NotEqual(t, a, s.Fingerprint("203.0.113.8", "Mozilla/5.0"))
	require.NotEqual(t, a, s.Fingerprint("203.0.113.7", "curl/8.0"))
	require.Len(t, a, 64)
}

func TestIdentify(t *testing.T) {
	s := NewService()

	byEmail := s.Identify("a@b.com", "Alice")
	require.True(t, strings.HasPrefix(byEmail, "user_"))
	require.Equal(t, byEmail, s.Identify("a@b.com", ""))
	// email wins over name
	require.Equal(t, byEmail, s.Identify("a@b.com", "Bob"))

	byName := s.Identify("", "Alice")
	require.True(t, strings.HasPrefix(byName, "user_"))
	require.NotEqual(t, byEmail, byName)
	require.Equal(t, byName, s.Identify("", "Alice"))

	// random fallback: not correlatable across calls
	r1 := s.Identify("", "")
	r2 := s.Identify("", "")
	require.True(t, strings.HasPrefix(r1, "user_"))
	require.NotEqual(t, r1, r2)
}

func tokenConfig(secret string) *config.Config {
	return &config.Config{SessionToken: config.SessionTokenConfig{Secret: secret, TTL: time.Hour}}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	iss := NewTokenIssuer(tokenConfig("tok-secret"))

	tok, err := iss.Issue(42, "fp-abc", time.Now())
	require.NoError(t, err)

	claims, err := iss.Verify(tok, 42, "fp-abc")
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.TransactionID)
	require.Equal(t, "fp-abc", claims.Fingerprint)
}

func TestTokenIssuer_Rejections(t *testing.T) {
	iss := NewTokenIssuer(tokenConfig("tok-secret"))
	tok, err := iss.Issue(42, "fp-abc", time.Now())
	require.NoError(t, err)

	// wrong transaction
	_, err = iss.Verify(tok, 43, "fp-abc")
	require.ErrorIs(t, err, ErrTokenMismatch)

	// replayed from a client with a different fingerprint
	_, err = iss.Verify(tok, 42, "fp-other")
	require.ErrorIs(t, err, ErrTokenMismatch)
	_, err = iss.Verify(tok, 42, "")
	require.ErrorIs(t, err, ErrTokenMismatch)

	// wrong secret
	other := NewTokenIssuer(tokenConfig("another-secret"))
	_, err = other.Verify(tok, 42, "fp-abc")
	require.ErrorIs(t, err, ErrTokenInvalid)

	// garbage token
	_, err = iss.Verify("not.a.token", 42, "fp-abc")
	require.ErrorIs(t, err, ErrTokenInvalid)

	// expired
	expired, err := iss.Issue(42, "fp-abc", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	_, err = iss.Verify(expired, 42, "fp-abc")
	require.ErrorIs(t, err, ErrTokenInvalid)

	// unconfigured secret never issues
	empty := NewTokenIssuer(tokenConfig(""))
	_, err = empty.Issue(42, "fp-abc", time.Now())
	require.Error(t, err)
}
