package whop

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// VerifySignature checks an HMAC-SHA256 webhook signature over the exact raw
// request body. The header value may carry a "sha256=" scheme prefix.
//
// It returns false on any malformed input, missing secret or mismatch; callers
// must treat false uniformly as "unauthenticated" so that the failing
// sub-check is not distinguishable from outside.
func VerifySignature(rawBody []byte, signatureHeader, secret string) bool {
	if secret == "" || signatureHeader == "" {
		return false
	}
	sig := strings.TrimPrefix(signatureHeader, signaturePrefix)

	provided, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	return hmac.Equal(expected, provided)
}
