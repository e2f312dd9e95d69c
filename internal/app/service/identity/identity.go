package identity

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/cerebra-app/checkout/pkg/tool"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Service derives pseudo-identities from request attributes.
//
// Everything produced here is advisory identity evidence: a fingerprint
// conflates all users behind a shared IP/User-Agent pair (NAT, proxies), and
// an Identify result built from the random fallback is not correlatable
// across requests. Access-control decisions must not treat these values as
// authenticated identity; the signed session token (token.go) exists for that.
type Service struct{}

func NewService() *Service { return &Service{} }

// Fingerprint hashes the client's network/request attributes into a stable
// weak pseudo-identity.
func (s *Service) Fingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + ":" + userAgent))
	return hex.EncodeToString(sum[:])
}

// Identify derives a stable pseudo-user-id from an email (preferred) or name.
// When neither is supplied it falls back to a random identifier.
func (s *Service) Identify(email, name string) string {
	switch {
	case email != "":
		return "user_" + shortHash(email)
	case name != "":
		return "user_" + shortHash(name)
	default:
		return "user_" + uuid.New().String()[:8]
	}
}

func shortHash(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])[:8]
}

// ClientInfo is the tracking snapshot captured once per checkout attempt.
type ClientInfo struct {
	IPAddress   string
	UserAgent   string
	SessionID   string
	Fingerprint string
}

// ExtractClientInfo builds a ClientInfo from the current request, generating
// a fresh internal session id.
func (s *Service) ExtractClientInfo(c *gin.Context) ClientInfo {
	ip := c.ClientIP()
	ua := c.Request.UserAgent()
	return ClientInfo{
		IPAddress:   ip,
		UserAgent:   ua,
		SessionID:   tool.GenerateSessionID(),
		Fingerprint: s.Fingerprint(ip, ua),
	}
}
