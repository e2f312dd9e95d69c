package whop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/cerebra-app/checkout/pkg/config"

	"go.uber.org/zap"
)

// Client talks to the hosted-checkout provider. All configuration is injected;
// there is no process-wide instance.
type Client struct {
	cfg  config.WhopConfig
	http *http.Client
	log  *zap.SugaredLogger
}

func NewClient(cfg *config.Config, log *zap.SugaredLogger) *Client {
	if cfg.Whop.WebhookSecret == "" {
		log.Warnw("whop webhook secret not set, webhook verification will fail")
	}
	if cfg.Whop.CheckoutLink == "" {
		log.Warnw("whop checkout link not set, checkout will fail")
	}
	return &Client{
		cfg:  cfg.Whop,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

func (c *Client) PlanID() string       { return c.cfg.PlanID }
func (c *Client) CheckoutLink() string { return c.cfg.CheckoutLink }

// VerifyWebhookSignature authenticates a raw webhook body against the
// configured secret.
func (c *Client) VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool {
	return VerifySignature(rawBody, signatureHeader, c.cfg.WebhookSecret)
}

// CheckoutURL builds the provider-hosted checkout URL with tracking
// parameters. No provider API call is involved, the link is static.
func (c *Client) CheckoutURL(userID string, metadata map[string]string) string {
	base := fmt.Sprintf("https://whop.com/checkout/%s", c.cfg.CheckoutLink)

	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, metadata[k])
	}

	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

// ExtractSessionID pulls the provider checkout session id out of a webhook
// body. Field names are tried in priority order; the first non-empty wins.
func ExtractSessionID(payload map[string]any) string {
	data, _ := payload["data"].(map[string]any)

	for _, candidate := range []any{
		get(data, "checkout_session_id"),
		get(data, "session_id"),
		get(data, "id"),
		get(payload, "checkout_session_id"),
	} {
		if s, ok := candidate.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func get(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

// SessionStatus is the provider's view of a checkout session.
type SessionStatus struct {
	Status string `json:"status"`
	Raw    map[string]any
}

// GetSessionStatus looks up a checkout session on the provider API. This is a
// read-path call only; it must never be made while holding a store lock.
func (c *Client) GetSessionStatus(ctx context.Context, providerSessionID string) (*SessionStatus, error) {
	u := fmt.Sprintf("%s/checkout_sessions/%s", c.cfg.APIBase, url.PathEscape(providerSessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build session status request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session status lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session status lookup returned %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode session status: %w", err)
	}

	st := &SessionStatus{Status: "unknown", Raw: raw}
	if s, ok := raw["status"].(string); ok && s != "" {
		st.Status = s
	}
	return st, nil
}
