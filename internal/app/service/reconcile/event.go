package reconcile

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cerebra-app/checkout/internal/platform/whop"
	"github.com/cerebra-app/checkout/pkg/types"
)

// Event is a parsed webhook delivery. Payload keeps the full decoded body for
// audit storage; Data is the event-specific sub-object.
type Event struct {
	Type              types.WebhookEventType
	ProviderSessionID string
	Payload           map[string]any
	Data              map[string]any
}

// ParseEvent decodes a raw webhook body. The raw bytes must already have
// passed signature verification; parsing never mutates state.
func ParseEvent(rawBody []byte) (*Event, error) {
	var payload map[string]any
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode webhook body: %w", err)
	}

	ev := &Event{Payload: payload}
	if t, ok := payload["type"].(string); ok {
		ev.Type = types.WebhookEventType(t)
	}
	if d, ok := payload["data"].(map[string]any); ok {
		ev.Data = d
	} else {
		ev.Data = map[string]any{}
	}
	ev.ProviderSessionID = whop.ExtractSessionID(payload)
	return ev, nil
}

// PaymentData returns the payment sub-object, falling back to the event data
// itself when the provider inlines payment fields.
func (e *Event) PaymentData() map[string]any {
	if p, ok := e.Data["payment"].(map[string]any); ok && len(p) > 0 {
		return p
	}
	return e.Data
}

// CustomerData returns the customer sub-object from the payment payload or
// the event data. A corrupt or missing fragment yields an empty map.
func (e *Event) CustomerData() map[string]any {
	if c, ok := e.PaymentData()["customer"].(map[string]any); ok && len(c) > 0 {
		return c
	}
	if c, ok := e.Data["customer"].(map[string]any); ok {
		return c
	}
	return map[string]any{}
}

// FailureReason returns the provider's failure reason, or a generic default.
func (e *Event) FailureReason() string {
	if r, ok := e.Data["failure_reason"].(string); ok && r != "" {
		return r
	}
	return "Payment failed"
}

// Amount returns the event's monetary amount converted to major currency
// units. The provider sends minor units under "amount" or "total", sometimes
// stringified and sometimes with a fractional part; both keys and both
// encodings are tried.
func (e *Event) Amount() (float64, bool) {
	pd := e.PaymentData()
	for _, key := range []string{"amount", "total"} {
		switch v := pd[key].(type) {
		case float64:
			if v > 0 {
				return v / 100, true
			}
		case string:
			// Some providers stringify amounts; ignore unparseable values.
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				return f / 100, true
			}
		}
	}
	return 0, false
}
