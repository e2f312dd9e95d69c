package reconcile

import (
	"testing"

	"github.com/cerebra-app/checkout/pkg/types"

	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{
		"type": "payment_succeeded",
		"data": {"checkout_session_id": "ch_1", "payment": {"amount": 500}}
	}`))
	require.NoError(t, err)
	require.Equal(t, types.WebhookEventPaymentSucceeded, ev.Type)
	require.Equal(t, "ch_1", ev.ProviderSessionID)

	amount, ok := ev.Amount()
	require.True(t, ok)
	require.Equal(t, 5.00, amount)
}

func TestParseEvent_MalformedBody(t *testing.T) {
	_, err := ParseEvent([]byte(`{"type": `))
	require.Error(t, err)
}

func TestParseEvent_MissingFields(t *testing.T) {
	ev, err := ParseEvent([]byte(`{}`))
	require.NoError(t, err)
	require.Empty(t, ev.Type)
	require.Empty(t, ev.ProviderSessionID)
	require.NotNil(t, ev.Data)

	_, ok := ev.Amount()
	require.False(t, ok)
}

func TestEvent_AmountFallsBackToTotal(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"payment_succeeded","data":{"payment":{"total": 750}}}`))
	require.NoError(t, err)
	amount, ok := ev.Amount()
	require.True(t, ok)
	require.Equal(t, 7.50, amount)
}

func TestEvent_AmountEncodings(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    float64
		present bool
	}{
		{"integer minor units", `{"data":{"payment":{"amount": 500}}}`, 5.00, true},
		{"fractional minor units", `{"data":{"payment":{"amount": 550.5}}}`, 5.505, true},
		{"stringified integer", `{"data":{"payment":{"amount": "500"}}}`, 5.00, true},
		{"stringified decimal", `{"data":{"payment":{"amount": "550.5"}}}`, 5.505, true},
		{"unparseable string", `{"data":{"payment":{"amount": "abc"}}}`, 0, false},
		{"zero amount", `{"data":{"payment":{"amount": 0}}}`, 0, false},
		{"negative amount", `{"data":{"payment":{"amount": -500}}}`, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := ParseEvent([]byte(tc.body))
			require.NoError(t, err)
			amount, ok := ev.Amount()
			require.Equal(t, tc.present, ok)
			require.InDelta(t, tc.want, amount, 1e-9)
		})
	}
}

func TestEvent_InlinePaymentFields(t *testing.T) {
	// provider sometimes inlines payment fields directly under data
	ev, err := ParseEvent([]byte(`{"type":"payment_succeeded","data":{"amount": 500, "customer": {"email": "a@b.com"}}}`))
	require.NoError(t, err)

	amount, ok := ev.Amount()
	require.True(t, ok)
	require.Equal(t, 5.00, amount)
	require.Equal(t, "a@b.com", ev.CustomerData()["email"])
}
