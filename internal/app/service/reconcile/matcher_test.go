package reconcile

import (
	"testing"
	"time"

	"github.com/cerebra-app/checkout/internal/models"
	"github.com/cerebra-app/checkout/pkg/types"

	"github.com/stretchr/testify/require"
)

func pendingAt(id int64, providerSessionID string, createdAt time.Time) *models.Transaction {
	return &models.Transaction{
		ID:                id,
		Status:            types.TransactionStatusPending,
		ProviderSessionID: providerSessionID,
		CreatedAt:         createdAt,
	}
}

func TestMatch_ExplicitSessionIDPreferred(t *testing.T) {
	now := time.Now()
	older := pendingAt(1, "ch_old", now.Add(-time.Hour))
	newer := pendingAt(2, "", now)

	ev, err := ParseEvent([]byte(`{"type":"payment_succeeded","data":{"checkout_session_id":"ch_old"}}`))
	require.NoError(t, err)

	// the explicit id wins even though a more recent pending txn exists
	got := NewMatcher(true).Match(ev, []*models.Transaction{newer, older})
	require.NotNil(t, got)
	require.Equal(t, int64(1), got.ID)
}

func TestMatch_FallbackMostRecentPending(t *testing.T) {
	now := time.Now()
	pending := []*models.Transaction{
		pendingAt(1, "", now.Add(-2*time.Hour)),
		pendingAt(3, "", now),
		pendingAt(2, "", now.Add(-time.Hour)),
	}

	ev, err := ParseEvent([]byte(`{"type":"payment_succeeded","data":{}}`))
	require.NoError(t, err)

	got := NewMatcher(true).Match(ev, pending)
	require.NotNil(t, got)
	require.Equal(t, int64(3), got.ID)
}

func TestMatch_UnknownSessionIDFallsBack(t *testing.T) {
	now := time.Now()
	pending := []*models.Transaction{pendingAt(1, "ch_other", now)}

	ev, err := ParseEvent([]byte(`{"type":"payment_succeeded","data":{"id":"ch_missing"}}`))
	require.NoError(t, err)

	got := NewMatcher(true).Match(ev, pending)
	require.NotNil(t, got)
	require.Equal(t, int64(1), got.ID)
}

func TestMatch_FallbackDisabled(t *testing.T) {
	now := time.Now()
	pending := []*models.Transaction{
		pendingAt(1, "ch_a", now.Add(-time.Hour)),
		pendingAt(2, "", now),
	}
	m := NewMatcher(false)

	// explicit match still works
	ev, err := ParseEvent([]byte(`{"type":"payment_succeeded","data":{"session_id":"ch_a"}}`))
	require.NoError(t, err)
	got := m.Match(ev, pending)
	require.NotNil(t, got)
	require.Equal(t, int64(1), got.ID)

	// but nothing is guessed without an id
	ev, err = ParseEvent([]byte(`{"type":"payment_succeeded","data":{}}`))
	require.NoError(t, err)
	require.Nil(t, m.Match(ev, pending))
}

func TestMatch_NoPendingTransactions(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"payment_succeeded","data":{"id":"ch_1"}}`))
	require.NoError(t, err)
	require.Nil(t, NewMatcher(true).Match(ev, nil))
}
