package reconcile

import (
	"github.com/cerebra-app/checkout/internal/models"
)

// Matcher resolves a webhook event to the pending transaction it concerns.
type Matcher struct {
	// allowFallback enables the most-recent-pending heuristic. It assumes at
	// most one payment in flight system-wide; under concurrent checkouts it
	// can misattribute a payment, so strict deployments turn it off.
	allowFallback bool
}

func NewMatcher(allowFallback bool) *Matcher {
	return &Matcher{allowFallback: allowFallback}
}

// Match picks the transaction for ev out of the pending set, in strict
// priority order:
//  1. a pending transaction whose provider session id equals the event's;
//  2. the most recently created pending transaction (fallback heuristic);
//  3. nil when nothing matches; the caller must log and drop the event
//     rather than fabricate a record.
func (m *Matcher) Match(ev *Event, pending []*models.Transaction) *models.Transaction {
	if ev.ProviderSessionID != "" {
		for _, txn := range pending {
			if txn.ProviderSessionID == ev.ProviderSessionID {
				return txn
			}
		}
	}

	if !m.allowFallback {
		return nil
	}

	var latest *models.Transaction
	for _, txn := range pending {
		if latest == nil || txn.CreatedAt.After(latest.CreatedAt) {
			latest = txn
		}
	}
	return latest
}
