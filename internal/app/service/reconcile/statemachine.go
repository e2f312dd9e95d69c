package reconcile

import (
	"time"

	"github.com/cerebra-app/checkout/internal/models"
	"github.com/cerebra-app/checkout/pkg/types"
)

// applyEvent mutates txn in memory according to the state machine:
// pending → {completed, failed}; terminal states absorb every event as a
// silent no-op so duplicate webhook deliveries are safe. The caller persists
// all mutations for one event as a single atomic write.
//
// It returns true when the transaction changed.
func applyEvent(txn *models.Transaction, ev *Event, now time.Time) bool {
	if txn.Status != types.TransactionStatusPending {
		return false
	}

	switch ev.Type {
	case types.WebhookEventPaymentSucceeded:
		applyCompleted(txn, ev, now)
		return true
	case types.WebhookEventPaymentFailed:
		applyFailed(txn, ev)
		return true
	default:
		return false
	}
}

func applyCompleted(txn *models.Transaction, ev *Event, now time.Time) {
	payment := ev.PaymentData()
	customer := ev.CustomerData()

	txn.Status = types.TransactionStatusCompleted
	txn.WebhookReceived = true
	txn.CompletedAt = &now

	// Customer identity from the provider fills gaps but never overwrites
	// what the buyer entered at checkout.
	if txn.CustomerEmail == "" {
		if email, ok := customer["email"].(string); ok {
			txn.CustomerEmail = email
		}
	}
	if txn.CustomerName == "" {
		if name, ok := customer["name"].(string); ok && name != "" {
			txn.CustomerName = name
		} else if username, ok := customer["username"].(string); ok {
			txn.CustomerName = username
		}
	}

	// The provider's figure is authoritative; Amount already converts the
	// provider's minor units into the major units stored here.
	if major, ok := ev.Amount(); ok {
		txn.Amount = major
	}

	extra := txn.GetExtra()
	extra.WebhookPayload = ev.Payload
	extra.PaymentPayload = payment
	extra.CustomerPayload = customer
	if id, ok := payment["id"].(string); ok {
		extra.ProviderPaymentID = id
	}
	if id, ok := payment["invoice_id"].(string); ok {
		extra.ProviderInvoiceID = id
	}
	txn.SetExtra(extra)
}

func applyFailed(txn *models.Transaction, ev *Event) {
	txn.Status = types.TransactionStatusFailed
	txn.WebhookReceived = true
	txn.ErrorMessage = ev.FailureReason()

	extra := txn.GetExtra()
	extra.WebhookPayload = ev.Payload
	txn.SetExtra(extra)
}

// applyMembershipValid merges a membership activation payload into an already
// completed transaction's extra record. Status never changes here.
func applyMembershipValid(txn *models.Transaction, ev *Event) {
	extra := txn.GetExtra()
	extra.MembershipPayload = ev.Payload
	txn.SetExtra(extra)
}
