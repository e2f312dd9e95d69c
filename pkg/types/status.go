package types

// TransactionStatus is the lifecycle state of a checkout attempt.
// Exactly these four lowercase tokens are used in storage and API responses.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// Valid reports whether s is one of the four known tokens.
func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPending || s.IsTerminal()
}

type PaymentProvider string

const (
	PaymentProviderWhop PaymentProvider = "whop"
)

// Webhook event types delivered by the provider.
type WebhookEventType string

const (
	WebhookEventPaymentSucceeded      WebhookEventType = "payment_succeeded"
	WebhookEventPaymentFailed         WebhookEventType = "payment_failed"
	WebhookEventPaymentPending        WebhookEventType = "payment_pending"
	WebhookEventMembershipWentValid   WebhookEventType = "membership_went_valid"
	WebhookEventMembershipWentInvalid WebhookEventType = "membership_went_invalid"
)
