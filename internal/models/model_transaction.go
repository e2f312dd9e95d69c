package models

import (
	"time"

	"github.com/cerebra-app/checkout/pkg/types"

	"gorm.io/datatypes"
)

// TransactionExtra is the typed extension record attached to a transaction.
// Provider payloads are kept as raw maps for audit and receipt rendering;
// only the named fields are ever interpreted.
type TransactionExtra struct {
	// WebhookPayload is the full body of the last webhook that mutated this record.
	WebhookPayload map[string]any `json:"webhook_payload,omitempty"`
	// PaymentPayload is the payment sub-object extracted from the webhook.
	PaymentPayload map[string]any `json:"payment_payload,omitempty"`
	// CustomerPayload is the customer sub-object extracted from the webhook.
	CustomerPayload map[string]any `json:"customer_payload,omitempty"`
	// MembershipPayload is set when a membership_went_valid event follows completion.
	MembershipPayload map[string]any `json:"membership_payload,omitempty"`

	ProviderPaymentID string `json:"provider_payment_id,omitempty"`
	ProviderInvoiceID string `json:"provider_invoice_id,omitempty"`

	// Fingerprint snapshot captured at creation time; advisory identity only.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Metadata is the residual caller-supplied bag, never interpreted.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Transaction is one checkout attempt. Rows are created pending, mutated only
// by the reconciliation state machine and never deleted.
type Transaction struct {
	ID           int64   `gorm:"column:id;primary_key;autoIncrement" json:"id"`
	PlanID       string  `gorm:"column:plan_id;type:varchar(64);not null;index" json:"plan_id"`
	CheckoutLink string  `gorm:"column:checkout_link;type:varchar(255);not null" json:"checkout_link"`
	Amount       float64 `gorm:"column:amount;not null" json:"amount"`
	Currency     string  `gorm:"column:currency;type:varchar(8);default:'USD'" json:"currency"`

	Status types.TransactionStatus `gorm:"column:status;type:varchar(16);default:'pending';index" json:"status"`

	CustomerEmail string `gorm:"column:customer_email;type:varchar(255);index" json:"customer_email"`
	CustomerName  string `gorm:"column:customer_name;type:varchar(255)" json:"customer_name"`

	// UserID is a derived pseudo-identity, stable across a user's attempts.
	UserID string `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	// SessionID is generated internally per attempt.
	SessionID string `gorm:"column:session_id;type:varchar(64);index" json:"session_id"`
	// ProviderSessionID is assigned by the provider and may be absent.
	ProviderSessionID string `gorm:"column:provider_session_id;type:varchar(128);index" json:"provider_session_id"`
	CheckoutURL       string `gorm:"column:checkout_url;type:varchar(1024)" json:"checkout_url"`

	// IPAddress and Fingerprint are captured at creation and never altered;
	// they are the basis for later session-ownership checks.
	IPAddress   string `gorm:"column:ip_address;type:varchar(64)" json:"ip_address"`
	UserAgent   string `gorm:"column:user_agent;type:varchar(512)" json:"user_agent"`
	Fingerprint string `gorm:"column:fingerprint;type:varchar(64)" json:"fingerprint"`

	Extra datatypes.JSONType[*TransactionExtra] `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`

	WebhookReceived bool   `gorm:"column:webhook_received;default:false" json:"webhook_received"`
	ErrorMessage    string `gorm:"column:error_message;type:text" json:"error_message"`
	RetryCount      int    `gorm:"column:retry_count;default:0" json:"retry_count"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `gorm:"column:completed_at;default:null" json:"completed_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// GetExtra returns the typed extra record, never nil.
func (t *Transaction) GetExtra() *TransactionExtra {
	if t == nil || t.Extra.Data() == nil {
		return &TransactionExtra{}
	}
	return t.Extra.Data()
}

func (t *Transaction) SetExtra(extra *TransactionExtra) {
	t.Extra = datatypes.NewJSONType(extra)
}
