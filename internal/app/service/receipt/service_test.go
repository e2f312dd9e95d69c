package receipt

import (
	"testing"
	"time"

	"github.com/cerebra-app/checkout/internal/models"
	"github.com/cerebra-app/checkout/pkg/config"
	"github.com/cerebra-app/checkout/pkg/types"

	"github.com/stretchr/testify/require"
)

func TestNewService_BrandingFromConfig(t *testing.T) {
	cfg := &config.Config{Receipt: config.ReceiptConfig{
		CompanyName: "Acme Corp",
		ProductName: "Acme Premium",
	}}
	s := NewService(cfg, nil, nil)

	d := s.build(&models.Transaction{ID: 9, Status: types.TransactionStatusCompleted})
	require.Equal(t, "Acme Corp", d.CompanyName)
	require.Equal(t, "Acme Premium", d.ProductName)
}

func TestBuild(t *testing.T) {
	s := &Service{companyName: "Cerebra", productName: "Cerebra Premium Access"}
	completedAt := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)

	txn := &models.Transaction{
		ID:            42,
		Amount:        5.00,
		Currency:      "USD",
		Status:        types.TransactionStatusCompleted,
		CustomerEmail: "a@b.com",
		CustomerName:  "Alice",
		CompletedAt:   &completedAt,
	}
	txn.SetExtra(&models.TransactionExtra{ProviderPaymentID: "pay_1"})

	d := s.build(txn)
	require.Equal(t, "000042", d.InvoiceNumber)
	require.Equal(t, "pay_1", d.PaymentID)
	require.Equal(t, "March 05, 2026", d.InvoiceDate)
	require.Equal(t, "Alice", d.CustomerName)
	require.Equal(t, 5.00, d.Amount)
}

func TestBuild_FallsBackToWebhookCustomer(t *testing.T) {
	s := &Service{companyName: "Cerebra", productName: "Cerebra Premium Access"}
	txn := &models.Transaction{
		ID:        7,
		Status:    types.TransactionStatusCompleted,
		CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	txn.SetExtra(&models.TransactionExtra{
		CustomerPayload: map[string]any{"name": "Webhook Name", "email": "w@x.com"},
	})

	d := s.build(txn)
	require.Equal(t, "Webhook Name", d.CustomerName)
	require.Equal(t, "w@x.com", d.CustomerEmail)
	// no completed_at recorded: fall back to creation date
	require.Equal(t, "January 01, 2026", d.InvoiceDate)
}

func TestBuild_DefaultCustomerName(t *testing.T) {
	s := &Service{}
	txn := &models.Transaction{ID: 1, Status: types.TransactionStatusCompleted}
	require.Equal(t, "Valued Customer", s.build(txn).CustomerName)
}
