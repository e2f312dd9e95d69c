package receipt

import (
	"context"
	"errors"
	"fmt"

	"github.com/cerebra-app/checkout/internal/models"
	"github.com/cerebra-app/checkout/pkg/config"
	"github.com/cerebra-app/checkout/pkg/types"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrReceiptNotAvailable = errors.New("completed transaction not found")

// Data is the structured receipt for a completed transaction. Rendering
// (PDF/HTML) is a downstream concern; this service only assembles the fields.
type Data struct {
	InvoiceNumber string  `json:"invoice_number"`
	TransactionID int64   `json:"transaction_id"`
	PaymentID     string  `json:"payment_id,omitempty"`
	InvoiceDate   string  `json:"invoice_date"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	ProductName   string  `json:"product_name"`
	CompanyName   string  `json:"company_name"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.SugaredLogger
	companyName string
	productName string
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{
		db:          db,
		log:         log,
		companyName: cfg.Receipt.CompanyName,
		productName: cfg.Receipt.ProductName,
	}
}

// Get returns receipt data for a completed transaction. Non-completed
// transactions have no receipt.
func (s *Service) Get(ctx context.Context, transactionID int64) (*Data, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", transactionID, types.TransactionStatusCompleted).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiptNotAvailable
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return s.build(&txn), nil
}

func (s *Service) build(txn *models.Transaction) *Data {
	extra := txn.GetExtra()

	invoiceDate := txn.CreatedAt
	if txn.CompletedAt != nil {
		invoiceDate = *txn.CompletedAt
	}

	customerName := txn.CustomerName
	if customerName == "" {
		if n, ok := extra.CustomerPayload["name"].(string); ok && n != "" {
			customerName = n
		} else {
			customerName = "Valued Customer"
		}
	}
	customerEmail := txn.CustomerEmail
	if customerEmail == "" {
		if e, ok := extra.CustomerPayload["email"].(string); ok {
			customerEmail = e
		}
	}

	return &Data{
		InvoiceNumber: fmt.Sprintf("%06d", txn.ID),
		TransactionID: txn.ID,
		PaymentID:     extra.ProviderPaymentID,
		InvoiceDate:   invoiceDate.Format("January 02, 2006"),
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		Status:        string(txn.Status),
		ProductName:   s.productName,
		CompanyName:   s.companyName,
	}
}

// Module exposes the receipt service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
