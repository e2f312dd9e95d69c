package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cerebra-app/checkout/internal/models"
	"github.com/cerebra-app/checkout/pkg/logctx"
	"github.com/cerebra-app/checkout/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// Service is the read side of the transaction store plus the manual admin
// mutation. All reconciliation-driven writes live in the reconcile service.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &txn, nil
}

// ListRequest filters the transaction listing.
type ListRequest struct {
	Status types.TransactionStatus
	Offset int
	Limit  int
}

func (s *Service) List(ctx context.Context, req *ListRequest) ([]*models.Transaction, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	q := s.db.WithContext(ctx).Model(&models.Transaction{}).Order("created_at desc")
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("unknown status: %s", req.Status)
		}
		q = q.Where("status = ?", req.Status)
	}
	if req.Offset > 0 {
		q = q.Offset(req.Offset)
	}

	var rows []*models.Transaction
	if err := q.Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return rows, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	var rows []*models.Transaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list user transactions: %w", err)
	}
	return rows, nil
}

func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]*models.Transaction, error) {
	var rows []*models.Transaction
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list session transactions: %w", err)
	}
	return rows, nil
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
// Malformed filters build nothing, so they are dropped here before composing;
// handing them to clause.And would leave empty groups in the SQL.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		if f.Buildable() {
			exprs = append(exprs, f)
		}
	}
	if len(exprs) == 0 {
		builder.WriteString("1=1")
		return
	}
	clause.And(exprs...).Build(builder)
}

// ScanRequest is the admin listing contract with free-form filters.
type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Transaction `json:"items"`
	Total int64                 `json:"total"`
}

// Scan implements paginated admin listing with filters.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Transaction{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}

	var rows []*models.Transaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &ScanResponse{Items: rows, Total: total}, nil
}

// CompleteMostRecentPending force-completes the latest pending transaction.
// Test/admin tooling only; the webhook path is the real mutation source.
func (s *Service) CompleteMostRecentPending(ctx context.Context) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", types.TransactionStatusPending).
			Order("created_at desc").
			First(&txn).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("failed to load pending transaction: %w", err)
		}

		now := time.Now()
		txn.Status = types.TransactionStatusCompleted
		txn.WebhookReceived = true
		txn.CompletedAt = &now

		extra := txn.GetExtra()
		if extra.Metadata == nil {
			extra.Metadata = map[string]any{}
		}
		extra.Metadata["test_update"] = true
		txn.SetExtra(extra)

		return tx.Save(&txn).Error
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("test_webhook_completed", "transaction_id", txn.ID)
	return &txn, nil
}
