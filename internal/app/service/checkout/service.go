package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cerebra-app/checkout/internal/app/service/identity"
	"github.com/cerebra-app/checkout/internal/models"
	"github.com/cerebra-app/checkout/internal/platform/whop"
	"github.com/cerebra-app/checkout/pkg/logctx"
	"github.com/cerebra-app/checkout/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionForbidden means the caller could not prove ownership of the
	// payment session.
	ErrSessionForbidden = errors.New("unauthorized access to payment session")
)

// CreateRequest carries the caller-supplied checkout parameters.
type CreateRequest struct {
	PlanID        string
	Amount        float64
	CustomerEmail string
	CustomerName  string
	Metadata      map[string]any
	Client        identity.ClientInfo
}

// CreateResult is returned to the checkout caller.
type CreateResult struct {
	CheckoutURL   string
	TransactionID int64
	UserID        string
	SessionToken  string
}

// Manager is the checkout admission and session-ownership surface.
type Manager interface {
	// Authorize runs the gate without creating anything.
	Authorize(ctx context.Context, userID, planID string) (GateDecision, error)
	// Create admits and records a new pending checkout attempt.
	Create(ctx context.Context, req *CreateRequest) (*CreateResult, error)
	// ValidateSession checks ownership of a provider checkout session.
	ValidateSession(ctx context.Context, providerSessionID, sessionToken string, client identity.ClientInfo) (*SessionValidation, error)
}

type Service struct {
	log    *zap.SugaredLogger
	db     *gorm.DB
	client *whop.Client
	ident  *identity.Service
	tokens *identity.TokenIssuer
}

func NewService(log *zap.SugaredLogger, db *gorm.DB, client *whop.Client, ident *identity.Service, tokens *identity.TokenIssuer) Manager {
	return &Service{log: log, db: db, client: client, ident: ident, tokens: tokens}
}

// Authorize runs the checkout gate for a user/plan pair without creating
// anything. The authoritative check happens again inside Create under lock.
func (s *Service) Authorize(ctx context.Context, userID, planID string) (GateDecision, error) {
	return s.evaluateGate(ctx, s.db.WithContext(ctx), userID, planID)
}

func (s *Service) evaluateGate(ctx context.Context, tx *gorm.DB, userID, planID string) (GateDecision, error) {
	var pending, completed int64
	if err := tx.Model(&models.Transaction{}).
		Where("user_id = ? AND status = ?", userID, types.TransactionStatusPending).
		Count(&pending).Error; err != nil {
		return GateDecision{}, fmt.Errorf("failed to count pending transactions: %w", err)
	}
	if err := tx.Model(&models.Transaction{}).
		Where("user_id = ? AND plan_id = ? AND status = ?", userID, planID, types.TransactionStatusCompleted).
		Count(&completed).Error; err != nil {
		return GateDecision{}, fmt.Errorf("failed to count completed transactions: %w", err)
	}
	return decide(pending, completed), nil
}

// Create admits a new checkout attempt and records it as a pending
// transaction. Gate check and creation run as one unit: the user's rows are
// locked for the duration, and a partial unique index on
// (user_id, plan_id) WHERE status='pending' backstops the race where two
// concurrent requests both observe "allowed".
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	userID := s.ident.Identify(req.CustomerEmail, req.CustomerName)
	planID := req.PlanID
	if planID == "" {
		planID = s.client.PlanID()
	}

	metadata := map[string]string{"tier": "premium", "source": "cerebra_app"}
	for k, v := range req.Metadata {
		if sv, ok := v.(string); ok {
			metadata[k] = sv
		}
	}
	checkoutURL := s.client.CheckoutURL(userID, metadata)

	var txn *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialize the read-then-create per user.
		var held []*models.Transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Find(&held).Error; err != nil {
			return fmt.Errorf("failed to lock user transactions: %w", err)
		}

		decision, err := s.evaluateGate(ctx, tx, userID, planID)
		if err != nil {
			return err
		}
		if err := decision.Err(); err != nil {
			return err
		}

		txn = &models.Transaction{
			PlanID:        planID,
			CheckoutLink:  s.client.CheckoutLink(),
			Amount:        req.Amount,
			Currency:      "USD",
			Status:        types.TransactionStatusPending,
			CustomerEmail: req.CustomerEmail,
			CustomerName:  req.CustomerName,
			UserID:        userID,
			SessionID:     req.Client.SessionID,
			CheckoutURL:   checkoutURL,
			IPAddress:     req.Client.IPAddress,
			UserAgent:     req.Client.UserAgent,
			Fingerprint:   req.Client.Fingerprint,
		}
		txn.SetExtra(&models.TransactionExtra{
			Fingerprint: req.Client.Fingerprint,
			Metadata:    req.Metadata,
		})
		if err := tx.Create(txn).Error; err != nil {
			return createError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(txn.ID, txn.Fingerprint, time.Now())
	if err != nil {
		// Ownership falls back to the advisory fingerprint check.
		logctx.FromCtx(ctx, s.log).Warnw("session token issuance failed", "err", err)
		token = ""
	}

	logctx.FromCtx(ctx, s.log).Infow("checkout_created",
		"transaction_id", txn.ID, "user_id", userID, "plan_id", planID, "amount", req.Amount)

	return &CreateResult{
		CheckoutURL:   checkoutURL,
		TransactionID: txn.ID,
		UserID:        userID,
		SessionToken:  token,
	}, nil
}

// createError maps the insert failure raised when two concurrent requests
// both pass the gate: the user's rows lock serializes nothing while the user
// has zero rows, so the loser's insert trips the partial unique index on
// (user_id, plan_id, pending). That violation is a gate denial, not an
// infrastructure failure.
func createError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCheckoutInFlight
	}
	return fmt.Errorf("failed to create transaction: %w", err)
}

// SessionValidation is the outcome of a session-ownership check.
type SessionValidation struct {
	Valid         bool    `json:"valid"`
	TransactionID int64   `json:"transaction_id"`
	UserID        string  `json:"user_id"`
	SessionStatus string  `json:"session_status"`
	Amount        float64 `json:"amount"`
	PlanID        string  `json:"plan_id"`
}

// ValidateSession checks that the caller may access a provider checkout
// session. A signed session token is authoritative proof; without one the
// check degrades to advisory IP/fingerprint evidence. The provider status
// lookup happens outside any store lock (pure read path).
func (s *Service) ValidateSession(ctx context.Context, providerSessionID, sessionToken string, client identity.ClientInfo) (*SessionValidation, error) {
	var txn models.Transaction
	if err := s.db.WithContext(ctx).
		Where("provider_session_id = ?", providerSessionID).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session transaction: %w", err)
	}

	owned := false
	if sessionToken != "" {
		if _, err := s.tokens.Verify(sessionToken, txn.ID, client.Fingerprint); err == nil {
			owned = true
		}
	}
	if !owned {
		// Advisory evidence only: shared IP/UA pairs collide.
		owned = txn.IPAddress == client.IPAddress || txn.Fingerprint == client.Fingerprint
	}
	if !owned {
		return nil, ErrSessionForbidden
	}

	status := "unknown"
	if st, err := s.client.GetSessionStatus(ctx, providerSessionID); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("provider session status lookup failed", "err", err)
	} else {
		status = st.Status
	}

	return &SessionValidation{
		Valid:         true,
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		SessionStatus: status,
		Amount:        txn.Amount,
		PlanID:        txn.PlanID,
	}, nil
}
