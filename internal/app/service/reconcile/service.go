package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cerebra-app/checkout/internal/app/service/webhooklog"
	"github.com/cerebra-app/checkout/internal/models"
	"github.com/cerebra-app/checkout/internal/platform/whop"
	"github.com/cerebra-app/checkout/pkg/config"
	"github.com/cerebra-app/checkout/pkg/logctx"
	metricspkg "github.com/cerebra-app/checkout/pkg/metrics"
	"github.com/cerebra-app/checkout/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUnauthenticated covers missing, malformed and mismatched signatures
	// alike; callers must not distinguish between them.
	ErrUnauthenticated = errors.New("webhook signature verification failed")
	// ErrInvalidPayload means the body was not decodable at all.
	ErrInvalidPayload = errors.New("webhook payload is not valid JSON")
)

// Result summarizes one webhook delivery. Unmatched and unrecognized events
// still produce a Result so the ingress can acknowledge them.
type Result struct {
	EventType   types.WebhookEventType
	Transaction *models.Transaction
	Matched     bool
}

// Processor is the webhook ingress surface.
type Processor interface {
	Process(ctx context.Context, rawBody []byte, signatureHeader string) (*Result, error)
}

// Service reconciles webhook deliveries against pending transactions.
type Service struct {
	db      *gorm.DB
	log     *zap.SugaredLogger
	client  *whop.Client
	whLog   *webhooklog.Service
	matcher *Matcher
	events  *prometheus.CounterVec
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, db *gorm.DB, client *whop.Client, whLog *webhooklog.Service) Processor {
	events := metricspkg.NewMetric(metricspkg.MetricsWebhookEvents, "checkout").(*prometheus.CounterVec)
	if err := prometheus.Register(events); err != nil {
		log.Warnw("webhook events metric registration failed", "err", err)
	}
	return &Service{
		db:      db,
		log:     log,
		client:  client,
		whLog:   whLog,
		matcher: NewMatcher(cfg.Matcher.AllowFallback),
		events:  events,
	}
}

// Process handles one webhook delivery end to end: authenticate, parse,
// match, transition. Authentication and no-match conditions never escape as
// errors; only infrastructure failures do.
func (s *Service) Process(ctx context.Context, rawBody []byte, signatureHeader string) (res *Result, resErr error) {
	if !s.client.VerifyWebhookSignature(rawBody, signatureHeader) {
		s.events.WithLabelValues("unknown", "unauthenticated").Inc()
		return nil, ErrUnauthenticated
	}

	ev, err := ParseEvent(rawBody)
	if err != nil {
		s.events.WithLabelValues("unknown", "invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	logctx.FromCtx(ctx, s.log).Infow("webhook_received", "event", ev.Type, "provider_session_id", ev.ProviderSessionID)

	var traceID string
	if v, ok := ctx.Value(logctx.TraceIDKey).(string); ok {
		traceID = v
	}
	dataBytes, _ := json.Marshal(ev.Payload)

	s.whLog.Save(ctx, &models.WebhookLog{
		ProviderID:        string(types.PaymentProviderWhop),
		TraceID:           traceID,
		EventType:         string(ev.Type),
		ProviderSessionID: ev.ProviderSessionID,
		Data:              datatypes.JSON(dataBytes),
		Status:            models.WebhookLogStatusReceived,
	})

	res = &Result{EventType: ev.Type}

	defer func() {
		resMap := map[string]any{"matched": res.Matched}
		if res.Transaction != nil {
			resMap["transaction_id"] = res.Transaction.ID
			resMap["status"] = res.Transaction.Status
		}
		status := models.WebhookLogStatusHandled
		if resErr != nil {
			resMap["error"] = resErr.Error()
			status = models.WebhookLogStatusHandleFailed
		}
		resBytes, _ := json.Marshal(resMap)
		entry := &models.WebhookLog{
			ProviderID:        string(types.PaymentProviderWhop),
			TraceID:           traceID,
			EventType:         string(ev.Type),
			ProviderSessionID: ev.ProviderSessionID,
			Data:              datatypes.JSON(dataBytes),
			Result:            lo.ToPtr(datatypes.JSON(resBytes)),
			Status:            status,
		}
		if res.Transaction != nil {
			entry.TransactionID = lo.ToPtr(res.Transaction.ID)
		}
		s.whLog.Save(ctx, entry)

		outcome := "handled"
		switch {
		case resErr != nil:
			outcome = "failed"
		case !res.Matched:
			outcome = "unmatched"
		}
		s.events.WithLabelValues(string(ev.Type), outcome).Inc()
	}()

	switch ev.Type {
	case types.WebhookEventPaymentSucceeded, types.WebhookEventPaymentFailed:
		resErr = s.reconcilePayment(ctx, ev, res)
	case types.WebhookEventMembershipWentValid:
		resErr = s.attachMembership(ctx, ev, res)
	case types.WebhookEventPaymentPending:
		logctx.FromCtx(ctx, s.log).Infow("payment_pending", "data", ev.Data)
	case types.WebhookEventMembershipWentInvalid:
		logctx.FromCtx(ctx, s.log).Warnw("membership_went_invalid", "data", ev.Data)
	default:
		// Unrecognized types are acknowledged but produce no state change.
		logctx.FromCtx(ctx, s.log).Infow("webhook_event_unhandled", "event", ev.Type)
	}
	return res, resErr
}

// reconcilePayment runs the match-then-update sequence atomically: the pending
// rows are read under FOR UPDATE so concurrent deliveries of the same event
// serialize, and the loser sees no pending row left to transition.
func (s *Service) reconcilePayment(ctx context.Context, ev *Event, res *Result) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending []*models.Transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", types.TransactionStatusPending).
			Order("created_at desc").
			Find(&pending).Error; err != nil {
			return fmt.Errorf("failed to load pending transactions: %w", err)
		}

		txn := s.matcher.Match(ev, pending)
		if txn == nil {
			logctx.FromCtx(ctx, s.log).Warnw("no pending transaction matched", "event", ev.Type, "provider_session_id", ev.ProviderSessionID)
			return nil
		}

		if ev.ProviderSessionID != "" && txn.ProviderSessionID == "" {
			txn.ProviderSessionID = ev.ProviderSessionID
		}
		if !applyEvent(txn, ev, time.Now()) {
			return nil
		}

		if err := tx.Save(txn).Error; err != nil {
			return fmt.Errorf("failed to persist transaction %d: %w", txn.ID, err)
		}

		res.Transaction = txn
		res.Matched = true
		return nil
	})
	if err != nil {
		return err
	}

	if res.Matched {
		logctx.FromCtx(ctx, s.log).Infow("transaction_reconciled",
			"transaction_id", res.Transaction.ID,
			"status", res.Transaction.Status,
			"user_id", res.Transaction.UserID,
			"amount", res.Transaction.Amount,
		)
	}
	return nil
}

// attachMembership merges a membership activation payload into the most
// recently completed transaction. No status transition is involved.
func (s *Service) attachMembership(ctx context.Context, ev *Event, res *Result) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", types.TransactionStatusCompleted).
			Order("created_at desc").
			First(&txn).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logctx.FromCtx(ctx, s.log).Warnw("no completed transaction for membership event")
				return nil
			}
			return fmt.Errorf("failed to load completed transaction: %w", err)
		}

		applyMembershipValid(&txn, ev)
		if err := tx.Save(&txn).Error; err != nil {
			return fmt.Errorf("failed to persist membership payload: %w", err)
		}
		res.Transaction = &txn
		res.Matched = true
		return nil
	})
}
