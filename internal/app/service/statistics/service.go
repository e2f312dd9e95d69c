package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/cerebra-app/checkout/internal/models"
	"github.com/cerebra-app/checkout/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatusCount is one row of the per-status breakdown.
type StatusCount struct {
	Status types.TransactionStatus `json:"status"`
	Count  int64                   `json:"count"`
}

// DailyStat aggregates one day of checkout activity.
type DailyStat struct {
	Date      string  `json:"date"`
	Count     int64   `json:"count"`
	Completed int64   `json:"completed"`
	Gmv       float64 `json:"gmv"`
}

// Overview is the admin dashboard payload.
type Overview struct {
	TotalTransactions int64         `json:"total_transactions"`
	ByStatus          []StatusCount `json:"by_status"`
	TotalGmv          float64       `json:"total_gmv"`
	Daily             []DailyStat   `json:"daily"`
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Overview computes transaction counts and GMV over the trailing window.
// GMV counts completed transactions only.
func (s *Service) Overview(ctx context.Context, days int) (*Overview, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var byStatus []StatusCount
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	var totalGmv float64
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("status = ?", types.TransactionStatusCompleted).
		Select("coalesce(sum(amount), 0)").
		Scan(&totalGmv).Error; err != nil {
		return nil, fmt.Errorf("failed to sum gmv: %w", err)
	}

	var daily []DailyStat
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select(
			"to_char(created_at, 'YYYY-MM-DD') as date, "+
				"count(*) as count, "+
				"count(*) filter (where status = ?) as completed, "+
				"coalesce(sum(amount) filter (where status = ?), 0) as gmv",
			types.TransactionStatusCompleted, types.TransactionStatusCompleted,
		).
		Where("created_at >= ?", since).
		Group("to_char(created_at, 'YYYY-MM-DD')").
		Order("date desc").
		Scan(&daily).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate daily stats: %w", err)
	}

	return &Overview{
		TotalTransactions: lo.SumBy(byStatus, func(c StatusCount) int64 { return c.Count }),
		ByStatus:          byStatus,
		TotalGmv:          totalGmv,
		Daily:             daily,
	}, nil
}

// Module exposes the statistics service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
