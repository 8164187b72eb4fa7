package insight

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/domain/usage"
	apperrors "github.com/yanqian/smart-energy/pkg/errors"
)

// Service computes dashboard insights.
type Service interface {
	List(ctx context.Context) ([]Insight, error)
}

// BillSource provides the bill history.
type BillSource interface {
	History(ctx context.Context) (billing.HistoryView, error)
}

// ReadingSource provides a day of readings.
type ReadingSource interface {
	Daily(ctx context.Context, date string) (usage.Day, error)
}

type service struct {
	cfg      Config
	table    *tariff.Table
	bills    BillSource
	readings ReadingSource
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the insights domain.
func NewService(cfg Config, table *tariff.Table, bills BillSource, readings ReadingSource, location *time.Location, logger *slog.Logger) Service {
	if location == nil {
		location = time.Local
	}
	return &service{
		cfg:      cfg,
		table:    table,
		bills:    bills,
		readings: readings,
		location: location,
		logger:   logger.With("component", "insight.service"),
		now:      time.Now,
	}
}

func (s *service) List(ctx context.Context) ([]Insight, error) {
	now := s.now().In(s.location)
	history, err := s.bills.History(ctx)
	if err != nil {
		return nil, err
	}
	yesterday, err := s.readings.Daily(ctx, now.AddDate(0, 0, -1).Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	out, err := Compute(Input{
		Now:       now,
		Bills:     history.Bills,
		Yesterday: yesterday.Readings,
		Table:     s.table,
	}, s.cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to compute insights", err)
	}
	s.logger.Debug("insights computed", "count", len(out))
	return out, nil
}
