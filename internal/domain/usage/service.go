package usage

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/smart-energy/internal/domain/tariff"
	apperrors "github.com/yanqian/smart-energy/pkg/errors"
)

// Service serves the synthetic meter views.
type Service interface {
	Current(ctx context.Context) (Live, error)
	Today(ctx context.Context) (Today, error)
	Daily(ctx context.Context, date string) (Day, error)
	Weekly(ctx context.Context) ([]DailySummary, error)
	Devices(ctx context.Context) ([]DeviceUsage, error)
}

type service struct {
	cfg    Config
	table  *tariff.Table
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the usage domain.
func NewService(cfg Config, table *tariff.Table, logger *slog.Logger) Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &service{
		cfg:    cfg,
		table:  table,
		logger: logger.With("component", "usage.service"),
		now:    time.Now,
	}
}

func (s *service) clock() time.Time {
	return s.now().In(s.cfg.Location)
}

func (s *service) Current(ctx context.Context) (Live, error) {
	now := s.clock()
	live, err := CurrentUsage(now, NewSource(s.cfg.Seed, MinuteStream(now)), s.table)
	if err != nil {
		return Live{}, apperrors.Wrap(apperrors.CodeInternal, "failed to simulate current usage", err)
	}
	return live, nil
}

func (s *service) Today(ctx context.Context) (Today, error) {
	now := s.clock()
	day, err := GenerateDay(now, s.cfg.Seed, s.table)
	if err != nil {
		return Today{}, apperrors.Wrap(apperrors.CodeInternal, "failed to synthesize today's readings", err)
	}
	stats, err := TodayStats(now, day.Readings)
	if err != nil {
		return Today{}, apperrors.Wrap(apperrors.CodeInternal, "failed to summarize today's readings", err)
	}
	return stats, nil
}

func (s *service) Daily(ctx context.Context, date string) (Day, error) {
	when, err := s.resolveDate(date)
	if err != nil {
		return Day{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date must be formatted as YYYY-MM-DD", err)
	}
	day, err := GenerateDay(when, s.cfg.Seed, s.table)
	if err != nil {
		return Day{}, apperrors.Wrap(apperrors.CodeInternal, "failed to synthesize readings", err)
	}
	s.logger.Debug("daily readings synthesized", "date", day.Summary.Date, "total_kwh", day.Summary.TotalUsage.String())
	return day, nil
}

func (s *service) Weekly(ctx context.Context) ([]DailySummary, error) {
	series, err := WeeklySeries(s.clock(), s.cfg.Seed, s.table)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to synthesize weekly series", err)
	}
	return series, nil
}

func (s *service) Devices(ctx context.Context) ([]DeviceUsage, error) {
	return DeviceBreakdown(NewSource(s.cfg.Seed, DayStream(s.clock())^deviceStream)), nil
}

// deviceStream keeps the appliance draws apart from the hourly readings of the same day.
const deviceStream = 0xd1ce

func (s *service) resolveDate(input string) (time.Time, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return s.clock(), nil
	}
	return time.ParseInLocation(time.DateOnly, trimmed, s.cfg.Location)
}
