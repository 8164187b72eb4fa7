package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/yanqian/smart-energy/internal/domain/tariff"
	apperrors "github.com/yanqian/smart-energy/pkg/errors"
	"github.com/yanqian/smart-energy/pkg/metrics"
)

// Service exposes bill history, quotes and statement export.
type Service interface {
	History(ctx context.Context) (HistoryView, error)
	Current(ctx context.Context) (BillView, error)
	Quote(ctx context.Context, units UsageByBand) (BillView, error)
	ExportStatement(ctx context.Context, year, month int) (StoredStatement, error)
	Statement(ctx context.Context, year, month int) ([]byte, error)
}

// HistoryView is the bill list with its summary.
type HistoryView struct {
	Bills   []MonthlyBill
	Summary Summary
}

// BillView is a bill with its charge lines.
type BillView struct {
	Bill  MonthlyBill
	Lines []StatementLine
}

type service struct {
	cfg    Config
	table  *tariff.Table
	store  StatementStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the billing domain.
func NewService(cfg Config, table *tariff.Table, store StatementStore, logger *slog.Logger) Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.HistoryMonths <= 0 {
		cfg.HistoryMonths = 6
	}
	return &service{
		cfg:    cfg,
		table:  table,
		store:  store,
		logger: logger.With("component", "billing.service"),
		now:    time.Now,
	}
}

// history regenerates the bills for the current month.
func (s *service) history() (*History, error) {
	now := s.now().In(s.cfg.Location)
	src := HistorySource(s.cfg.Seed, now)
	h, err := GenerateHistory(now, s.cfg.HistoryMonths, src, s.table, s.cfg.Charges)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to generate billing history", err)
	}
	return h, nil
}

func (s *service) view(bill MonthlyBill) (BillView, error) {
	lines, err := ChargeLines(bill, s.table, s.cfg.Charges.DutyRate)
	if err != nil {
		return BillView{}, apperrors.Wrap(apperrors.CodeInternal, "failed to build charge lines", err)
	}
	return BillView{Bill: bill, Lines: lines}, nil
}

func (s *service) History(ctx context.Context) (HistoryView, error) {
	h, err := s.history()
	if err != nil {
		return HistoryView{}, err
	}
	return HistoryView{Bills: h.Bills(), Summary: h.Summary()}, nil
}

func (s *service) Current(ctx context.Context) (BillView, error) {
	h, err := s.history()
	if err != nil {
		return BillView{}, err
	}
	bill, err := h.Latest()
	if err != nil {
		return BillView{}, apperrors.Wrap(apperrors.CodeNotFound, "no bills in history", err)
	}
	return s.view(bill)
}

func (s *service) Quote(ctx context.Context, units UsageByBand) (BillView, error) {
	bill, err := AggregateMonthlyBill(PeriodOf(s.now().In(s.cfg.Location)), units, s.table, s.cfg.Charges)
	if err != nil {
		return BillView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "units must be non-negative", err)
	}
	bill.Status = StatusCurrent
	return s.view(bill)
}

func (s *service) find(year, month int) (MonthlyBill, error) {
	p, err := NewPeriod(year, month)
	if err != nil {
		return MonthlyBill{}, apperrors.Wrap(apperrors.CodeInvalidInput, "year and month must identify a calendar month", err)
	}
	h, err := s.history()
	if err != nil {
		return MonthlyBill{}, err
	}
	bill, err := h.Find(p)
	if err != nil {
		return MonthlyBill{}, apperrors.Wrap(apperrors.CodeNotFound, "no bill for "+p.String(), err)
	}
	return bill, nil
}

func (s *service) ExportStatement(ctx context.Context, year, month int) (StoredStatement, error) {
	bill, err := s.find(year, month)
	if err != nil {
		return StoredStatement{}, err
	}
	view, err := s.view(bill)
	if err != nil {
		return StoredStatement{}, err
	}
	body, err := RenderStatement(bill, view.Lines, s.now())
	if err != nil {
		return StoredStatement{}, apperrors.Wrap(apperrors.CodeExport, "failed to render statement", err)
	}
	key := StatementKey(bill)
	stored, err := s.store.Put(ctx, key, body, "application/json")
	if err != nil {
		metrics.StatementExportsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("statement upload failed", "key", key, "error", err)
		return StoredStatement{}, apperrors.Wrap(apperrors.CodeExport, "failed to store statement", err)
	}
	metrics.StatementExportsTotal.WithLabelValues("stored").Inc()
	s.logger.Info("statement exported", "key", stored.Key, "size", stored.Size)
	return stored, nil
}

func (s *service) Statement(ctx context.Context, year, month int) ([]byte, error) {
	bill, err := s.find(year, month)
	if err != nil {
		return nil, err
	}
	rc, err := s.store.Get(ctx, StatementKey(bill))
	if err != nil {
		if errors.Is(err, ErrStatementNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeNotFound, "statement has not been exported", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to read statement", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to read statement", err)
	}
	return body, nil
}
