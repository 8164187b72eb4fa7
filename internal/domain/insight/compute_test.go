package insight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/domain/usage"
)

func flatDay(day time.Time, kwh int64) []usage.EnergyReading {
	table := tariff.MustDefaultTable()
	out := make([]usage.EnergyReading, 0, 24)
	for h := 0; h < 24; h++ {
		ts := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, time.UTC)
		out = append(out, usage.EnergyReading{Hour: h, Timestamp: ts, Usage: decimal.NewFromInt(kwh), Band: table.Classify(ts)})
	}
	return out
}

func bills(payables ...int64) []billing.MonthlyBill {
	out := make([]billing.MonthlyBill, 0, len(payables))
	for i, p := range payables {
		out = append(out, billing.MonthlyBill{
			Period:  billing.Period{Year: 2024, Month: time.Month(i + 1)},
			Payable: decimal.NewFromInt(p),
		})
	}
	return out
}

func byID(list []Insight) map[string]Insight {
	out := make(map[string]Insight, len(list))
	for _, in := range list {
		out[in.ID] = in
	}
	return out
}

func TestComputeAllInsights(t *testing.T) {
	now := time.Date(2024, 7, 2, 17, 30, 0, 0, time.UTC)
	yesterday := flatDay(now.AddDate(0, 0, -1), 2)
	yesterday[19].Usage = decimal.NewFromInt(10)

	list, err := Compute(Input{
		Now:       now,
		Bills:     bills(1000, 1120),
		Yesterday: yesterday,
		Table:     tariff.MustDefaultTable(),
	}, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, list, 5)

	got := byID(list)

	pred := got["bill-prediction"]
	require.Equal(t, CategoryPrediction, pred.Category)
	require.Equal(t, PriorityHigh, pred.Priority)
	require.Equal(t, "Based on current usage, your bill will be ₹1,120 this month. This is 12% higher than last month.", pred.Description)

	laundry := got["laundry-time"]
	require.Equal(t, PriorityHigh, laundry.Priority)
	require.True(t, laundry.Savings.Equal(decimal.NewFromInt(44)))
	require.Equal(t, "Run your washing machine after 10 PM to save ₹44/month. Off-peak rates are 61% cheaper.", laundry.Description)

	spike := got["usage-spike"]
	require.Equal(t, CategoryAlert, spike.Category)
	require.Equal(t, "Energy usage was 4.3x higher than normal at 7 PM yesterday. Check for appliances left on.", spike.Description)
	require.Equal(t, yesterday[19].Timestamp, spike.Timestamp)

	ac := got["ac-optimization"]
	require.True(t, ac.Savings.Equal(decimal.NewFromInt(180)))

	peak := got["peak-alert"]
	require.Equal(t, PriorityLow, peak.Priority)
	require.Equal(t, "Peak hours start in 30 minutes (6 PM). Consider completing high-power tasks now.", peak.Description)
}

func TestComputeSkipsSpikeAndPredictionWhenAbsent(t *testing.T) {
	now := time.Date(2024, 7, 2, 23, 0, 0, 0, time.UTC)
	list, err := Compute(Input{
		Now:       now,
		Bills:     bills(1000),
		Yesterday: flatDay(now.AddDate(0, 0, -1), 3),
		Table:     tariff.MustDefaultTable(),
	}, DefaultConfig())
	require.NoError(t, err)

	got := byID(list)
	require.Len(t, list, 3)
	require.NotContains(t, got, "bill-prediction")
	require.NotContains(t, got, "usage-spike")
	require.Contains(t, got["peak-alert"].Description, "7 hours (6 AM)")
}

func TestBillPredictionDecrease(t *testing.T) {
	list, err := Compute(Input{
		Now:   time.Date(2024, 7, 2, 12, 0, 0, 0, time.UTC),
		Bills: bills(2000, 1800),
		Table: tariff.MustDefaultTable(),
	}, DefaultConfig())
	require.NoError(t, err)

	pred := byID(list)["bill-prediction"]
	require.Equal(t, PriorityMedium, pred.Priority)
	require.Contains(t, pred.Description, "10% lower")
}

func TestPercentChange(t *testing.T) {
	got, err := PercentChange(decimal.NewFromInt(110), decimal.NewFromInt(100))
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.NewFromInt(10)))

	_, err = PercentChange(decimal.NewFromInt(110), decimal.Zero)
	require.Error(t, err)
}

type stubBills struct {
	view billing.HistoryView
	err  error
}

func (s stubBills) History(context.Context) (billing.HistoryView, error) {
	return s.view, s.err
}

type stubReadings struct {
	lastDate string
	day      usage.Day
}

func (s *stubReadings) Daily(_ context.Context, date string) (usage.Day, error) {
	s.lastDate = date
	return s.day, nil
}

func TestServiceListUsesYesterday(t *testing.T) {
	readings := &stubReadings{}
	svc := &service{
		cfg:      DefaultConfig(),
		table:    tariff.MustDefaultTable(),
		bills:    stubBills{view: billing.HistoryView{Bills: bills(1000, 1050)}},
		readings: readings,
		location: time.UTC,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
		},
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2024-06-30", readings.lastDate)
	require.Len(t, list, 4)
}

func TestServiceListPropagatesBillErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := &service{
		cfg:      DefaultConfig(),
		table:    tariff.MustDefaultTable(),
		bills:    stubBills{err: boom},
		readings: &stubReadings{},
		location: time.UTC,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}

	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, boom)
}
