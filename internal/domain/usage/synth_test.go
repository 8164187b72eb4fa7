package usage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/smart-energy/internal/domain/tariff"
	apperrors "github.com/yanqian/smart-energy/pkg/errors"
)

// fixedSource replays the same draw forever.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestGenerateDailyReadingsIsDeterministic(t *testing.T) {
	table := tariff.MustDefaultTable()
	date := time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC)

	first, err := GenerateDailyReadings(date, NewSource(42, DayStream(date)), table)
	require.NoError(t, err)
	second, err := GenerateDailyReadings(date, NewSource(42, DayStream(date)), table)
	require.NoError(t, err)

	require.Len(t, first, 24)
	require.Equal(t, first, second)

	other, err := GenerateDailyReadings(date, NewSource(43, DayStream(date)), table)
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

func TestGenerateDailyReadingsShape(t *testing.T) {
	table := tariff.MustDefaultTable()
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	readings, err := GenerateDailyReadings(date, fixedSource(0.5), table)
	require.NoError(t, err)

	// base 3.0 kWh at u=0.5
	require.Equal(t, "2.1", readings[0].Usage.String())
	require.Equal(t, "4", readings[7].Usage.String())
	require.Equal(t, "3", readings[12].Usage.String())
	require.Equal(t, "4.5", readings[19].Usage.String())
	require.Equal(t, "2.1", readings[23].Usage.String())

	for hour, r := range readings {
		require.Equal(t, hour, r.Hour)
		require.Equal(t, hour, r.Timestamp.Hour())
		band, err := table.ClassifyHour(hour)
		require.NoError(t, err)
		require.Equal(t, band, r.Band)
		rate, err := table.Rate(band)
		require.NoError(t, err)
		require.True(t, r.Cost.Equal(r.Usage.Mul(rate)), "hour %d", hour)
		require.GreaterOrEqual(t, r.Usage.Exponent(), int32(-2), "usage quantized to 0.01")
	}
}

func TestGenerateDailyReadingsAcrossSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	table := tariff.MustDefaultTable()

	readings, err := GenerateDailyReadings(time.Date(2024, 3, 10, 0, 0, 0, 0, loc), fixedSource(0.5), table)
	require.NoError(t, err)
	require.Len(t, readings, 24)

	for hour, r := range readings {
		require.Equal(t, hour, r.Hour)
		band, err := table.ClassifyHour(hour)
		require.NoError(t, err)
		require.Equal(t, band, r.Band)
		if hour > 0 {
			require.Equal(t, time.Hour, r.Timestamp.Sub(readings[hour-1].Timestamp), "hour %d", hour)
		}
	}
	summary, err := AggregateDaily(readings)
	require.NoError(t, err)
	require.Equal(t, "2024-03-10", summary.Date)
}

func TestHourlyUsageBounds(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		low := HourlyUsage(hour, decimal.Zero)
		high := HourlyUsage(hour, decimal.RequireFromString("0.9999"))
		require.True(t, low.LessThan(high))
		require.True(t, low.GreaterThanOrEqual(decimal.RequireFromString("1.4")))
		require.True(t, high.LessThanOrEqual(decimal.RequireFromString("5.5")))
	}
}

func TestAggregateDailySubtotals(t *testing.T) {
	table := tariff.MustDefaultTable()
	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	for seed := uint64(1); seed <= 20; seed++ {
		readings, err := GenerateDailyReadings(date, NewSource(seed, DayStream(date)), table)
		require.NoError(t, err)
		summary, err := AggregateDaily(readings)
		require.NoError(t, err)

		require.Equal(t, "2024-03-09", summary.Date)
		require.True(t, summary.TotalUsage.Equal(summary.Peak.Add(summary.Normal).Add(summary.OffPeak)))

		// priced per reading equals priced per band subtotal
		byBand := decimal.Zero
		for _, b := range tariff.Bands {
			c, err := table.Cost(summary.ByBand(b), b)
			require.NoError(t, err)
			byBand = byBand.Add(c)
		}
		require.True(t, summary.TotalCost.Equal(byBand), "seed %d: %s vs %s", seed, summary.TotalCost, byBand)
	}
}

func TestAggregateDailyRejectsUnknownBand(t *testing.T) {
	_, err := AggregateDaily([]EnergyReading{{Band: "shoulder", Usage: decimal.NewFromInt(1)}})
	require.ErrorIs(t, err, tariff.ErrUnknownBand)
}

func TestWeeklySeriesEndsToday(t *testing.T) {
	table := tariff.MustDefaultTable()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	series, err := WeeklySeries(now, 7, table)
	require.NoError(t, err)
	require.Len(t, series, 7)
	require.Equal(t, "2024-02-24", series[0].Date)
	require.Equal(t, "2024-03-01", series[6].Date)

	today, err := GenerateDay(now, 7, table)
	require.NoError(t, err)
	require.Equal(t, today.Summary, series[6])
}

func TestCurrentUsage(t *testing.T) {
	table := tariff.MustDefaultTable()

	peak, err := CurrentUsage(time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC), fixedSource(0.5), table)
	require.NoError(t, err)
	require.Equal(t, tariff.Peak, peak.Band)
	require.Equal(t, "3.5", peak.PowerKW.String())
	require.Equal(t, "31.5", peak.HourlyCost.String())

	off, err := CurrentUsage(time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC), fixedSource(0.5), table)
	require.NoError(t, err)
	require.Equal(t, tariff.OffPeak, off.Band)
	require.Equal(t, "3", off.PowerKW.String())
}

func TestTodayStats(t *testing.T) {
	table := tariff.MustDefaultTable()
	now := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	readings, err := GenerateDailyReadings(now, fixedSource(0.5), table)
	require.NoError(t, err)

	stats, err := TodayStats(now, readings)
	require.NoError(t, err)
	require.Equal(t, 50, stats.ProgressPercent)

	want := decimal.Zero
	for _, r := range readings[:13] {
		want = want.Add(r.Usage)
	}
	require.True(t, stats.UsageUpToNow.Equal(want))
	require.True(t, stats.TotalUsage.GreaterThan(stats.UsageUpToNow))
}

func TestDeviceBreakdown(t *testing.T) {
	devices := DeviceBreakdown(fixedSource(0.5))
	require.Len(t, devices, 7)
	require.Equal(t, "Air Conditioner", devices[0].Device)
	require.Equal(t, "35", devices[0].Usage.String())
	require.Equal(t, "280", devices[0].Cost.String())
	require.Equal(t, 35, devices[0].Percentage)

	jittered := DeviceBreakdown(fixedSource(0.99))
	require.Equal(t, "37.5", jittered[0].Usage.String())
	require.Equal(t, "300", jittered[0].Cost.String())
}

func TestServiceTodayIsStableWithinDay(t *testing.T) {
	clock := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	svc := &service{
		cfg:    Config{Seed: 99, Location: time.UTC},
		table:  tariff.MustDefaultTable(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    func() time.Time { return clock },
	}

	morning, err := svc.Today(context.Background())
	require.NoError(t, err)
	clock = clock.Add(10 * time.Hour)
	evening, err := svc.Today(context.Background())
	require.NoError(t, err)

	require.Equal(t, morning.Readings, evening.Readings)
	require.True(t, evening.UsageUpToNow.GreaterThan(morning.UsageUpToNow))
}

func TestServiceDailyRejectsBadDate(t *testing.T) {
	svc := &service{
		cfg:    Config{Seed: 1, Location: time.UTC},
		table:  tariff.MustDefaultTable(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}

	_, err := svc.Daily(context.Background(), "01/07/2024")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	day, err := svc.Daily(context.Background(), "2024-07-01")
	require.NoError(t, err)
	require.Equal(t, "2024-07-01", day.Summary.Date)
}
