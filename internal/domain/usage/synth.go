package usage

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/pkg/util"
)

// meterResolution is the number of decimal places a reading is quantized to.
const meterResolution = 2

var (
	two          = decimal.NewFromInt(2)
	morningBoost = decimal.NewFromInt(1)
	eveningBoost = decimal.RequireFromString("1.5")
	nightFactor  = decimal.RequireFromString("0.7")
	basePowerKW  = decimal.RequireFromString("2.5")
)

// powerSpread is the random kW added to the base load per band.
var powerSpread = map[tariff.Band]decimal.Decimal{
	tariff.Peak:    decimal.NewFromInt(2),
	tariff.Normal:  decimal.RequireFromString("1.5"),
	tariff.OffPeak: decimal.NewFromInt(1),
}

type appliance struct {
	name string
	kwh  int64
	cost int64
}

var appliances = []appliance{
	{"Air Conditioner", 35, 280},
	{"Water Heater", 15, 120},
	{"Refrigerator", 12, 95},
	{"Washing Machine", 8, 65},
	{"Lights & Fans", 10, 80},
	{"TV & Electronics", 6, 48},
	{"Other Appliances", 14, 112},
}

func uniform(src Source) decimal.Decimal {
	return decimal.NewFromFloat(src.Float64())
}

// HourlyUsage shapes one uniform draw u into an hour's consumption.
func HourlyUsage(hour int, u decimal.Decimal) decimal.Decimal {
	usage := two.Add(u.Mul(two))
	if hour >= 6 && hour <= 9 {
		usage = usage.Add(morningBoost)
	}
	if hour >= 18 && hour <= 21 {
		usage = usage.Add(eveningBoost)
	}
	if hour >= 22 || hour <= 5 {
		usage = usage.Mul(nightFactor)
	}
	return usage.Round(meterResolution)
}

// GenerateDailyReadings synthesizes 24 hourly readings for date's calendar
// day. Each hour draws once from src, in hour order. Timestamps are one hour
// apart from local midnight; the band follows the slot, not the wall clock.
func GenerateDailyReadings(date time.Time, src Source, table *tariff.Table) ([]EnergyReading, error) {
	readings := make([]EnergyReading, 0, 24)
	for hour := 0; hour < 24; hour++ {
		band, err := table.ClassifyHour(hour)
		if err != nil {
			return nil, err
		}
		usage := HourlyUsage(hour, uniform(src))
		cost, err := table.Cost(usage, band)
		if err != nil {
			return nil, err
		}
		readings = append(readings, EnergyReading{
			Hour:      hour,
			Timestamp: util.AtHour(date, hour),
			Usage:     usage,
			Band:      band,
			Cost:      cost,
		})
	}
	return readings, nil
}

// AggregateDaily sums readings per band. TotalUsage is the sum of the band
// subtotals and TotalCost the sum of the reading costs.
func AggregateDaily(readings []EnergyReading) (DailySummary, error) {
	var s DailySummary
	if len(readings) > 0 {
		s.Date = readings[0].Timestamp.Format(time.DateOnly)
	}
	for _, r := range readings {
		switch r.Band {
		case tariff.Peak:
			s.Peak = s.Peak.Add(r.Usage)
		case tariff.Normal:
			s.Normal = s.Normal.Add(r.Usage)
		case tariff.OffPeak:
			s.OffPeak = s.OffPeak.Add(r.Usage)
		default:
			return DailySummary{}, fmt.Errorf("%w: %q", tariff.ErrUnknownBand, r.Band)
		}
		s.TotalCost = s.TotalCost.Add(r.Cost)
	}
	s.TotalUsage = s.Peak.Add(s.Normal).Add(s.OffPeak)
	return s, nil
}

// GenerateDay synthesizes and summarizes one day seeded from (seed, day).
func GenerateDay(date time.Time, seed uint64, table *tariff.Table) (Day, error) {
	readings, err := GenerateDailyReadings(date, NewSource(seed, DayStream(date)), table)
	if err != nil {
		return Day{}, err
	}
	summary, err := AggregateDaily(readings)
	if err != nil {
		return Day{}, err
	}
	return Day{Readings: readings, Summary: summary}, nil
}

// WeeklySeries returns seven daily summaries ending with now's day, oldest first.
func WeeklySeries(now time.Time, seed uint64, table *tariff.Table) ([]DailySummary, error) {
	out := make([]DailySummary, 0, 7)
	for i := 6; i >= 0; i-- {
		day, err := GenerateDay(now.AddDate(0, 0, -i), seed, table)
		if err != nil {
			return nil, err
		}
		out = append(out, day.Summary)
	}
	return out, nil
}

// CurrentUsage simulates the instantaneous load at now.
func CurrentUsage(now time.Time, src Source, table *tariff.Table) (Live, error) {
	band := table.Classify(now)
	power := basePowerKW.Add(uniform(src).Mul(powerSpread[band])).Round(meterResolution)
	cost, err := table.Cost(power, band)
	if err != nil {
		return Live{}, err
	}
	return Live{At: now, PowerKW: power, HourlyCost: cost, Band: band}, nil
}

// TodayStats totals now's day and the usage through the current hour.
func TodayStats(now time.Time, readings []EnergyReading) (Today, error) {
	summary, err := AggregateDaily(readings)
	if err != nil {
		return Today{}, err
	}
	hour := now.Hour()
	upToNow := decimal.Zero
	for i, r := range readings {
		if i > hour {
			break
		}
		upToNow = upToNow.Add(r.Usage)
	}
	return Today{
		Date:            now.Format(time.DateOnly),
		Readings:        readings,
		TotalUsage:      summary.TotalUsage,
		TotalCost:       summary.TotalCost,
		UsageUpToNow:    upToNow,
		ProgressPercent: int(math.Round(float64(hour) * 100 / 24)),
	}, nil
}

// DeviceBreakdown jitters the appliance list by up to 2.5 kWh and 20 currency
// units either way. Percentages come from the unjittered base usage.
func DeviceBreakdown(src Source) []DeviceUsage {
	var total int64
	for _, a := range appliances {
		total += a.kwh
	}
	half := decimal.RequireFromString("0.5")
	out := make([]DeviceUsage, 0, len(appliances))
	for _, a := range appliances {
		du := uniform(src).Sub(half).Mul(decimal.NewFromInt(5))
		dc := uniform(src).Sub(half).Mul(decimal.NewFromInt(40))
		out = append(out, DeviceUsage{
			Device:     a.name,
			Usage:      decimal.NewFromInt(a.kwh).Add(du).Round(1),
			Cost:       decimal.NewFromInt(a.cost).Add(dc).Round(0),
			Percentage: int(math.Round(float64(a.kwh) * 100 / float64(total))),
		})
	}
	return out
}
