package insight

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/domain/usage"
	"github.com/yanqian/smart-energy/pkg/money"
)

var hundred = decimal.NewFromInt(100)

// Input is everything Compute looks at.
type Input struct {
	Now       time.Time
	Bills     []billing.MonthlyBill
	Yesterday []usage.EnergyReading
	Table     *tariff.Table
}

// Compute derives the dashboard insights. Bill prediction needs two bills and
// the spike alert only appears when yesterday had one.
func Compute(in Input, cfg Config) ([]Insight, error) {
	var out []Insight
	if pred, ok := billPrediction(in, cfg); ok {
		out = append(out, pred)
	}
	laundry, err := laundryTime(in, cfg)
	if err != nil {
		return nil, err
	}
	out = append(out, laundry)
	if spike, ok := usageSpike(in, cfg); ok {
		out = append(out, spike)
	}
	out = append(out, acOptimization(in, cfg), peakAlert(in))
	return out, nil
}

// PercentChange is (current - previous) / previous * 100.
func PercentChange(current, previous decimal.Decimal) (decimal.Decimal, error) {
	if !previous.IsPositive() {
		return decimal.Zero, fmt.Errorf("previous amount must be positive, got %s", previous)
	}
	return current.Sub(previous).Div(previous).Mul(hundred), nil
}

func billPrediction(in Input, cfg Config) (Insight, bool) {
	if len(in.Bills) < 2 {
		return Insight{}, false
	}
	current := in.Bills[len(in.Bills)-1]
	previous := in.Bills[len(in.Bills)-2]
	change, err := PercentChange(current.Payable, previous.Payable)
	if err != nil {
		return Insight{}, false
	}
	direction := "higher"
	if change.IsNegative() {
		direction = "lower"
	}
	priority := PriorityMedium
	if change.GreaterThan(cfg.IncreaseAlertPct) {
		priority = PriorityHigh
	}
	return Insight{
		ID:       "bill-prediction",
		Category: CategoryPrediction,
		Priority: priority,
		Title:    "Monthly Bill Prediction",
		Description: fmt.Sprintf("Based on current usage, your bill will be %s this month. This is %s%% %s than last month.",
			money.FormatWhole(current.Payable), change.Abs().RoundBank(0).String(), direction),
		Timestamp: in.Now,
	}, true
}

func laundryTime(in Input, cfg Config) (Insight, error) {
	peak, err := in.Table.Rate(tariff.Peak)
	if err != nil {
		return Insight{}, err
	}
	off, err := in.Table.Rate(tariff.OffPeak)
	if err != nil {
		return Insight{}, err
	}
	savings := cfg.LaundryKWhPerMonth.Mul(peak.Sub(off))
	cheaper := peak.Sub(off).Div(peak).Mul(hundred)
	return Insight{
		ID:       "laundry-time",
		Category: CategoryRecommendation,
		Priority: PriorityHigh,
		Title:    "Optimal Laundry Time",
		Description: fmt.Sprintf("Run your washing machine after 10 PM to save %s/month. Off-peak rates are %s%% cheaper.",
			money.FormatWhole(savings), cheaper.RoundBank(0).String()),
		Savings:   &savings,
		Timestamp: in.Now,
	}, nil
}

func usageSpike(in Input, cfg Config) (Insight, bool) {
	if len(in.Yesterday) == 0 {
		return Insight{}, false
	}
	var sum decimal.Decimal
	maxReading := in.Yesterday[0]
	for _, r := range in.Yesterday {
		sum = sum.Add(r.Usage)
		if r.Usage.GreaterThan(maxReading.Usage) {
			maxReading = r
		}
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(in.Yesterday))))
	if !mean.IsPositive() || !maxReading.Usage.GreaterThan(mean.Mul(cfg.SpikeFactor)) {
		return Insight{}, false
	}
	multiple := maxReading.Usage.Div(mean).Round(1)
	return Insight{
		ID:       "usage-spike",
		Category: CategoryAlert,
		Priority: PriorityHigh,
		Title:    "Unusual Spike Detected",
		Description: fmt.Sprintf("Energy usage was %sx higher than normal at %s yesterday. Check for appliances left on.",
			multiple.String(), hourLabel(maxReading.Hour)),
		Timestamp: maxReading.Timestamp,
	}, true
}

// hourLabel renders a day slot as "7 PM".
func hourLabel(hour int) string {
	return time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("3 PM")
}

func acOptimization(in Input, cfg Config) Insight {
	savings := cfg.ACSavings
	return Insight{
		ID:       "ac-optimization",
		Category: CategoryRecommendation,
		Priority: PriorityMedium,
		Title:    "AC Optimization",
		Description: fmt.Sprintf("Setting AC to 25°C instead of 22°C can save %s/month during peak hours.",
			money.FormatWhole(savings)),
		Savings:   &savings,
		Timestamp: in.Now,
	}
}

func peakAlert(in Input) Insight {
	next := in.Table.NextStart(in.Now, tariff.Peak)
	minutes := int(math.Ceil(next.Sub(in.Now).Minutes()))
	return Insight{
		ID:       "peak-alert",
		Category: CategoryPrediction,
		Priority: PriorityLow,
		Title:    "Peak Hour Alert",
		Description: fmt.Sprintf("Peak hours start in %s (%s). Consider completing high-power tasks now.",
			untilText(minutes), next.Format("3 PM")),
		Timestamp: in.Now,
	}
}

func untilText(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := minutes / 60
	rest := minutes % 60
	unit := "hours"
	if hours == 1 {
		unit = "hour"
	}
	if rest == 0 {
		return fmt.Sprintf("%d %s", hours, unit)
	}
	return fmt.Sprintf("%d %s %d minutes", hours, unit, rest)
}
