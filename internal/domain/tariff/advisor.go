package tariff

import (
	"fmt"
	"time"

	"github.com/yanqian/smart-energy/pkg/util"
)

// Current returns the row active at now.
func (t *Table) Current(now time.Time) Rate {
	return t.byBand[t.Classify(now)]
}

// Advice returns a short hint on whether now is a good time to run heavy loads.
func (t *Table) Advice(hour int) (string, error) {
	band, err := t.ClassifyHour(hour)
	if err != nil {
		return "", err
	}
	offPeak := t.byBand[OffPeak].PerKWh.String()
	switch {
	case band == OffPeak && (hour >= 22 || hour < 6):
		return fmt.Sprintf("Great time! You're in off-peak hours (₹%s/unit)", offPeak), nil
	case band == Peak && hour < 12:
		return "Peak hours! Consider delaying non-essential usage. Off-peak starts at 10 PM", nil
	case band == Peak:
		return fmt.Sprintf("Peak hours! Wait until 10 PM for off-peak rates (₹%s/unit)", offPeak), nil
	case band == Normal:
		return "Normal rates. For best savings, wait until 10 PM", nil
	default:
		return fmt.Sprintf("Normal rates. Off-peak hours (₹%s/unit) start at 10 PM", offPeak), nil
	}
}

// NextStart returns the first time strictly after now at which band b
// becomes active after a different band. It returns the zero time when b
// has no windows.
func (t *Table) NextStart(now time.Time, b Band) time.Time {
	base := util.StartOfHour(now)
	for i := 1; i <= 48; i++ {
		candidate := base.Add(time.Duration(i) * time.Hour)
		prev := candidate.Add(-time.Hour)
		if t.Classify(candidate) == b && t.Classify(prev) != b {
			return candidate
		}
	}
	return time.Time{}
}
