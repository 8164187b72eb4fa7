package tariff

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Table is an immutable tariff schedule. Every hour of the day maps to
// exactly one band.
type Table struct {
	rates  []Rate
	byHour [24]Band
	byBand map[Band]Rate
}

// NewTable validates the rows and builds the hour lookup.
func NewTable(rates []Rate) (*Table, error) {
	t := &Table{
		rates:  make([]Rate, 0, len(rates)),
		byBand: make(map[Band]Rate, len(rates)),
	}
	var covered [24]bool
	for _, r := range rates {
		if !r.Band.Valid() {
			return nil, fmt.Errorf("%w: %w %q", ErrInvalidTariffTable, ErrUnknownBand, r.Band)
		}
		if _, dup := t.byBand[r.Band]; dup {
			return nil, fmt.Errorf("%w: band %s listed twice", ErrInvalidTariffTable, r.Band)
		}
		if !r.PerKWh.IsPositive() {
			return nil, fmt.Errorf("%w: band %s rate must be positive", ErrInvalidTariffTable, r.Band)
		}
		for _, w := range r.Windows {
			if w.Start < 0 || w.End > 24 || w.Start >= w.End {
				return nil, fmt.Errorf("%w: band %s window [%d,%d) out of range", ErrInvalidTariffTable, r.Band, w.Start, w.End)
			}
			for h := w.Start; h < w.End; h++ {
				if covered[h] {
					return nil, fmt.Errorf("%w: hour %d claimed by more than one band", ErrInvalidTariffTable, h)
				}
				covered[h] = true
				t.byHour[h] = r.Band
			}
		}
		windows := append([]HourRange(nil), r.Windows...)
		row := r
		row.Windows = windows
		t.rates = append(t.rates, row)
		t.byBand[r.Band] = row
	}
	for h, ok := range covered {
		if !ok {
			return nil, fmt.Errorf("%w: hour %d has no band", ErrInvalidTariffTable, h)
		}
	}
	return t, nil
}

// NewDefaultTable builds the India-style time-of-use schedule with the given prices.
func NewDefaultTable(cfg Config) (*Table, error) {
	return NewTable([]Rate{
		{
			Band:      Peak,
			PerKWh:    cfg.PeakRate,
			Windows:   []HourRange{{Start: 6, End: 10}, {Start: 18, End: 22}},
			TimeRange: "6 AM-10 AM & 6 PM-10 PM",
			Color:     "#ef4444",
		},
		{
			Band:      Normal,
			PerKWh:    cfg.NormalRate,
			Windows:   []HourRange{{Start: 10, End: 14}},
			TimeRange: "10 AM-2 PM",
			Color:     "#f59e0b",
		},
		{
			Band:      OffPeak,
			PerKWh:    cfg.OffPeakRate,
			Windows:   []HourRange{{Start: 0, End: 6}, {Start: 14, End: 18}, {Start: 22, End: 24}},
			TimeRange: "10 PM-6 AM",
			Color:     "#10b981",
		},
	})
}

// MustDefaultTable is NewDefaultTable(DefaultConfig()) for tests and the CLI.
func MustDefaultTable() *Table {
	t, err := NewDefaultTable(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return t
}

// Rates returns the rows in display order.
func (t *Table) Rates() []Rate {
	out := make([]Rate, len(t.rates))
	copy(out, t.rates)
	return out
}

// ClassifyHour maps an hour of day to its band.
func (t *Table) ClassifyHour(hour int) (Band, error) {
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidHour, hour)
	}
	return t.byHour[hour], nil
}

// Classify maps a timestamp to its band using the timestamp's own location.
func (t *Table) Classify(ts time.Time) Band {
	return t.byHour[ts.Hour()]
}

// Rate returns the price per kWh for a band.
func (t *Table) Rate(b Band) (decimal.Decimal, error) {
	r, ok := t.byBand[b]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownBand, b)
	}
	return r.PerKWh, nil
}

// Row returns the full table row for a band.
func (t *Table) Row(b Band) (Rate, bool) {
	r, ok := t.byBand[b]
	return r, ok
}

// Cost prices a usage quantity at the band's rate. No rounding is applied.
func (t *Table) Cost(usageKWh decimal.Decimal, b Band) (decimal.Decimal, error) {
	if usageKWh.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidUsage, usageKWh)
	}
	rate, err := t.Rate(b)
	if err != nil {
		return decimal.Zero, err
	}
	return usageKWh.Mul(rate), nil
}

// CostAt prices a usage quantity at the band active at ts.
func (t *Table) CostAt(usageKWh decimal.Decimal, ts time.Time) (decimal.Decimal, error) {
	return t.Cost(usageKWh, t.Classify(ts))
}
