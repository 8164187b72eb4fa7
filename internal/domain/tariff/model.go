package tariff

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Band identifies a pricing tier.
type Band string

const (
	Peak    Band = "peak"
	Normal  Band = "normal"
	OffPeak Band = "off-peak"
)

// Bands lists every band in display order.
var Bands = []Band{Peak, Normal, OffPeak}

// Valid reports whether b names a known band.
func (b Band) Valid() bool {
	switch b {
	case Peak, Normal, OffPeak:
		return true
	}
	return false
}

func (b Band) String() string {
	return string(b)
}

var (
	// ErrInvalidHour is returned for hours outside 0-23.
	ErrInvalidHour = errors.New("hour must be between 0 and 23")
	// ErrInvalidUsage is returned for negative usage quantities.
	ErrInvalidUsage = errors.New("usage must not be negative")
	// ErrUnknownBand is returned when a band is not part of the table.
	ErrUnknownBand = errors.New("unknown tariff band")
	// ErrInvalidTariffTable is returned when bands do not partition the day.
	ErrInvalidTariffTable = errors.New("invalid tariff table")
)

// HourRange is a half-open window [Start, End) of hours in a day.
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether hour falls inside the window.
func (r HourRange) Contains(hour int) bool {
	return hour >= r.Start && hour < r.End
}

// Rate is one row of the tariff table.
type Rate struct {
	Band      Band
	PerKWh    decimal.Decimal
	Windows   []HourRange
	TimeRange string
	Color     string
}

// Config holds the per-band prices loaded from configuration.
type Config struct {
	PeakRate    decimal.Decimal
	NormalRate  decimal.Decimal
	OffPeakRate decimal.Decimal
}

// DefaultConfig returns the reference time-of-use prices.
func DefaultConfig() Config {
	return Config{
		PeakRate:    decimal.NewFromInt(9),
		NormalRate:  decimal.RequireFromString("5.5"),
		OffPeakRate: decimal.RequireFromString("3.5"),
	}
}
