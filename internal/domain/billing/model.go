package billing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateBillingPeriod is returned when a history already holds the bill's month and year.
	ErrDuplicateBillingPeriod = errors.New("duplicate billing period")
	// ErrBillNotFound is returned when no bill exists for a period.
	ErrBillNotFound = errors.New("bill not found")
	// ErrInvalidPeriod is returned for months outside 1-12 or non-positive years.
	ErrInvalidPeriod = errors.New("invalid billing period")
	// ErrStatementNotFound is returned by a StatementStore for unknown keys.
	ErrStatementNotFound = errors.New("statement not found")
)

// Period identifies a billing month.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the billing period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// NewPeriod validates a numeric year and month.
func NewPeriod(year, month int) (Period, error) {
	if year <= 0 || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: %d-%d", ErrInvalidPeriod, year, month)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// Label renders the short month name used on bills, e.g. "Mar".
func (p Period) Label() string {
	return p.Month.String()[:3]
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Charges are the flat and proportional additions on top of energy cost.
type Charges struct {
	FixedCharge decimal.Decimal
	MeterRent   decimal.Decimal
	DutyRate    decimal.Decimal
}

// DefaultCharges returns the reference fixed charge, meter rent and 6% duty.
func DefaultCharges() Charges {
	return Charges{
		FixedCharge: decimal.NewFromInt(150),
		MeterRent:   decimal.NewFromInt(25),
		DutyRate:    decimal.RequireFromString("0.06"),
	}
}

// UsageByBand holds a period's kWh per band.
type UsageByBand struct {
	Peak    decimal.Decimal
	Normal  decimal.Decimal
	OffPeak decimal.Decimal
}

// Total sums the three bands.
func (u UsageByBand) Total() decimal.Decimal {
	return u.Peak.Add(u.Normal).Add(u.OffPeak)
}

// Status is a bill's place in the payment cycle.
type Status string

const (
	StatusCurrent Status = "current"
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// MonthlyBill is an aggregated bill for one period.
type MonthlyBill struct {
	ID          string
	Period      Period
	Units       UsageByBand
	PeakCost    decimal.Decimal
	NormalCost  decimal.Decimal
	OffPeakCost decimal.Decimal
	TotalUsage  decimal.Decimal
	TotalCost   decimal.Decimal
	FixedCharge decimal.Decimal
	MeterRent   decimal.Decimal
	Duty        decimal.Decimal
	Payable     decimal.Decimal
	Status      Status
}

// Summary aggregates a history.
type Summary struct {
	Bills          int
	TotalPaid      decimal.Decimal
	AveragePayable decimal.Decimal
	TotalUnits     decimal.Decimal
}

// Config wires the billing domain.
type Config struct {
	Charges       Charges
	HistoryMonths int
	Seed          uint64
	Location      *time.Location
}

// StoredStatement describes an exported statement object.
type StoredStatement struct {
	Key  string
	Size int64
	ETag string
}

// StatementStore persists rendered statements.
type StatementStore interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredStatement, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
