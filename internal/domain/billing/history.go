package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/domain/usage"
)

// History is an ordered list of bills, oldest first, with at most one bill
// per period.
type History struct {
	bills []MonthlyBill
	index map[Period]int
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{index: make(map[Period]int)}
}

// Add appends a bill. A second bill for the same period is rejected.
func (h *History) Add(bill MonthlyBill) error {
	if _, dup := h.index[bill.Period]; dup {
		return fmt.Errorf("%w: %s %d", ErrDuplicateBillingPeriod, bill.Period.Label(), bill.Period.Year)
	}
	h.index[bill.Period] = len(h.bills)
	h.bills = append(h.bills, bill)
	return nil
}

// Has reports whether a bill exists for p.
func (h *History) Has(p Period) bool {
	_, ok := h.index[p]
	return ok
}

// Len returns the number of bills.
func (h *History) Len() int {
	return len(h.bills)
}

// Bills returns the bills oldest first with their payment status set. The
// newest bill is current, the one before it pending and the rest paid.
func (h *History) Bills() []MonthlyBill {
	out := make([]MonthlyBill, len(h.bills))
	copy(out, h.bills)
	for i := range out {
		switch len(out) - 1 - i {
		case 0:
			out[i].Status = StatusCurrent
		case 1:
			out[i].Status = StatusPending
		default:
			out[i].Status = StatusPaid
		}
	}
	return out
}

// Find returns the bill for p with its status.
func (h *History) Find(p Period) (MonthlyBill, error) {
	i, ok := h.index[p]
	if !ok {
		return MonthlyBill{}, fmt.Errorf("%w: %s", ErrBillNotFound, p)
	}
	return h.Bills()[i], nil
}

// Latest returns the current bill.
func (h *History) Latest() (MonthlyBill, error) {
	if len(h.bills) == 0 {
		return MonthlyBill{}, ErrBillNotFound
	}
	bills := h.Bills()
	return bills[len(bills)-1], nil
}

// Previous returns the bill before the current one.
func (h *History) Previous() (MonthlyBill, error) {
	if len(h.bills) < 2 {
		return MonthlyBill{}, ErrBillNotFound
	}
	bills := h.Bills()
	return bills[len(bills)-2], nil
}

// Summary totals paid bills, averages payable over all bills and sums units.
func (h *History) Summary() Summary {
	s := Summary{Bills: len(h.bills)}
	if len(h.bills) == 0 {
		return s
	}
	var payable decimal.Decimal
	for _, b := range h.Bills() {
		payable = payable.Add(b.Payable)
		s.TotalUnits = s.TotalUnits.Add(b.TotalUsage)
		if b.Status == StatusPaid {
			s.TotalPaid = s.TotalPaid.Add(b.Payable)
		}
	}
	s.AveragePayable = payable.Div(decimal.NewFromInt(int64(len(h.bills))))
	return s
}

var (
	peakFloor    = decimal.NewFromInt(150)
	peakSpread   = decimal.NewFromInt(100)
	normalFloor  = decimal.NewFromInt(200)
	normalSpread = decimal.NewFromInt(150)
	offFloor     = decimal.NewFromInt(300)
	offSpread    = decimal.NewFromInt(200)
)

func draw(src usage.Source, floor, spread decimal.Decimal) decimal.Decimal {
	return floor.Add(decimal.NewFromFloat(src.Float64()).Mul(spread)).Round(2)
}

// historyStream keeps bill draws apart from the hourly meter draws.
const historyStream = 0xb111

// HistorySource returns the random source for the history generated during
// now's month. The stream is the month so the list is stable until the
// period rolls over.
func HistorySource(seed uint64, now time.Time) usage.Source {
	stream := uint64(now.Year())*100 + uint64(now.Month())
	return usage.NewSource(seed, stream^historyStream)
}

// GenerateHistory synthesizes bills for the months periods ending at now.
// Walking back by calendar months can land two offsets on the same period
// (e.g. from the 31st); the later one is skipped.
func GenerateHistory(now time.Time, months int, src usage.Source, table *tariff.Table, charges Charges) (*History, error) {
	h := NewHistory()
	for i := months - 1; i >= 0; i-- {
		p := PeriodOf(now.AddDate(0, -i, 0))
		if h.Has(p) {
			continue
		}
		units := UsageByBand{
			Peak:    draw(src, peakFloor, peakSpread),
			Normal:  draw(src, normalFloor, normalSpread),
			OffPeak: draw(src, offFloor, offSpread),
		}
		bill, err := AggregateMonthlyBill(p, units, table, charges)
		if err != nil {
			return nil, err
		}
		if err := h.Add(bill); err != nil {
			return nil, err
		}
	}
	return h, nil
}
