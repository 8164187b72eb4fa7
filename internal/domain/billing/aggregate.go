package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/domain/usage"
)

// BillID names the bill for a period.
func BillID(p Period) string {
	return fmt.Sprintf("bill-%04d-%02d", p.Year, int(p.Month))
}

// AggregateMonthlyBill prices a period's per-band units. Band costs are
// units times rate, total cost their sum, and payable adds the fixed
// charge, meter rent and duty on the total cost. Nothing is rounded.
func AggregateMonthlyBill(p Period, units UsageByBand, table *tariff.Table, charges Charges) (MonthlyBill, error) {
	peak, err := table.Cost(units.Peak, tariff.Peak)
	if err != nil {
		return MonthlyBill{}, err
	}
	normal, err := table.Cost(units.Normal, tariff.Normal)
	if err != nil {
		return MonthlyBill{}, err
	}
	offPeak, err := table.Cost(units.OffPeak, tariff.OffPeak)
	if err != nil {
		return MonthlyBill{}, err
	}
	total := peak.Add(normal).Add(offPeak)
	duty := total.Mul(charges.DutyRate)
	return MonthlyBill{
		ID:          BillID(p),
		Period:      p,
		Units:       units,
		PeakCost:    peak,
		NormalCost:  normal,
		OffPeakCost: offPeak,
		TotalUsage:  units.Total(),
		TotalCost:   total,
		FixedCharge: charges.FixedCharge,
		MeterRent:   charges.MeterRent,
		Duty:        duty,
		Payable:     total.Add(charges.FixedCharge).Add(charges.MeterRent).Add(duty),
	}, nil
}

// UsageFromReadings folds hourly readings into per-band units.
func UsageFromReadings(readings []usage.EnergyReading) (UsageByBand, error) {
	var u UsageByBand
	for _, r := range readings {
		switch r.Band {
		case tariff.Peak:
			u.Peak = u.Peak.Add(r.Usage)
		case tariff.Normal:
			u.Normal = u.Normal.Add(r.Usage)
		case tariff.OffPeak:
			u.OffPeak = u.OffPeak.Add(r.Usage)
		default:
			return UsageByBand{}, fmt.Errorf("%w: %q", tariff.ErrUnknownBand, r.Band)
		}
	}
	return u, nil
}

// AvgRate is the blended energy price per kWh, zero for an empty bill.
func (b MonthlyBill) AvgRate() decimal.Decimal {
	if b.TotalUsage.IsZero() {
		return decimal.Zero
	}
	return b.TotalCost.Div(b.TotalUsage)
}
