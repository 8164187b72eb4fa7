package billing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/pkg/money"
)

// StatementLine is one charge row on a statement.
type StatementLine struct {
	Label   string  `json:"label"`
	Units   float64 `json:"units,omitempty"`
	Rate    float64 `json:"rate,omitempty"`
	Amount  float64 `json:"amount"`
	Display string  `json:"display"`
}

// Statement is the exported bill document.
type Statement struct {
	BillID      string          `json:"billId"`
	Month       string          `json:"month"`
	Year        int             `json:"year"`
	Status      Status          `json:"status"`
	TotalUsage  float64         `json:"totalUsage"`
	Lines       []StatementLine `json:"lines"`
	Payable     float64         `json:"payable"`
	PayableText string          `json:"payableText"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// StatementKey is the object key a bill's statement is stored under.
func StatementKey(b MonthlyBill) string {
	return fmt.Sprintf("statements/%04d/%02d/%s.json", b.Period.Year, int(b.Period.Month), b.ID)
}

func amountLine(label string, amount decimal.Decimal) StatementLine {
	return StatementLine{Label: label, Amount: money.Float(amount), Display: money.Format(amount)}
}

// ChargeLines lists the energy lines per band followed by the fixed
// charge, meter rent and duty.
func ChargeLines(b MonthlyBill, table *tariff.Table, dutyRate decimal.Decimal) ([]StatementLine, error) {
	energy := []struct {
		band  tariff.Band
		units decimal.Decimal
		cost  decimal.Decimal
	}{
		{tariff.Peak, b.Units.Peak, b.PeakCost},
		{tariff.Normal, b.Units.Normal, b.NormalCost},
		{tariff.OffPeak, b.Units.OffPeak, b.OffPeakCost},
	}
	lines := make([]StatementLine, 0, len(energy)+3)
	for _, e := range energy {
		rate, err := table.Rate(e.band)
		if err != nil {
			return nil, err
		}
		line := amountLine("Energy ("+e.band.String()+")", e.cost)
		line.Units = money.Float(e.units)
		line.Rate = money.Float(rate)
		lines = append(lines, line)
	}
	lines = append(lines,
		amountLine("Fixed Charges", b.FixedCharge),
		amountLine("Meter Rent", b.MeterRent),
		amountLine(fmt.Sprintf("Electricity Duty (%s%%)", dutyRate.Shift(2).String()), b.Duty),
	)
	return lines, nil
}

// RenderStatement encodes the statement for b as indented JSON.
func RenderStatement(b MonthlyBill, lines []StatementLine, now time.Time) ([]byte, error) {
	doc := Statement{
		BillID:      b.ID,
		Month:       b.Period.Label(),
		Year:        b.Period.Year,
		Status:      b.Status,
		TotalUsage:  money.Float(b.TotalUsage),
		Lines:       lines,
		Payable:     money.Float(b.Payable),
		PayableText: money.Format(b.Payable),
		GeneratedAt: now.UTC(),
	}
	return json.MarshalIndent(doc, "", "  ")
}
