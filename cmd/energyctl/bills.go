package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/pkg/money"
)

var (
	billsMonths int
	billsSeed   uint64

	quotePeak    string
	quoteNormal  string
	quoteOffPeak string
)

var billsCmd = &cobra.Command{
	Use:   "bills",
	Short: "Print the synthetic bill history",
	Args:  cobra.NoArgs,
	RunE:  runBills,
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a month from per-band units",
	Args:  cobra.NoArgs,
	RunE:  runQuote,
}

func init() {
	billsCmd.Flags().IntVar(&billsMonths, "months", 0, "number of months (default from config)")
	billsCmd.Flags().Uint64Var(&billsSeed, "seed", 0, "random seed (default from config)")
	quoteCmd.Flags().StringVar(&quotePeak, "peak", "0", "peak units in kWh")
	quoteCmd.Flags().StringVar(&quoteNormal, "normal", "0", "normal units in kWh")
	quoteCmd.Flags().StringVar(&quoteOffPeak, "offpeak", "0", "off-peak units in kWh")
	rootCmd.AddCommand(billsCmd, quoteCmd)
}

func runBills(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	months := billsMonths
	if months <= 0 {
		months = e.cfg.Billing.HistoryMonths
	}
	now := e.now()
	h, err := billing.GenerateHistory(now, months, billing.HistorySource(e.seed(cmd, billsSeed), now), e.table, e.charges())
	if err != nil {
		return err
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "PERIOD\tUNITS\tENERGY\tPAYABLE\tSTATUS")
	for _, b := range h.Bills() {
		fmt.Fprintf(w, "%s %d\t%s\t%s\t%s\t%s\n", b.Period.Label(), b.Period.Year,
			money.FormatKWh(b.TotalUsage), money.Format(b.TotalCost), money.Format(b.Payable), b.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	sum := h.Summary()
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d bills, total paid %s, average %s, %s\n",
		sum.Bills, money.Format(sum.TotalPaid), money.Format(sum.AveragePayable), money.FormatKWh(sum.TotalUnits))
	return nil
}

func parseUnits(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s must be a number: %w", name, err)
	}
	return d, nil
}

func runQuote(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	var units billing.UsageByBand
	if units.Peak, err = parseUnits("peak", quotePeak); err != nil {
		return err
	}
	if units.Normal, err = parseUnits("normal", quoteNormal); err != nil {
		return err
	}
	if units.OffPeak, err = parseUnits("offpeak", quoteOffPeak); err != nil {
		return err
	}

	charges := e.charges()
	bill, err := billing.AggregateMonthlyBill(billing.PeriodOf(e.now()), units, e.table, charges)
	if err != nil {
		return err
	}
	lines, err := billing.ChargeLines(bill, e.table, charges.DutyRate)
	if err != nil {
		return err
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "CHARGE\tUNITS\tAMOUNT")
	for _, l := range lines {
		qty := ""
		if l.Units > 0 {
			qty = fmt.Sprintf("%.2f", l.Units)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", l.Label, qty, l.Display)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nTotal payable: %s (avg %s%s/kWh)\n",
		money.Format(bill.Payable), money.Symbol, money.Round(bill.AvgRate()).StringFixed(2))
	return nil
}
