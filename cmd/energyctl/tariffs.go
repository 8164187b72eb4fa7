package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yanqian/smart-energy/pkg/money"
)

var tariffsCmd = &cobra.Command{
	Use:   "tariffs",
	Short: "Print the time-of-use tariff table",
	Args:  cobra.NoArgs,
	RunE:  runTariffs,
}

var classifyCmd = &cobra.Command{
	Use:   "classify <hour>",
	Short: "Show the band and advice for an hour of the day (0-23)",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(tariffsCmd, classifyCmd)
}

func runTariffs(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	w := newTable(cmd)
	fmt.Fprintln(w, "BAND\tRATE\tHOURS")
	for _, r := range e.table.Rates() {
		fmt.Fprintf(w, "%s\t%s%s/kWh\t%s\n", r.Band, money.Symbol, r.PerKWh.String(), r.TimeRange)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	current := e.table.Current(e.now())
	fmt.Fprintf(cmd.OutOrStdout(), "\nNow: %s (%s%s/kWh)\n", current.Band, money.Symbol, current.PerKWh.String())
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	hour, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("hour must be an integer: %w", err)
	}
	e, err := loadEnv()
	if err != nil {
		return err
	}
	band, err := e.table.ClassifyHour(hour)
	if err != nil {
		return err
	}
	rate, err := e.table.Rate(band)
	if err != nil {
		return err
	}
	advice, err := e.table.Advice(hour)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%02d:00 is %s (%s%s/kWh)\n", hour, band, money.Symbol, rate.String())
	fmt.Fprintln(out, advice)
	return nil
}
