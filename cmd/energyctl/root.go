package main

import (
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/infra/config"
	"github.com/yanqian/smart-energy/pkg/logger"
)

var (
	cfgFile  string
	logLevel string
	nowFunc  = time.Now
	log      = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "energyctl",
	Short: "Inspect the smart energy tariff, readings and bills",
	Long: `energyctl prints the tariff table, synthetic meter readings, bill history
and reminder schedule using the same configuration as the API server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logger.NewWith(logger.Options{Level: logLevel, Format: "text", Output: cmd.ErrOrStderr()})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFrom(cfgFile)
	}
	return config.Load()
}

// env is everything a command derives from configuration.
type env struct {
	cfg      *config.Config
	table    *tariff.Table
	location *time.Location
}

func loadEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.LoadLocation()
	if err != nil {
		return nil, err
	}
	table, err := tariff.NewDefaultTable(tariff.Config{
		PeakRate:    cfg.Tariff.PeakRate,
		NormalRate:  cfg.Tariff.NormalRate,
		OffPeakRate: cfg.Tariff.OffPeakRate,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("configuration loaded", "seed", cfg.Simulation.Seed, "location", loc.String(), "peakRate", cfg.Tariff.PeakRate.String())
	return &env{cfg: cfg, table: table, location: loc}, nil
}

func (e *env) now() time.Time {
	return nowFunc().In(e.location)
}

func (e *env) charges() billing.Charges {
	return billing.Charges{
		FixedCharge: e.cfg.Billing.FixedCharge,
		MeterRent:   e.cfg.Billing.MeterRent,
		DutyRate:    e.cfg.Billing.DutyRate,
	}
}

// seed returns the --seed flag when set, otherwise the configured seed.
func (e *env) seed(cmd *cobra.Command, flag uint64) uint64 {
	if cmd.Flags().Changed("seed") {
		return flag
	}
	return e.cfg.Simulation.Seed
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
}
