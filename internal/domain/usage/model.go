package usage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yanqian/smart-energy/internal/domain/tariff"
)

// EnergyReading is one hour of consumption.
type EnergyReading struct {
	// Hour is the slot 0-23 of the local day and decides the band.
	Hour      int
	Timestamp time.Time
	Usage     decimal.Decimal
	Band      tariff.Band
	Cost      decimal.Decimal
}

// DailySummary rolls a day of readings up per band.
type DailySummary struct {
	Date       string
	Peak       decimal.Decimal
	Normal     decimal.Decimal
	OffPeak    decimal.Decimal
	TotalUsage decimal.Decimal
	TotalCost  decimal.Decimal
}

// ByBand returns the subtotal for b.
func (s DailySummary) ByBand(b tariff.Band) decimal.Decimal {
	switch b {
	case tariff.Peak:
		return s.Peak
	case tariff.Normal:
		return s.Normal
	case tariff.OffPeak:
		return s.OffPeak
	}
	return decimal.Zero
}

// Live is the instantaneous meter view.
type Live struct {
	At         time.Time
	PowerKW    decimal.Decimal
	HourlyCost decimal.Decimal
	Band       tariff.Band
}

// Today summarizes the current calendar day.
type Today struct {
	Date            string
	Readings        []EnergyReading
	TotalUsage      decimal.Decimal
	TotalCost       decimal.Decimal
	UsageUpToNow    decimal.Decimal
	ProgressPercent int
}

// DeviceUsage is one appliance row of the monthly breakdown.
type DeviceUsage struct {
	Device     string
	Usage      decimal.Decimal
	Cost       decimal.Decimal
	Percentage int
}

// Day is a date with its readings and their summary.
type Day struct {
	Readings []EnergyReading
	Summary  DailySummary
}

// Config controls the synthetic meter.
type Config struct {
	Seed     uint64
	Location *time.Location
}
