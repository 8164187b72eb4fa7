package insight

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups insights on the dashboard.
type Category string

const (
	CategoryPrediction     Category = "prediction"
	CategoryRecommendation Category = "recommendation"
	CategoryAlert          Category = "alert"
)

// Priority orders insights within a category.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Insight is one computed hint shown to the user.
type Insight struct {
	ID          string
	Category    Category
	Priority    Priority
	Title       string
	Description string
	Savings     *decimal.Decimal
	Timestamp   time.Time
}

// Config tunes the recommendation figures.
type Config struct {
	LaundryKWhPerMonth decimal.Decimal
	ACSavings          decimal.Decimal
	SpikeFactor        decimal.Decimal
	IncreaseAlertPct   decimal.Decimal
}

// DefaultConfig returns the dashboard defaults.
func DefaultConfig() Config {
	return Config{
		LaundryKWhPerMonth: decimal.NewFromInt(8),
		ACSavings:          decimal.NewFromInt(180),
		SpikeFactor:        decimal.RequireFromString("1.5"),
		IncreaseAlertPct:   decimal.NewFromInt(10),
	}
}
