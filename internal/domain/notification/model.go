package notification

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DefaultHistoryLimit is how many notifications a store keeps.
const DefaultHistoryLimit = 50

var (
	// ErrNotFound is returned when no notification has the given id.
	ErrNotFound = errors.New("notification not found")
	// ErrUnknownReminder is returned when firing a reminder id that is not scheduled.
	ErrUnknownReminder = errors.New("unknown reminder")
	// ErrInvalidAmount is returned for bill predictions against a non-positive previous bill.
	ErrInvalidAmount = errors.New("previous amount must be positive")
)

// Kind drives the icon and badge on clients.
type Kind string

const (
	KindAlert   Kind = "alert"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
)

// Channel is the push channel a notification is delivered on.
type Channel string

const (
	ChannelAlerts Channel = "energy-alerts"
	ChannelTips   Channel = "energy-tips"
)

// Notification is one history entry.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Channel   Channel   `json:"channel"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	BigText   string    `json:"bigText,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Age renders the time since creation, e.g. "2 hours ago".
func (n Notification) Age(now time.Time) string {
	return humanize.RelTime(n.CreatedAt, now, "ago", "from now")
}

// Feed is the history with its unread count.
type Feed struct {
	Items  []Notification
	Unread int
}

// Store keeps the bounded, newest-first notification history.
type Store interface {
	// Save prepends n and drops the oldest entries past the store's limit.
	Save(ctx context.Context, n Notification) error
	List(ctx context.Context) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// Publisher pushes a notification to subscribed devices.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, n Notification) error
}

// Config holds the thresholds checked by the hourly job.
type Config struct {
	DailyUsageKWh decimal.Decimal
	PeakUsageKW   decimal.Decimal
	MonthlyBudget decimal.Decimal
	TipSeed       uint64
	Location      *time.Location
}
