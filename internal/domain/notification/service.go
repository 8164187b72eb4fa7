package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/domain/usage"
	apperrors "github.com/yanqian/smart-energy/pkg/errors"
	"github.com/yanqian/smart-energy/pkg/metrics"
	"github.com/yanqian/smart-energy/pkg/money"
)

// Service manages notification history, reminders and alert checks.
type Service interface {
	List(ctx context.Context) (Feed, error)
	Upcoming(ctx context.Context) ([]Upcoming, error)
	Reminders() []Reminder
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	FireReminder(ctx context.Context, id string) (Notification, error)
	UsageAlert(ctx context.Context, usageKWh, thresholdKWh decimal.Decimal) (*Notification, error)
	BillPrediction(ctx context.Context, predicted, previous decimal.Decimal) (Notification, error)
	EvaluateThresholds(ctx context.Context) ([]Notification, error)
}

// UsageReader supplies the live meter views for threshold checks.
type UsageReader interface {
	Current(ctx context.Context) (usage.Live, error)
	Today(ctx context.Context) (usage.Today, error)
}

// BillReader supplies the current bill for the budget check.
type BillReader interface {
	Current(ctx context.Context) (billing.BillView, error)
}

type service struct {
	cfg       Config
	store     Store
	publisher Publisher
	reminders []Reminder
	usage     UsageReader
	bills     BillReader
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewService wires the notification domain.
func NewService(cfg Config, table *tariff.Table, store Store, publisher Publisher, usageReader UsageReader, bills BillReader, logger *slog.Logger) (Service, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	reminders, err := DefaultReminders(table)
	if err != nil {
		return nil, err
	}
	return &service{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		reminders: reminders,
		usage:     usageReader,
		bills:     bills,
		logger:    logger.With("component", "notification.service"),
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

func (s *service) clock() time.Time {
	return s.now().In(s.cfg.Location)
}

func (s *service) List(ctx context.Context) (Feed, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return Feed{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load notifications", err)
	}
	feed := Feed{Items: items}
	for _, n := range items {
		if !n.Read {
			feed.Unread++
		}
	}
	return feed, nil
}

func (s *service) Upcoming(ctx context.Context) ([]Upcoming, error) {
	return NextOccurrences(s.reminders, s.clock()), nil
}

func (s *service) Reminders() []Reminder {
	out := make([]Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out
}

func (s *service) MarkRead(ctx context.Context, id string) error {
	return s.storeErr(s.store.MarkRead(ctx, id), "failed to mark notification read")
}

func (s *service) MarkAllRead(ctx context.Context) error {
	return s.storeErr(s.store.MarkAllRead(ctx), "failed to mark notifications read")
}

func (s *service) Remove(ctx context.Context, id string) error {
	return s.storeErr(s.store.Remove(ctx, id), "failed to remove notification")
}

func (s *service) Clear(ctx context.Context) error {
	return s.storeErr(s.store.Clear(ctx), "failed to clear notifications")
}

func (s *service) storeErr(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, "notification not found", err)
	default:
		return apperrors.Wrap(apperrors.CodeStorage, msg, err)
	}
}

// deliver stores n and pushes it. A push failure is logged and counted but
// the notification stays in history.
func (s *service) deliver(ctx context.Context, n Notification) (Notification, error) {
	n.ID = s.newID()
	n.CreatedAt = s.now().UTC()
	if err := s.store.Save(ctx, n); err != nil {
		return Notification{}, apperrors.Wrap(apperrors.CodeStorage, "failed to save notification", err)
	}
	metrics.NotificationsDeliveredTotal.WithLabelValues(string(n.Kind), string(n.Channel)).Inc()
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, n); err != nil {
			metrics.NotificationPushFailuresTotal.WithLabelValues(s.publisher.Name()).Inc()
			s.logger.Warn("notification push failed", "id", n.ID, "publisher", s.publisher.Name(), "error", err)
		}
	}
	s.logger.Info("notification delivered", "id", n.ID, "kind", n.Kind, "title", n.Title)
	return n, nil
}

func (s *service) FireReminder(ctx context.Context, id string) (Notification, error) {
	for _, r := range s.reminders {
		if r.ID != id {
			continue
		}
		msg := r.Message
		if r.ID == ReminderDailyTip {
			msg = s.tipFor(s.clock())
		}
		return s.deliver(ctx, Notification{
			Kind:    r.Kind,
			Channel: r.Channel,
			Title:   r.Title,
			Message: msg,
		})
	}
	return Notification{}, apperrors.Wrap(apperrors.CodeNotFound, "reminder "+id+" is not scheduled", ErrUnknownReminder)
}

// tipFor picks the tip of the day; the same day always yields the same tip.
func (s *service) tipFor(day time.Time) string {
	src := rand.New(rand.NewPCG(s.cfg.TipSeed, usage.DayStream(day)))
	return Tips[src.IntN(len(Tips))]
}

func (s *service) UsageAlert(ctx context.Context, usageKWh, thresholdKWh decimal.Decimal) (*Notification, error) {
	if usageKWh.IsNegative() || thresholdKWh.IsNegative() {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "usage and threshold must not be negative", tariff.ErrInvalidUsage)
	}
	if !usageKWh.GreaterThan(thresholdKWh) {
		return nil, nil
	}
	n, err := s.deliver(ctx, UsageAlertNotification(usageKWh, thresholdKWh))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *service) BillPrediction(ctx context.Context, predicted, previous decimal.Decimal) (Notification, error) {
	n, err := BillPredictionNotification(predicted, previous)
	if err != nil {
		return Notification{}, apperrors.Wrap(apperrors.CodeInvalidInput, "previous bill amount must be positive", err)
	}
	return s.deliver(ctx, n)
}

// EvaluateThresholds runs the hourly checks: today's usage against the
// daily limit, live load during peak against the peak limit and the current
// bill against the monthly budget. A zero limit disables its check.
func (s *service) EvaluateThresholds(ctx context.Context) ([]Notification, error) {
	var fired []Notification

	if s.cfg.DailyUsageKWh.IsPositive() {
		today, err := s.usage.Today(ctx)
		if err != nil {
			return fired, err
		}
		n, err := s.UsageAlert(ctx, today.UsageUpToNow, s.cfg.DailyUsageKWh)
		if err != nil {
			return fired, err
		}
		if n != nil {
			fired = append(fired, *n)
		}
	}

	if s.cfg.PeakUsageKW.IsPositive() {
		live, err := s.usage.Current(ctx)
		if err != nil {
			return fired, err
		}
		if live.Band == tariff.Peak && live.PowerKW.GreaterThan(s.cfg.PeakUsageKW) {
			n, err := s.deliver(ctx, Notification{
				Kind:    KindWarning,
				Channel: ChannelAlerts,
				Title:   "High Load During Peak Hours",
				Message: fmt.Sprintf("Drawing %s kW during peak pricing (%s/hour). Consider switching off heavy appliances.",
					live.PowerKW.StringFixed(2), money.Format(live.HourlyCost)),
			})
			if err != nil {
				return fired, err
			}
			fired = append(fired, n)
		}
	}

	if s.cfg.MonthlyBudget.IsPositive() {
		view, err := s.bills.Current(ctx)
		if err != nil {
			return fired, err
		}
		if view.Bill.Payable.GreaterThan(s.cfg.MonthlyBudget) {
			n, err := s.deliver(ctx, Notification{
				Kind:    KindAlert,
				Channel: ChannelAlerts,
				Title:   "Monthly Budget Exceeded",
				Message: fmt.Sprintf("This month's bill (%s) is over your budget of %s.",
					money.FormatWhole(view.Bill.Payable), money.FormatWhole(s.cfg.MonthlyBudget)),
			})
			if err != nil {
				return fired, err
			}
			fired = append(fired, n)
		}
	}
	return fired, nil
}

// UsageAlertNotification builds the high usage alert.
func UsageAlertNotification(usageKWh, thresholdKWh decimal.Decimal) Notification {
	return Notification{
		Kind:    KindAlert,
		Channel: ChannelAlerts,
		Title:   "High Energy Usage Alert",
		Message: fmt.Sprintf("Current usage (%s kWh) exceeds your threshold (%s kWh)",
			usageKWh.RoundBank(1).StringFixed(1), thresholdKWh.String()),
		BigText: "Your energy usage is higher than normal. Check if any appliances are running unnecessarily.",
	}
}

// BillPredictionNotification builds the bill trend notification with the
// signed percent change against previous.
func BillPredictionNotification(predicted, previous decimal.Decimal) (Notification, error) {
	if !previous.IsPositive() {
		return Notification{}, fmt.Errorf("%w: got %s", ErrInvalidAmount, previous)
	}
	change := predicted.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
	increase := predicted.GreaterThan(previous)
	sign := ""
	kind := KindSuccess
	bigText := "Great job! Your energy usage is improving compared to last month."
	if increase {
		sign = "+"
		kind = KindWarning
		bigText = "Your bill is trending higher. Check our recommendations to reduce consumption."
	}
	return Notification{
		Kind:    kind,
		Channel: ChannelTips,
		Title:   "Monthly Bill Prediction",
		Message: fmt.Sprintf("Predicted bill: %s (%s%s%% vs last month)",
			money.FormatWhole(predicted), sign, change.RoundBank(1).StringFixed(1)),
		BigText: bigText,
	}, nil
}
