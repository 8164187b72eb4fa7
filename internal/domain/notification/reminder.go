package notification

import (
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/pkg/money"
)

// Reminder ids.
const (
	ReminderMorningPeak = "morning-peak"
	ReminderEveningPeak = "evening-peak"
	ReminderOffPeak     = "off-peak-start"
	ReminderDailyTip    = "daily-tip"
	ReminderBillPayment = "bill-payment"
)

// Tips rotate through the daily tip reminder.
var Tips = []string{
	"Set your AC to 25°C to save ₹180/month",
	"Use cold water for washing to reduce energy consumption",
	"Unplug electronics when not in use",
	"Use LED bulbs to save up to 80% on lighting costs",
	"Run dishwasher only with full loads during off-peak hours",
	"Regular AC maintenance can improve efficiency by 15%",
	"Use ceiling fans to feel 3°C cooler without lowering AC temperature",
}

// Reminder is a recurring notification on a five-field cron schedule.
type Reminder struct {
	ID       string
	Spec     string
	Kind     Kind
	Channel  Channel
	Title    string
	Message  string
	schedule cron.Schedule
}

// NewReminder parses spec and returns the reminder.
func NewReminder(id, spec string, kind Kind, channel Channel, title, message string) (Reminder, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return Reminder{}, fmt.Errorf("reminder %s: parse %q: %w", id, spec, err)
	}
	return Reminder{
		ID:       id,
		Spec:     spec,
		Kind:     kind,
		Channel:  channel,
		Title:    title,
		Message:  message,
		schedule: schedule,
	}, nil
}

// Next returns the first occurrence strictly after now, in now's location.
func (r Reminder) Next(now time.Time) time.Time {
	return r.schedule.Next(now)
}

// DefaultReminders builds the peak, off-peak, tip and bill reminders with
// prices taken from table.
func DefaultReminders(table *tariff.Table) ([]Reminder, error) {
	peak, err := table.Rate(tariff.Peak)
	if err != nil {
		return nil, err
	}
	off, err := table.Rate(tariff.OffPeak)
	if err != nil {
		return nil, err
	}
	defs := []struct {
		id, spec       string
		kind           Kind
		channel        Channel
		title, message string
	}{
		{ReminderMorningPeak, "30 5 * * *", KindWarning, ChannelAlerts, "Peak Hours Starting Soon",
			fmt.Sprintf("Peak pricing (%s%s/kWh) starts in 30 minutes. Complete high-power tasks now!", money.Symbol, peak)},
		{ReminderEveningPeak, "30 17 * * *", KindWarning, ChannelAlerts, "Evening Peak Hours Starting",
			"Peak pricing starts in 30 minutes. Consider postponing heavy appliance usage."},
		{ReminderOffPeak, "0 22 * * *", KindSuccess, ChannelTips, "Off-Peak Hours Started!",
			fmt.Sprintf("Great time to run washing machine, dishwasher, and charge devices at %s%s/kWh", money.Symbol, off)},
		{ReminderDailyTip, "0 9 * * *", KindInfo, ChannelTips, "Daily Energy Tip", ""},
		{ReminderBillPayment, "0 10 25 * *", KindAlert, ChannelAlerts, "Bill Payment Reminder",
			"Your energy bill is due soon. Pay online to avoid late fees."},
	}
	out := make([]Reminder, 0, len(defs))
	for _, d := range defs {
		r, err := NewReminder(d.id, d.spec, d.kind, d.channel, d.title, d.message)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Upcoming pairs a reminder with its next occurrence.
type Upcoming struct {
	Reminder Reminder
	At       time.Time
}

// NextOccurrences lists each reminder's next slot after now, soonest first.
func NextOccurrences(reminders []Reminder, now time.Time) []Upcoming {
	out := make([]Upcoming, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, Upcoming{Reminder: r, At: r.Next(now)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.Before(out[j].At)
	})
	return out
}
