package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/smart-energy/internal/domain/notification"
	"github.com/yanqian/smart-energy/internal/domain/tariff"
)

type stubNotifier struct {
	reminders []notification.Reminder
	fired     []string
	checks    int
	err       error
}

func (s *stubNotifier) Reminders() []notification.Reminder { return s.reminders }

func (s *stubNotifier) FireReminder(_ context.Context, id string) (notification.Notification, error) {
	s.fired = append(s.fired, id)
	return notification.Notification{ID: id}, s.err
}

func (s *stubNotifier) EvaluateThresholds(context.Context) ([]notification.Notification, error) {
	s.checks++
	return nil, s.err
}

func newStub(t *testing.T) *stubNotifier {
	t.Helper()
	reminders, err := notification.DefaultReminders(tariff.MustDefaultTable())
	require.NoError(t, err)
	return &stubNotifier{reminders: reminders}
}

func TestNewRegistersConfiguredJobs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := New(Config{Reminders: true, Thresholds: true, Location: time.UTC}, newStub(t), logger)
	require.NoError(t, err)
	require.Equal(t, []string{
		notification.ReminderMorningPeak,
		notification.ReminderEveningPeak,
		notification.ReminderOffPeak,
		notification.ReminderDailyTip,
		notification.ReminderBillPayment,
		ThresholdJob,
	}, s.Jobs())

	s, err = New(Config{Thresholds: true}, newStub(t), logger)
	require.NoError(t, err)
	require.Equal(t, []string{ThresholdJob}, s.Jobs())
}

func TestNewRejectsBadThresholdSpec(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := New(Config{Thresholds: true, ThresholdSpec: "every hour"}, newStub(t), logger)
	require.Error(t, err)
}

func TestRunJobInvokesNotifier(t *testing.T) {
	stub := newStub(t)
	s, err := New(Config{}, stub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	s.runJob(notification.ReminderDailyTip, func(ctx context.Context) error {
		_, err := stub.FireReminder(ctx, notification.ReminderDailyTip)
		return err
	})
	require.Equal(t, []string{notification.ReminderDailyTip}, stub.fired)

	stub.err = errors.New("store down")
	s.runJob(ThresholdJob, func(ctx context.Context) error {
		_, err := stub.EvaluateThresholds(ctx)
		return err
	})
	require.Equal(t, 1, stub.checks)
}

func TestRunStopsWithContext(t *testing.T) {
	s, err := New(Config{}, newStub(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
