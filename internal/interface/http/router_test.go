package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/internal/domain/insight"
	"github.com/yanqian/smart-energy/internal/domain/notification"
	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/domain/usage"
	"github.com/yanqian/smart-energy/internal/infra/config"
	apperrors "github.com/yanqian/smart-energy/pkg/errors"
)

func TestRouter_Tariffs(t *testing.T) {
	server := newRouterUnderTest(t, services{})

	rec := performRequest(server, http.MethodGet, "/api/v1/tariffs", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rates []rateDTO `json:"rates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rates, 3)
	require.Equal(t, tariff.Peak, body.Rates[0].Band)
	require.Equal(t, 9.0, body.Rates[0].Rate)
	require.Equal(t, 5.5, body.Rates[1].Rate)
	require.Equal(t, 3.5, body.Rates[2].Rate)
}

func TestRouter_ClassifyHour(t *testing.T) {
	server := newRouterUnderTest(t, services{})

	rec := performRequest(server, http.MethodGet, "/api/v1/tariffs/classify?hour=18", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got classifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, tariff.Peak, got.Band)
	require.Equal(t, 9.0, got.Rate)

	rec = performRequest(server, http.MethodGet, "/api/v1/tariffs/classify?hour=24", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_hour", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodGet, "/api/v1/tariffs/classify?hour=noon", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_Cost(t *testing.T) {
	server := newRouterUnderTest(t, services{})

	rec := performRequest(server, http.MethodGet, "/api/v1/tariffs/cost?usage=10&band=peak", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got costResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 90.0, got.Cost)
	require.Equal(t, "₹90.00", got.Display)

	rec = performRequest(server, http.MethodGet, "/api/v1/tariffs/cost?usage=-1&band=peak", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/tariffs/cost?usage=1&band=shoulder", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_DailyUsageInvalidDate(t *testing.T) {
	svc := &stubUsage{
		dailyFn: func(ctx context.Context, date string) (usage.Day, error) {
			require.Equal(t, "2024-13-01", date)
			return usage.Day{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date must be YYYY-MM-DD", nil)
		},
	}
	server := newRouterUnderTest(t, services{usage: svc})

	rec := performRequest(server, http.MethodGet, "/api/v1/usage/daily?date=2024-13-01", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "YYYY-MM-DD")
}

func TestRouter_DailyUsageRoundsForPresentation(t *testing.T) {
	ts := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	svc := &stubUsage{
		dailyFn: func(ctx context.Context, date string) (usage.Day, error) {
			reading := usage.EnergyReading{
				Timestamp: ts,
				Usage:     decimal.RequireFromString("3.125"),
				Band:      tariff.Peak,
				Cost:      decimal.RequireFromString("28.125"),
			}
			return usage.Day{
				Readings: []usage.EnergyReading{reading},
				Summary:  usage.DailySummary{Date: "2024-03-15", Peak: reading.Usage, TotalUsage: reading.Usage, TotalCost: reading.Cost},
			}, nil
		},
	}
	server := newRouterUnderTest(t, services{usage: svc})

	rec := performRequest(server, http.MethodGet, "/api/v1/usage/daily?date=2024-03-15", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got dayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Readings, 1)
	require.Equal(t, 3.12, got.Readings[0].Usage)
	require.Equal(t, 28.12, got.Readings[0].Cost)
	require.Equal(t, "2024-03-15", got.Summary.Date)
}

func TestRouter_InternalFailuresAreServerErrors(t *testing.T) {
	svc := &stubBilling{
		historyFn: func(ctx context.Context) (billing.HistoryView, error) {
			return billing.HistoryView{}, apperrors.Wrap(apperrors.CodeInternal, "failed to generate billing history", errors.New("boom"))
		},
	}
	server := newRouterUnderTest(t, services{billing: svc})

	rec := performRequest(server, http.MethodGet, "/api/v1/bills", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "billing_failed", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_BillsAndQuote(t *testing.T) {
	table := tariff.MustDefaultTable()
	units := billing.UsageByBand{
		Peak:    decimal.NewFromInt(200),
		Normal:  decimal.NewFromInt(250),
		OffPeak: decimal.NewFromInt(350),
	}
	bill, err := billing.AggregateMonthlyBill(billing.Period{Year: 2024, Month: time.March}, units, table, billing.DefaultCharges())
	require.NoError(t, err)
	bill.Status = billing.StatusCurrent
	lines, err := billing.ChargeLines(bill, table, billing.DefaultCharges().DutyRate)
	require.NoError(t, err)

	svc := &stubBilling{
		historyFn: func(ctx context.Context) (billing.HistoryView, error) {
			return billing.HistoryView{
				Bills:   []billing.MonthlyBill{bill},
				Summary: billing.Summary{Bills: 1, TotalPaid: bill.Payable, AveragePayable: bill.Payable, TotalUnits: bill.TotalUsage},
			}, nil
		},
		quoteFn: func(ctx context.Context, got billing.UsageByBand) (billing.BillView, error) {
			require.True(t, got.Peak.Equal(units.Peak))
			require.True(t, got.Normal.Equal(units.Normal))
			require.True(t, got.OffPeak.Equal(units.OffPeak))
			return billing.BillView{Bill: bill, Lines: lines}, nil
		},
	}
	server := newRouterUnderTest(t, services{billing: svc})

	rec := performRequest(server, http.MethodGet, "/api/v1/bills", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Bills, 1)
	require.Equal(t, "bill-2024-03", history.Bills[0].ID)
	require.Equal(t, "Mar", history.Bills[0].Month)
	require.Equal(t, 4839.0, history.Bills[0].Amount)
	require.Equal(t, 4400.0, history.Bills[0].EnergyCost)
	require.Equal(t, 264.0, history.Bills[0].Duty)
	require.Equal(t, billing.StatusCurrent, history.Bills[0].Status)
	require.Equal(t, 800.0, history.Summary.TotalUnits)

	rec = performRequest(server, http.MethodPost, "/api/v1/bills/quote", `{"peak":200,"normal":"250","offPeak":350}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var quote billViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	require.Equal(t, 4839.0, quote.Bill.Amount)
	require.NotEmpty(t, quote.Lines)

	rec = performRequest(server, http.MethodPost, "/api/v1/bills/quote", `{"peak":"lots"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ExportStatement(t *testing.T) {
	svc := &stubBilling{
		exportFn: func(ctx context.Context, year, month int) (billing.StoredStatement, error) {
			if month == 13 {
				return billing.StoredStatement{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid period", billing.ErrInvalidPeriod)
			}
			require.Equal(t, 2024, year)
			return billing.StoredStatement{Key: "statements/2024/06/bill-2024-06.json", Size: 512, ETag: "abc"}, nil
		},
		statementFn: func(ctx context.Context, year, month int) ([]byte, error) {
			return nil, apperrors.Wrap(apperrors.CodeNotFound, "statement has not been exported", billing.ErrStatementNotFound)
		},
	}
	server := newRouterUnderTest(t, services{billing: svc})

	rec := performRequest(server, http.MethodPost, "/api/v1/bills/2024/6/statement", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var stored statementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	require.Equal(t, "statements/2024/06/bill-2024-06.json", stored.Key)

	rec = performRequest(server, http.MethodPost, "/api/v1/bills/2024/13/statement", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/bills/2024/june/statement", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/bills/2024/6/statement", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RetriesTransientExportFailure(t *testing.T) {
	calls := 0
	svc := &stubBilling{
		exportFn: func(ctx context.Context, year, month int) (billing.StoredStatement, error) {
			calls++
			if calls == 1 {
				return billing.StoredStatement{}, apperrors.Wrap(apperrors.CodeExport, "failed to store statement", errors.New("connection reset"))
			}
			return billing.StoredStatement{Key: "statements/2024/06/bill-2024-06.json"}, nil
		},
	}
	server := newRouterUnderTest(t, services{billing: svc}, func(cfg *config.Config) {
		cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	})

	rec := performRequest(server, http.MethodPost, "/api/v1/bills/2024/6/statement", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 2, calls)
	require.Equal(t, "2", rec.Header().Get("X-Attempts"))
}

func TestRouter_ExcludedPathIsNotReplayed(t *testing.T) {
	calls := 0
	svc := &stubBilling{
		exportFn: func(ctx context.Context, year, month int) (billing.StoredStatement, error) {
			calls++
			return billing.StoredStatement{}, apperrors.Wrap(apperrors.CodeExport, "failed to store statement", errors.New("connection reset"))
		},
	}
	server := newRouterUnderTest(t, services{billing: svc}, func(cfg *config.Config) {
		cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond, Exclude: []string{"/statement"}}
	})

	rec := performRequest(server, http.MethodPost, "/api/v1/bills/2024/6/statement", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, 1, calls)
	require.Empty(t, rec.Header().Get("X-Attempts"))
}

func TestRouter_Insights(t *testing.T) {
	savings := decimal.RequireFromString("44.004")
	svc := &stubInsights{items: []insight.Insight{{
		ID:       "laundry-time",
		Category: insight.CategoryRecommendation,
		Priority: insight.PriorityMedium,
		Title:    "Best Time for Laundry",
		Savings:  &savings,
	}}}
	server := newRouterUnderTest(t, services{insights: svc})

	rec := performRequest(server, http.MethodGet, "/api/v1/insights", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Insights []insightDTO `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Insights, 1)
	require.NotNil(t, body.Insights[0].Savings)
	require.Equal(t, 44.0, *body.Insights[0].Savings)
}

func TestRouter_Notifications(t *testing.T) {
	created := time.Now().Add(-2 * time.Hour)
	svc := &stubNotifications{
		feed: notification.Feed{
			Items:  []notification.Notification{{ID: "n1", Kind: notification.KindAlert, Title: "High Energy Usage Alert", CreatedAt: created}},
			Unread: 1,
		},
	}
	server := newRouterUnderTest(t, services{notifications: svc})

	rec := performRequest(server, http.MethodGet, "/api/v1/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var feed feedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	require.Equal(t, 1, feed.Unread)
	require.Equal(t, "n1", feed.Items[0].ID)
	require.Equal(t, "2 hours ago", feed.Items[0].Age)

	rec = performRequest(server, http.MethodPost, "/api/v1/notifications/n1/read", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"n1"}, svc.read)

	rec = performRequest(server, http.MethodPost, "/api/v1/notifications/missing/read", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/notifications/read-all", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, svc.allRead)

	rec = performRequest(server, http.MethodDelete, "/api/v1/notifications/n1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = performRequest(server, http.MethodDelete, "/api/v1/notifications", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, svc.cleared)
}

func TestRouter_UsageAlert(t *testing.T) {
	svc := &stubNotifications{}
	server := newRouterUnderTest(t, services{notifications: svc})

	rec := performRequest(server, http.MethodPost, "/api/v1/notifications/usage-alert", `{"usageKwh":12}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/notifications/usage-alert", `{"usageKwh":12,"thresholdKwh":15}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var quiet usageAlertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quiet))
	require.False(t, quiet.Fired)

	rec = performRequest(server, http.MethodPost, "/api/v1/notifications/usage-alert", `{"usageKwh":"15.5","thresholdKwh":15}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var fired usageAlertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fired))
	require.True(t, fired.Fired)
	require.Equal(t, "Current usage (15.5 kWh) exceeds your threshold (15 kWh)", fired.Notification.Message)
}

func TestRouter_BillPrediction(t *testing.T) {
	server := newRouterUnderTest(t, services{notifications: &stubNotifications{}})

	rec := performRequest(server, http.MethodPost, "/api/v1/notifications/bill-prediction", `{"predicted":2847,"previous":2650}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var n notification.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	require.Equal(t, "Predicted bill: ₹2,847 (+7.4% vs last month)", n.Message)

	rec = performRequest(server, http.MethodPost, "/api/v1/notifications/bill-prediction", `{"predicted":2847,"previous":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	server := newRouterUnderTest(t, services{})

	rec := performRequest(server, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	performRequest(server, http.MethodGet, "/api/v1/tariffs", "")
	rec = performRequest(server, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `smart_energy_http_requests_total{`)
	require.Contains(t, rec.Body.String(), `route="/api/v1/tariffs"`)
}

func TestRouter_RateLimit(t *testing.T) {
	server := newRouterUnderTest(t, services{}, func(cfg *config.Config) {
		cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	})

	rec := performRequest(server, http.MethodGet, "/api/v1/tariffs", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/tariffs", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, services{}, func(cfg *config.Config) {
		cfg.HTTP.AllowedOrigins = []string{"http://localhost:5173"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/notifications", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	require.Equal(t, "X-Attempts, Retry-After", rec.Header().Get("Access-Control-Expose-Headers"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/notifications", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func performRequest(server *http.Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

type services struct {
	usage         usage.Service
	billing       billing.Service
	insights      insight.Service
	notifications notification.Service
}

func newRouterUnderTest(t *testing.T, svc services, opts ...func(cfg *config.Config)) *http.Server {
	t.Helper()
	if svc.usage == nil {
		svc.usage = &stubUsage{}
	}
	if svc.billing == nil {
		svc.billing = &stubBilling{}
	}
	if svc.insights == nil {
		svc.insights = &stubInsights{}
	}
	if svc.notifications == nil {
		svc.notifications = &stubNotifications{}
	}
	handler := NewHandler(tariff.MustDefaultTable(), svc.usage, svc.billing, svc.insights, svc.notifications, time.UTC, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubUsage struct {
	dailyFn func(ctx context.Context, date string) (usage.Day, error)
}

func (s *stubUsage) Current(context.Context) (usage.Live, error) { return usage.Live{}, nil }

func (s *stubUsage) Today(context.Context) (usage.Today, error) { return usage.Today{}, nil }

func (s *stubUsage) Daily(ctx context.Context, date string) (usage.Day, error) {
	if s.dailyFn != nil {
		return s.dailyFn(ctx, date)
	}
	return usage.Day{}, nil
}

func (s *stubUsage) Weekly(context.Context) ([]usage.DailySummary, error) { return nil, nil }

func (s *stubUsage) Devices(context.Context) ([]usage.DeviceUsage, error) { return nil, nil }

type stubBilling struct {
	historyFn   func(ctx context.Context) (billing.HistoryView, error)
	quoteFn     func(ctx context.Context, units billing.UsageByBand) (billing.BillView, error)
	exportFn    func(ctx context.Context, year, month int) (billing.StoredStatement, error)
	statementFn func(ctx context.Context, year, month int) ([]byte, error)
}

func (s *stubBilling) History(ctx context.Context) (billing.HistoryView, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx)
	}
	return billing.HistoryView{}, nil
}

func (s *stubBilling) Current(context.Context) (billing.BillView, error) {
	return billing.BillView{}, nil
}

func (s *stubBilling) Quote(ctx context.Context, units billing.UsageByBand) (billing.BillView, error) {
	if s.quoteFn != nil {
		return s.quoteFn(ctx, units)
	}
	return billing.BillView{}, nil
}

func (s *stubBilling) ExportStatement(ctx context.Context, year, month int) (billing.StoredStatement, error) {
	if s.exportFn != nil {
		return s.exportFn(ctx, year, month)
	}
	return billing.StoredStatement{}, nil
}

func (s *stubBilling) Statement(ctx context.Context, year, month int) ([]byte, error) {
	if s.statementFn != nil {
		return s.statementFn(ctx, year, month)
	}
	return nil, nil
}

type stubInsights struct {
	items []insight.Insight
}

func (s *stubInsights) List(context.Context) ([]insight.Insight, error) { return s.items, nil }

type stubNotifications struct {
	feed    notification.Feed
	read    []string
	allRead bool
	cleared bool
}

func (s *stubNotifications) List(context.Context) (notification.Feed, error) { return s.feed, nil }

func (s *stubNotifications) Upcoming(context.Context) ([]notification.Upcoming, error) {
	return nil, nil
}

func (s *stubNotifications) Reminders() []notification.Reminder { return nil }

func (s *stubNotifications) MarkRead(_ context.Context, id string) error {
	if id == "missing" {
		return apperrors.Wrap(apperrors.CodeNotFound, "notification not found", notification.ErrNotFound)
	}
	s.read = append(s.read, id)
	return nil
}

func (s *stubNotifications) MarkAllRead(context.Context) error {
	s.allRead = true
	return nil
}

func (s *stubNotifications) Remove(context.Context, string) error { return nil }

func (s *stubNotifications) Clear(context.Context) error {
	s.cleared = true
	return nil
}

func (s *stubNotifications) FireReminder(context.Context, string) (notification.Notification, error) {
	return notification.Notification{}, nil
}

func (s *stubNotifications) UsageAlert(_ context.Context, usageKWh, thresholdKWh decimal.Decimal) (*notification.Notification, error) {
	if !usageKWh.GreaterThan(thresholdKWh) {
		return nil, nil
	}
	n := notification.UsageAlertNotification(usageKWh, thresholdKWh)
	return &n, nil
}

func (s *stubNotifications) BillPrediction(_ context.Context, predicted, previous decimal.Decimal) (notification.Notification, error) {
	n, err := notification.BillPredictionNotification(predicted, previous)
	if err != nil {
		return notification.Notification{}, apperrors.Wrap(apperrors.CodeInvalidInput, "previous bill amount must be positive", err)
	}
	return n, nil
}

func (s *stubNotifications) EvaluateThresholds(context.Context) ([]notification.Notification, error) {
	return nil, nil
}
