package http

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/internal/domain/insight"
	"github.com/yanqian/smart-energy/internal/domain/notification"
	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/domain/usage"
	"github.com/yanqian/smart-energy/pkg/money"
)

type rateDTO struct {
	Band      tariff.Band        `json:"band"`
	Rate      float64            `json:"rate"`
	TimeRange string             `json:"timeRange"`
	Color     string             `json:"color"`
	Windows   []tariff.HourRange `json:"windows"`
}

func toRateDTO(r tariff.Rate) rateDTO {
	return rateDTO{
		Band:      r.Band,
		Rate:      r.PerKWh.InexactFloat64(),
		TimeRange: r.TimeRange,
		Color:     r.Color,
		Windows:   r.Windows,
	}
}

type currentTariffResponse struct {
	rateDTO
	Advice       string    `json:"advice"`
	NextOffPeak  time.Time `json:"nextOffPeak"`
	OffPeakStart string    `json:"offPeakStartsIn"`
}

type classifyResponse struct {
	Hour   int         `json:"hour"`
	Band   tariff.Band `json:"band"`
	Rate   float64     `json:"rate"`
	Advice string      `json:"advice"`
}

type costResponse struct {
	Band    tariff.Band `json:"band"`
	Usage   float64     `json:"usage"`
	Rate    float64     `json:"rate"`
	Cost    float64     `json:"cost"`
	Display string      `json:"display"`
}

type readingDTO struct {
	Hour      int         `json:"hour"`
	Timestamp time.Time   `json:"timestamp"`
	Usage     float64     `json:"usage"`
	Band      tariff.Band `json:"band"`
	Cost      float64     `json:"cost"`
}

func toReadingDTOs(readings []usage.EnergyReading) []readingDTO {
	out := make([]readingDTO, 0, len(readings))
	for _, r := range readings {
		out = append(out, readingDTO{
			Hour:      r.Hour,
			Timestamp: r.Timestamp,
			Usage:     money.Float(r.Usage),
			Band:      r.Band,
			Cost:      money.Float(r.Cost),
		})
	}
	return out
}

type summaryDTO struct {
	Date       string  `json:"date"`
	Peak       float64 `json:"peak"`
	Normal     float64 `json:"normal"`
	OffPeak    float64 `json:"offPeak"`
	TotalUsage float64 `json:"totalUsage"`
	TotalCost  float64 `json:"totalCost"`
}

func toSummaryDTO(s usage.DailySummary) summaryDTO {
	return summaryDTO{
		Date:       s.Date,
		Peak:       money.Float(s.Peak),
		Normal:     money.Float(s.Normal),
		OffPeak:    money.Float(s.OffPeak),
		TotalUsage: money.Float(s.TotalUsage),
		TotalCost:  money.Float(s.TotalCost),
	}
}

type liveResponse struct {
	At         time.Time   `json:"at"`
	PowerKW    float64     `json:"powerKw"`
	HourlyCost float64     `json:"hourlyCost"`
	Band       tariff.Band `json:"band"`
}

type todayResponse struct {
	Date            string       `json:"date"`
	Readings        []readingDTO `json:"readings"`
	TotalUsage      float64      `json:"totalUsage"`
	TotalCost       float64      `json:"totalCost"`
	UsageUpToNow    float64      `json:"usageUpToNow"`
	ProgressPercent int          `json:"progressPercent"`
}

type dayResponse struct {
	Readings []readingDTO `json:"readings"`
	Summary  summaryDTO   `json:"summary"`
}

type deviceDTO struct {
	Device     string  `json:"device"`
	Usage      float64 `json:"usage"`
	Cost       float64 `json:"cost"`
	Percentage int     `json:"percentage"`
}

type billDTO struct {
	ID          string         `json:"id"`
	Period      string         `json:"period"`
	Month       string         `json:"month"`
	Year        int            `json:"year"`
	Units       float64        `json:"units"`
	PeakKWh     float64        `json:"peakUnits"`
	NormalKWh   float64        `json:"normalUnits"`
	OffPeakKWh  float64        `json:"offPeakUnits"`
	PeakCost    float64        `json:"peakCost"`
	NormalCost  float64        `json:"normalCost"`
	OffPeakCost float64        `json:"offPeakCost"`
	EnergyCost  float64        `json:"energyCost"`
	FixedCharge float64        `json:"fixedCharge"`
	MeterRent   float64        `json:"meterRent"`
	Duty        float64        `json:"duty"`
	Amount      float64        `json:"amount"`
	AvgRate     float64        `json:"avgRate"`
	Status      billing.Status `json:"status"`
}

func toBillDTO(b billing.MonthlyBill) billDTO {
	return billDTO{
		ID:          b.ID,
		Period:      b.Period.String(),
		Month:       b.Period.Label(),
		Year:        b.Period.Year,
		Units:       money.Float(b.TotalUsage),
		PeakKWh:     money.Float(b.Units.Peak),
		NormalKWh:   money.Float(b.Units.Normal),
		OffPeakKWh:  money.Float(b.Units.OffPeak),
		PeakCost:    money.Float(b.PeakCost),
		NormalCost:  money.Float(b.NormalCost),
		OffPeakCost: money.Float(b.OffPeakCost),
		EnergyCost:  money.Float(b.TotalCost),
		FixedCharge: money.Float(b.FixedCharge),
		MeterRent:   money.Float(b.MeterRent),
		Duty:        money.Float(b.Duty),
		Amount:      money.Float(b.Payable),
		AvgRate:     money.Float(b.AvgRate()),
		Status:      b.Status,
	}
}

type billSummaryDTO struct {
	Bills          int     `json:"bills"`
	TotalPaid      float64 `json:"totalPaid"`
	AveragePayable float64 `json:"averagePayable"`
	TotalUnits     float64 `json:"totalUnits"`
}

type historyResponse struct {
	Bills   []billDTO      `json:"bills"`
	Summary billSummaryDTO `json:"summary"`
}

type billViewResponse struct {
	Bill  billDTO                 `json:"bill"`
	Lines []billing.StatementLine `json:"lines"`
}

func toBillView(v billing.BillView) billViewResponse {
	return billViewResponse{Bill: toBillDTO(v.Bill), Lines: v.Lines}
}

type quoteRequest struct {
	Peak    decimal.Decimal `json:"peak"`
	Normal  decimal.Decimal `json:"normal"`
	OffPeak decimal.Decimal `json:"offPeak"`
}

type statementResponse struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	ETag string `json:"etag"`
}

type insightDTO struct {
	ID          string           `json:"id"`
	Category    insight.Category `json:"category"`
	Priority    insight.Priority `json:"priority"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Savings     *float64         `json:"savings,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

func toInsightDTO(in insight.Insight) insightDTO {
	out := insightDTO{
		ID:          in.ID,
		Category:    in.Category,
		Priority:    in.Priority,
		Title:       in.Title,
		Description: in.Description,
		Timestamp:   in.Timestamp,
	}
	if in.Savings != nil {
		v := money.Float(*in.Savings)
		out.Savings = &v
	}
	return out
}

type notificationDTO struct {
	notification.Notification
	Age string `json:"age"`
}

type feedResponse struct {
	Items  []notificationDTO `json:"items"`
	Unread int               `json:"unread"`
}

func toFeedResponse(feed notification.Feed, now time.Time) feedResponse {
	items := make([]notificationDTO, 0, len(feed.Items))
	for _, n := range feed.Items {
		items = append(items, notificationDTO{Notification: n, Age: n.Age(now)})
	}
	return feedResponse{Items: items, Unread: feed.Unread}
}

type reminderDTO struct {
	ID      string               `json:"id"`
	Title   string               `json:"title"`
	Message string               `json:"message"`
	Kind    notification.Kind    `json:"kind"`
	Channel notification.Channel `json:"channel"`
	Spec    string               `json:"schedule"`
	NextAt  time.Time            `json:"nextAt"`
	In      string               `json:"in"`
}

func toReminderDTOs(upcoming []notification.Upcoming, now time.Time) []reminderDTO {
	out := make([]reminderDTO, 0, len(upcoming))
	for _, u := range upcoming {
		out = append(out, reminderDTO{
			ID:      u.Reminder.ID,
			Title:   u.Reminder.Title,
			Message: u.Reminder.Message,
			Kind:    u.Reminder.Kind,
			Channel: u.Reminder.Channel,
			Spec:    u.Reminder.Spec,
			NextAt:  u.At,
			In:      humanize.RelTime(u.At, now, "ago", "from now"),
		})
	}
	return out
}

type usageAlertRequest struct {
	UsageKWh     *decimal.Decimal `json:"usageKwh" binding:"required"`
	ThresholdKWh *decimal.Decimal `json:"thresholdKwh" binding:"required"`
}

type usageAlertResponse struct {
	Fired        bool                       `json:"fired"`
	Notification *notification.Notification `json:"notification,omitempty"`
}

type billPredictionRequest struct {
	Predicted *decimal.Decimal `json:"predicted" binding:"required"`
	Previous  *decimal.Decimal `json:"previous" binding:"required"`
}
