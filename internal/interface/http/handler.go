package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/internal/domain/insight"
	"github.com/yanqian/smart-energy/internal/domain/notification"
	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/domain/usage"
	"github.com/yanqian/smart-energy/pkg/money"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	table      *tariff.Table
	usageSvc   usage.Service
	billingSvc billing.Service
	insightSvc insight.Service
	notifySvc  notification.Service
	location   *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// NewHandler constructs the root HTTP handler.
func NewHandler(table *tariff.Table, usageSvc usage.Service, billingSvc billing.Service, insightSvc insight.Service, notifySvc notification.Service, location *time.Location, logger *slog.Logger) *Handler {
	if location == nil {
		location = time.Local
	}
	return &Handler{
		table:      table,
		usageSvc:   usageSvc,
		billingSvc: billingSvc,
		insightSvc: insightSvc,
		notifySvc:  notifySvc,
		location:   location,
		logger:     logger.With("component", "http.handler"),
		now:        time.Now,
	}
}

func (h *Handler) clock() time.Time {
	return h.now().In(h.location)
}

// Tariffs lists the tariff table.
func (h *Handler) Tariffs(c *gin.Context) {
	rates := h.table.Rates()
	out := make([]rateDTO, 0, len(rates))
	for _, r := range rates {
		out = append(out, toRateDTO(r))
	}
	c.JSON(http.StatusOK, gin.H{"rates": out})
}

// CurrentTariff returns the band active now with usage advice.
func (h *Handler) CurrentTariff(c *gin.Context) {
	now := h.clock()
	advice, err := h.table.Advice(now.Hour())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "tariff_failed", errMessage(err), err))
		return
	}
	next := h.table.NextStart(now, tariff.OffPeak)
	resp := currentTariffResponse{
		rateDTO:     toRateDTO(h.table.Current(now)),
		Advice:      advice,
		NextOffPeak: next,
	}
	if !next.IsZero() {
		resp.OffPeakStart = humanize.RelTime(next, now, "ago", "from now")
	}
	c.JSON(http.StatusOK, resp)
}

// ClassifyHour maps ?hour=H to its band.
func (h *Handler) ClassifyHour(c *gin.Context) {
	hour, err := strconv.Atoi(c.Query("hour"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "hour must be an integer", err))
		return
	}
	band, err := h.table.ClassifyHour(hour)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_hour", errMessage(err), err))
		return
	}
	rate, _ := h.table.Rate(band)
	advice, _ := h.table.Advice(hour)
	c.JSON(http.StatusOK, classifyResponse{Hour: hour, Band: band, Rate: rate.InexactFloat64(), Advice: advice})
}

// Cost prices ?usage=U at ?band=B.
func (h *Handler) Cost(c *gin.Context) {
	qty, err := decimal.NewFromString(c.Query("usage"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "usage must be a number", err))
		return
	}
	band := tariff.Band(c.Query("band"))
	cost, err := h.table.Cost(qty, band)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	rate, _ := h.table.Rate(band)
	c.JSON(http.StatusOK, costResponse{
		Band:    band,
		Usage:   money.Float(qty),
		Rate:    rate.InexactFloat64(),
		Cost:    money.Float(cost),
		Display: money.Format(cost),
	})
}

// CurrentUsage returns the live meter view.
func (h *Handler) CurrentUsage(c *gin.Context) {
	live, err := h.usageSvc.Current(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, "usage_failed"))
		return
	}
	c.JSON(http.StatusOK, liveResponse{
		At:         live.At,
		PowerKW:    money.Float(live.PowerKW),
		HourlyCost: money.Float(live.HourlyCost),
		Band:       live.Band,
	})
}

// TodayUsage returns today's readings and progress.
func (h *Handler) TodayUsage(c *gin.Context) {
	today, err := h.usageSvc.Today(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, "usage_failed"))
		return
	}
	c.JSON(http.StatusOK, todayResponse{
		Date:            today.Date,
		Readings:        toReadingDTOs(today.Readings),
		TotalUsage:      money.Float(today.TotalUsage),
		TotalCost:       money.Float(today.TotalCost),
		UsageUpToNow:    money.Float(today.UsageUpToNow),
		ProgressPercent: today.ProgressPercent,
	})
}

// DailyUsage returns readings and a summary for ?date=YYYY-MM-DD, default today.
func (h *Handler) DailyUsage(c *gin.Context) {
	day, err := h.usageSvc.Daily(c.Request.Context(), c.Query("date"))
	if err != nil {
		abortWithError(c, fromDomain(err, "usage_failed"))
		return
	}
	c.JSON(http.StatusOK, dayResponse{Readings: toReadingDTOs(day.Readings), Summary: toSummaryDTO(day.Summary)})
}

// WeeklyUsage returns the last seven daily summaries.
func (h *Handler) WeeklyUsage(c *gin.Context) {
	days, err := h.usageSvc.Weekly(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, "usage_failed"))
		return
	}
	out := make([]summaryDTO, 0, len(days))
	for _, d := range days {
		out = append(out, toSummaryDTO(d))
	}
	c.JSON(http.StatusOK, gin.H{"days": out})
}

// Devices returns the appliance breakdown.
func (h *Handler) Devices(c *gin.Context) {
	devices, err := h.usageSvc.Devices(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, "usage_failed"))
		return
	}
	out := make([]deviceDTO, 0, len(devices))
	for _, d := range devices {
		out = append(out, deviceDTO{
			Device:     d.Device,
			Usage:      money.Float(d.Usage),
			Cost:       money.Float(d.Cost),
			Percentage: d.Percentage,
		})
	}
	c.JSON(http.StatusOK, gin.H{"devices": out})
}

// Bills returns the bill history with its summary.
func (h *Handler) Bills(c *gin.Context) {
	view, err := h.billingSvc.History(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, "billing_failed"))
		return
	}
	bills := make([]billDTO, 0, len(view.Bills))
	for _, b := range view.Bills {
		bills = append(bills, toBillDTO(b))
	}
	c.JSON(http.StatusOK, historyResponse{
		Bills: bills,
		Summary: billSummaryDTO{
			Bills:          view.Summary.Bills,
			TotalPaid:      money.Float(view.Summary.TotalPaid),
			AveragePayable: money.Float(view.Summary.AveragePayable),
			TotalUnits:     money.Float(view.Summary.TotalUnits),
		},
	})
}

// CurrentBill returns this month's bill with charge lines.
func (h *Handler) CurrentBill(c *gin.Context) {
	view, err := h.billingSvc.Current(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, "billing_failed"))
		return
	}
	c.JSON(http.StatusOK, toBillView(view))
}

// QuoteBill aggregates a bill from posted per-band units.
func (h *Handler) QuoteBill(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	view, err := h.billingSvc.Quote(c.Request.Context(), billing.UsageByBand{
		Peak:    req.Peak,
		Normal:  req.Normal,
		OffPeak: req.OffPeak,
	})
	if err != nil {
		abortWithError(c, fromDomain(err, "billing_failed"))
		return
	}
	c.JSON(http.StatusOK, toBillView(view))
}

func periodParams(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "year must be an integer", err))
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "month must be an integer", err))
		return 0, 0, false
	}
	return year, month, true
}

// ExportStatement renders a bill statement and stores it.
func (h *Handler) ExportStatement(c *gin.Context) {
	year, month, ok := periodParams(c)
	if !ok {
		return
	}
	stored, err := h.billingSvc.ExportStatement(c.Request.Context(), year, month)
	if err != nil {
		abortWithError(c, fromDomain(err, "export_failed"))
		return
	}
	c.JSON(http.StatusCreated, statementResponse{Key: stored.Key, Size: stored.Size, ETag: stored.ETag})
}

// Statement returns a previously exported statement document.
func (h *Handler) Statement(c *gin.Context) {
	year, month, ok := periodParams(c)
	if !ok {
		return
	}
	body, err := h.billingSvc.Statement(c.Request.Context(), year, month)
	if err != nil {
		abortWithError(c, fromDomain(err, "statement_failed"))
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// Insights returns the computed dashboard insights.
func (h *Handler) Insights(c *gin.Context) {
	items, err := h.insightSvc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, "insights_failed"))
		return
	}
	out := make([]insightDTO, 0, len(items))
	for _, in := range items {
		out = append(out, toInsightDTO(in))
	}
	c.JSON(http.StatusOK, gin.H{"insights": out})
}
