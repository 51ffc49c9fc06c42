package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
)

const namespace = "lotto"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	ticketsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "office",
			Name:      "tickets_issued_total",
			Help:      "Tickets sold per office.",
		},
		[]string{"office"},
	)

	betsSold = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "office",
			Name:      "bets_sold_total",
			Help:      "Bets sold across all offices.",
		},
	)

	redemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "office",
			Name:      "redemptions_total",
			Help:      "Accepted redemption calls.",
		},
		[]string{"office", "taxed"},
	)

	paidOut = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "office",
			Name:      "paid_out_minor_total",
			Help:      "Net winnings paid to players, in minor units.",
		},
	)

	draws = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "draws_total",
			Help:      "Draws conducted.",
		},
	)

	winners = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "winners_total",
			Help:      "Winning bet entries per tier.",
		},
		[]string{"tier"},
	)

	jackpot = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "jackpot_minor",
			Help:      "Jackpot carried into the next draw.",
		},
	)

	funds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "funds_minor",
			Help:      "Ledger funds after the last draw.",
		},
	)

	scheduledDraws = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "runs_total",
			Help:      "Scheduled draw attempts.",
		},
		[]string{"success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ticketsIssued,
		betsSold,
		redemptions,
		paidOut,
		draws,
		winners,
		jackpot,
		funds,
		scheduledDraws,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records request counts and latency for every route except /metrics.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := strings.ToUpper(c.Request.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordScheduledDraw counts one scheduler run.
func RecordScheduledDraw(success bool) {
	scheduledDraws.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// Recorder turns ledger events into metrics.
type Recorder struct{}

var _ providers.EventPublisher = Recorder{}

func (Recorder) PublishTicketIssued(_ context.Context, ev *providers.TicketIssuedEvent) error {
	ticketsIssued.WithLabelValues(strconv.Itoa(ev.Office)).Inc()
	betsSold.Add(float64(ev.Bets))
	return nil
}

func (Recorder) PublishTicketRedeemed(_ context.Context, ev *providers.TicketRedeemedEvent) error {
	redemptions.WithLabelValues(strconv.Itoa(ev.Office), strconv.FormatBool(ev.Tax > 0)).Inc()
	paidOut.Add(float64(ev.Paid))
	return nil
}

func (Recorder) PublishDrawConducted(_ context.Context, ev *providers.DrawConductedEvent) error {
	draws.Inc()
	for i, n := range ev.WinnerCounts {
		winners.WithLabelValues(strconv.Itoa(i + 1)).Add(float64(n))
	}
	jackpot.Set(float64(ev.Jackpot))
	funds.Set(float64(ev.Funds))
	return nil
}
