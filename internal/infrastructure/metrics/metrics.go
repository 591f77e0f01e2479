package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the sale workflow and the HTTP layer.
//
// All methods are safe on a nil receiver so use cases can run without metrics.
type Metrics struct {
	SalesCreated        prometheus.Counter
	SalesSettled        *prometheus.CounterVec
	DoubleSaleRejected  prometheus.Counter
	VehiclesCreated     prometheus.Counter
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers every metric in reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SalesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "dealership_sales_created_total",
			Help: "Total number of sale orders created in PENDING status",
		}),
		SalesSettled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dealership_sales_settled_total",
			Help: "Total number of sale orders settled by the payment webhook, by final status",
		}, []string{"status"}),
		DoubleSaleRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "dealership_double_sale_rejected_total",
			Help: "Completions rejected because the vehicle had already been sold",
		}),
		VehiclesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "dealership_vehicles_created_total",
			Help: "Total number of vehicles added to the stock",
		}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dealership_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status code",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncrementSalesCreated() {
	if m == nil {
		return
	}
	m.SalesCreated.Inc()
}

// IncrementSalesSettled records a sale reaching a terminal status.
func (m *Metrics) IncrementSalesSettled(status string) {
	if m == nil {
		return
	}
	m.SalesSettled.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementDoubleSaleRejected() {
	if m == nil {
		return
	}
	m.DoubleSaleRejected.Inc()
}

func (m *Metrics) IncrementVehiclesCreated() {
	if m == nil {
		return
	}
	m.VehiclesCreated.Inc()
}

// GinMiddleware observes the duration of every request. Unmatched routes are
// grouped under "unmatched" to keep label cardinality bounded.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
