// Package metrics exposes Prometheus instruments for the portfolio page.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Zachkp/rest-portfolio/internal/toast"
)

const namespace = "portfolio"

// Metrics holds every instrument the server records.
type Metrics struct {
	toastsShown   *prometheus.CounterVec
	toastsRemoved *prometheus.CounterVec
	activePages   prometheus.Gauge
	lookups       *prometheus.CounterVec
	contacts      *prometheus.CounterVec
	liveClients   prometheus.Gauge
}

var _ toast.Observer = (*Metrics)(nil)

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		toastsShown: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toasts_shown_total",
			Help:      "Toasts appended to a page, by kind",
		}, []string{"kind"}),
		toastsRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toasts_removed_total",
			Help:      "Toasts detached from a page, by kind and reason",
		}, []string{"kind", "reason"}),
		activePages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_pages",
			Help:      "Visitor page instances currently alive",
		}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visitor_lookups_total",
			Help:      "IP lookups by result",
		}, []string{"result"}),
		contacts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by result",
		}, []string{"result"}),
		liveClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_clients",
			Help:      "Open websocket toast feeds",
		}),
	}
}

// Shown implements toast.Observer.
func (m *Metrics) Shown(kind toast.Kind) {
	m.toastsShown.WithLabelValues(kindLabel(kind)).Inc()
}

// Removed implements toast.Observer.
func (m *Metrics) Removed(kind toast.Kind, reason toast.Reason) {
	m.toastsRemoved.WithLabelValues(kindLabel(kind), string(reason)).Inc()
}

// kindLabel folds kinds outside the known four into one series.
func kindLabel(k toast.Kind) string {
	if !k.Valid() {
		return "unknown"
	}
	return string(k)
}

func (m *Metrics) PageOpened() { m.activePages.Inc() }
func (m *Metrics) PageClosed() { m.activePages.Dec() }

// Lookup records an IP lookup outcome ("ok" or "error").
func (m *Metrics) Lookup(result string) {
	m.lookups.WithLabelValues(result).Inc()
}

// Contact records a contact form outcome ("sent", "invalid", "failed").
func (m *Metrics) Contact(result string) {
	m.contacts.WithLabelValues(result).Inc()
}

func (m *Metrics) LiveConnected()    { m.liveClients.Inc() }
func (m *Metrics) LiveDisconnected() { m.liveClients.Dec() }
