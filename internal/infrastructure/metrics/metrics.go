// Package metrics expone las métricas del ledger de movimientos en Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

const namespace = "movimientos"

var _ inventory.Observer = (*Ledger)(nil)

// Ledger Observer del motor respaldado por un registro Prometheus propio.
type Ledger struct {
	registry       *prometheus.Registry
	movements      *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	storeRetries   prometheus.Counter
	notifyFailures prometheus.Counter
}

// New registra las métricas del ledger y los collectors de proceso y runtime.
func New() *Ledger {
	reg := prometheus.NewRegistry()
	l := &Ledger{
		registry: reg,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_applied_total",
			Help:      "Movimientos de inventario confirmados por causa.",
		}, []string{"cause"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_rejected_total",
			Help:      "Acciones rechazadas por motivo.",
		}, []string{"reason"}),
		storeRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_retries_total",
			Help:      "Reintentos por contención transitoria del almacén.",
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Fallos al publicar cambios de estado.",
		}),
	}
	reg.MustRegister(
		l.movements,
		l.rejections,
		l.storeRetries,
		l.notifyFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return l
}

func (l *Ledger) MovementApplied(cause entity.Cause) { l.movements.WithLabelValues(string(cause)).Inc() }
func (l *Ledger) ActionRejected(reason string)       { l.rejections.WithLabelValues(reason).Inc() }
func (l *Ledger) StoreRetried()                      { l.storeRetries.Inc() }
func (l *Ledger) NotifyFailed()                      { l.notifyFailures.Inc() }

// Registry registro con las métricas del ledger.
func (l *Ledger) Registry() *prometheus.Registry {
	return l.registry
}

// Handler handler HTTP de exposición (/metrics).
func (l *Ledger) Handler() http.Handler {
	return promhttp.HandlerFor(l.registry, promhttp.HandlerOpts{})
}
