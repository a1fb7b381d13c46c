package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wefix"

// Options configures the verification collectors.
type Options struct {
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Verification holds the counters recorded by the verification lifecycle.
type Verification struct {
	Issued           *prometheus.CounterVec
	Checks           *prometheus.CounterVec
	NotifierFailures prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewVerification constructs the collectors and registers them. Collectors
// that are already registered are reused.
func NewVerification(opts Options) (*Verification, error) {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	issued, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verification",
		Name:      "issued_total",
		Help:      "Verification codes issued, partitioned by operation.",
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}

	checks, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verification",
		Name:      "checks_total",
		Help:      "Verification checks, partitioned by outcome reason.",
	}, []string{"reason"}))
	if err != nil {
		return nil, err
	}

	failures, err := register[prometheus.Counter](reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verification",
		Name:      "notifier_failures_total",
		Help:      "Codes that were stored but could not be delivered.",
	}))
	if err != nil {
		return nil, err
	}

	return &Verification{
		Issued:           issued,
		Checks:           checks,
		NotifierFailures: failures,
		gatherer:         gatherer,
	}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return c, fmt.Errorf("register collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return c, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return c, nil
}

// IncIssued records an issued code. Safe on a nil receiver.
func (v *Verification) IncIssued(operation string) {
	if v == nil {
		return
	}
	v.Issued.WithLabelValues(operation).Inc()
}

// IncCheck records a check outcome. Safe on a nil receiver.
func (v *Verification) IncCheck(reason string) {
	if v == nil {
		return
	}
	v.Checks.WithLabelValues(reason).Inc()
}

// IncNotifierFailure records a failed delivery. Safe on a nil receiver.
func (v *Verification) IncNotifierFailure() {
	if v == nil {
		return
	}
	v.NotifierFailures.Inc()
}

// Handler serves the gatherer in the Prometheus text format.
func (v *Verification) Handler() http.Handler {
	if v == nil || v.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(v.gatherer, promhttp.HandlerOpts{})
}
