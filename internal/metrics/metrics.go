// Package metrics exposes Prometheus collectors for scheduler activity and an
// optional HTTP endpoint serving them.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"macrofox/internal/logging"
	"macrofox/internal/macro"
)

const (
	namespace = "macrofox"
	subsystem = "scheduler"
)

// Metrics implements macro.Observer on top of Prometheus collectors.
type Metrics struct {
	activations  *prometheus.CounterVec
	failures     *prometheus.CounterVec
	tickDuration *prometheus.HistogramVec
	state        *prometheus.GaugeVec
}

var _ macro.Observer = (*Metrics)(nil)

// MustNewMetrics constructs Metrics and registers them with reg. Registration
// errors panic, mirroring promauto. A nil reg uses the default registerer.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		activations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "activations_total",
				Help:      "Slot activations fired by the scheduler.",
			},
			[]string{"slot", "item"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dispatch_failures_total",
				Help:      "Key emissions that returned an error.",
			},
			[]string{"slot"},
		),
		tickDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tick_duration_seconds",
				Help:      "Time spent in one scan-and-fire pass, including key emission.",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"fired"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "state",
				Help:      "1 for the current scheduler state, 0 otherwise.",
			},
			[]string{"state"},
		),
	}
	reg.MustRegister(m.activations, m.failures, m.tickDuration, m.state)
	m.StateChanged(macro.StateStopped)
	return m
}

func slotLabel(slot int) string {
	return strconv.Itoa(slot + 1)
}

// SlotFired counts one activation.
func (m *Metrics) SlotFired(slot int, item macro.ItemID) {
	if m == nil {
		return
	}
	m.activations.WithLabelValues(slotLabel(slot), string(item)).Inc()
}

// DispatchFailed counts one failed emission.
func (m *Metrics) DispatchFailed(slot int, _ error) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(slotLabel(slot)).Inc()
}

// TickCompleted observes the tick duration.
func (m *Metrics) TickCompleted(fired bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.WithLabelValues(strconv.FormatBool(fired)).Observe(elapsed.Seconds())
}

// StateChanged sets the state gauge.
func (m *Metrics) StateChanged(state macro.State) {
	if m == nil {
		return
	}
	for _, s := range []macro.State{macro.StateStopped, macro.StateRunning, macro.StatePaused} {
		v := 0.0
		if s == state {
			v = 1
		}
		m.state.WithLabelValues(s.String()).Set(v)
	}
}

// Serve exposes gatherer on addr at /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger logging.Logger) error {
	logger = logging.OrNop(logger)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Metrics listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
		logger.Info("Metrics server stopped")
		return nil
	}
}
