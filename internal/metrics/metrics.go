package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wrcheck"

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	ScansTotal          *prometheus.CounterVec
	SyncMismatchesTotal prometheus.Counter
	TempOutOfRangeTotal prometheus.Counter
	LastFailures        prometheus.Gauge
	LastMeanTempC       prometheus.Gauge
	RelayOn             *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Stat dumps scanned, by outcome (nominal, failed).",
			},
			[]string{"outcome"},
		),
		SyncMismatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_mismatches_total",
			Help:      "Stat lines whose servo state was not the expected one.",
		}),
		TempOutOfRangeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "temperature_out_of_range_total",
			Help:      "Temperature readings outside the configured range.",
		}),
		LastFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_scan_failures",
			Help:      "Failure count of the most recent scan.",
		}),
		LastMeanTempC: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_mean_temperature_celsius",
			Help:      "Mean board temperature of the most recent scan with readings.",
		}),
		RelayOn: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "relay_on",
				Help:      "1 when the relay on the pin is energized.",
			},
			[]string{"pin"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.ScansTotal,
		m.SyncMismatchesTotal,
		m.TempOutOfRangeTotal,
		m.LastFailures,
		m.LastMeanTempC,
		m.RelayOn,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveScan records the counts of one scan. mean is nil when the scan had
// no temperature readings.
func (m *Metrics) ObserveScan(syncMismatches, outOfRange int, mean *float64) {
	if m == nil {
		return
	}
	outcome := "nominal"
	if syncMismatches+outOfRange > 0 {
		outcome = "failed"
	}
	m.ScansTotal.WithLabelValues(outcome).Inc()
	m.SyncMismatchesTotal.Add(float64(syncMismatches))
	m.TempOutOfRangeTotal.Add(float64(outOfRange))
	m.LastFailures.Set(float64(syncMismatches + outOfRange))
	if mean != nil {
		m.LastMeanTempC.Set(*mean)
	}
}

// SetRelay records the level of one relay.
func (m *Metrics) SetRelay(pin int, on bool) {
	if m == nil {
		return
	}
	v := 0.0
	if on {
		v = 1
	}
	m.RelayOn.WithLabelValues(strconv.Itoa(pin)).Set(v)
}
