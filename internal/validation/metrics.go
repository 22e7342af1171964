package validation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

// Metrics provides observability for declaration validation.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Validations by overall status
	Validations *prometheus.CounterVec

	// Wall-clock duration of Validate
	Duration prometheus.Histogram

	// Findings by checker and severity
	Findings *prometheus.CounterVec

	// Recovered checker faults
	Faults prometheus.Counter

	// Auto-fix attempts by result
	AutoFixes *prometheus.CounterVec
}

// NewMetrics creates validation metrics registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "declaration_validations_total",
			Help: "Total declaration validations by overall status",
		}, []string{"status"}),

		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "declaration_validation_duration_seconds",
			Help:    "Duration of a full declaration validation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		Findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "declaration_findings_total",
			Help: "Total findings emitted by checker and severity",
		}, []string{"checker", "severity"}),

		Faults: factory.NewCounter(prometheus.CounterOpts{
			Name: "declaration_validation_faults_total",
			Help: "Total unexpected checker faults converted into system findings",
		}),

		AutoFixes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "declaration_autofix_total",
			Help: "Total auto-fix applications by result",
		}, []string{"result"}),
	}
}

// RecordValidation records the outcome and duration of one validation.
func (m *Metrics) RecordValidation(status model.OverallStatus, d time.Duration) {
	if m != nil {
		m.Validations.WithLabelValues(string(status)).Inc()
		m.Duration.Observe(d.Seconds())
	}
}

// RecordFindings counts the findings one checker produced.
func (m *Metrics) RecordFindings(checker string, findings []model.Finding) {
	if m == nil {
		return
	}
	for _, f := range findings {
		m.Findings.WithLabelValues(checker, string(f.Severity)).Inc()
	}
}

// RecordFault counts a recovered checker fault.
func (m *Metrics) RecordFault() {
	if m != nil {
		m.Faults.Inc()
	}
}

// RecordAutoFix counts an auto-fix attempt; result is "applied", "skipped" or "rejected".
func (m *Metrics) RecordAutoFix(result string) {
	if m != nil {
		m.AutoFixes.WithLabelValues(result).Inc()
	}
}
