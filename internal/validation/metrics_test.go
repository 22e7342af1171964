package validation

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

func TestMetrics_RecordedByValidator(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	v := NewValidator(WithMetrics(m))

	rec := cleanRecord()
	rec.ExportPort = ""
	v.Validate(context.Background(), rec)
	v.Validate(context.Background(), cleanRecord())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues(string(model.StatusError))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues(string(model.StatusPass))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Findings.WithLabelValues(CheckerFieldIntegrity, string(model.SeverityCritical))))
}

func TestMetrics_FaultCounted(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	v := NewValidator(WithMetrics(m), WithCheckers(panickingChecker{}))

	v.Validate(context.Background(), cleanRecord())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Faults))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordValidation(model.StatusPass, 0)
		m.RecordFault()
		m.RecordAutoFix("applied")
		m.RecordFindings("x", []model.Finding{{Severity: model.SeverityWarning}})
	})
}
