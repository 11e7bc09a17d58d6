package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestTrialMetricsRecordsCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	m, err := NewTrialMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.TriageReported(ctx, "RED", "BREAST")
	m.TriageReported(ctx, "GREEN", "BREAST")
	m.SessionRecorded(ctx, "COMPLETED")
	m.AlertNotified(ctx, "email", nil)
	m.AlertNotified(ctx, "sms", errors.New("boom"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[md.Name] += dp.Value
			}
		}
	}

	assert.Equal(t, int64(2), totals["dtx_triage_reports_total"])
	assert.Equal(t, int64(1), totals["dtx_sessions_recorded_total"])
	assert.Equal(t, int64(1), totals["dtx_red_alert_notifications_total"])
	assert.Equal(t, int64(1), totals["dtx_red_alert_notification_failures_total"])
}
