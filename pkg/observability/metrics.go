package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/udelar-dtx/dtx_backend/trial"

// TrialMetrics counts clinical events. Safe to use before InitTelemetry: the
// global no-op meter is used until a provider is installed.
type TrialMetrics struct {
	reports    metric.Int64Counter
	sessions   metric.Int64Counter
	warnings   metric.Int64Counter
	redAlerts  metric.Int64Counter
	alertFails metric.Int64Counter
}

func NewTrialMetrics() (*TrialMetrics, error) {
	meter := otel.Meter(meterName)

	reports, err := meter.Int64Counter("dtx_triage_reports_total",
		metric.WithDescription("Daily self-reports by alert level"),
		metric.WithUnit("{report}"))
	if err != nil {
		return nil, err
	}
	sessions, err := meter.Int64Counter("dtx_sessions_recorded_total",
		metric.WithDescription("Recorded visits by session status"),
		metric.WithUnit("{session}"))
	if err != nil {
		return nil, err
	}
	warnings, err := meter.Int64Counter("dtx_safety_warnings_total",
		metric.WithDescription("Safety warnings raised while recording sessions"),
		metric.WithUnit("{warning}"))
	if err != nil {
		return nil, err
	}
	redAlerts, err := meter.Int64Counter("dtx_red_alert_notifications_total",
		metric.WithDescription("RED alert notifications delivered by channel"),
		metric.WithUnit("{notification}"))
	if err != nil {
		return nil, err
	}
	alertFails, err := meter.Int64Counter("dtx_red_alert_notification_failures_total",
		metric.WithDescription("RED alert notifications that failed by channel"),
		metric.WithUnit("{notification}"))
	if err != nil {
		return nil, err
	}

	return &TrialMetrics{
		reports:    reports,
		sessions:   sessions,
		warnings:   warnings,
		redAlerts:  redAlerts,
		alertFails: alertFails,
	}, nil
}

func (m *TrialMetrics) TriageReported(ctx context.Context, alert, cohort string) {
	m.reports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("alert", alert),
		attribute.String("cohort", cohort),
	))
}

func (m *TrialMetrics) SessionRecorded(ctx context.Context, status string) {
	m.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *TrialMetrics) SafetyWarning(ctx context.Context, code string) {
	m.warnings.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// AlertNotified records one delivery attempt of a RED notification.
func (m *TrialMetrics) AlertNotified(ctx context.Context, channel string, err error) {
	attrs := metric.WithAttributes(attribute.String("channel", channel))
	if err != nil {
		m.alertFails.Add(ctx, 1, attrs)
		return
	}
	m.redAlerts.Add(ctx, 1, attrs)
}
