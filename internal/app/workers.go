package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/udelar-dtx/dtx_backend/config"
	"github.com/udelar-dtx/dtx_backend/internal/service/triage"
	"github.com/udelar-dtx/dtx_backend/pkg/constants"
	"github.com/udelar-dtx/dtx_backend/pkg/email"
	"github.com/udelar-dtx/dtx_backend/pkg/observability"
	"github.com/udelar-dtx/dtx_backend/pkg/sms"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

const alertTimeout = 30 * time.Second

type WorkerParams struct {
	fx.In

	Lc      fx.Lifecycle
	Cfg     *config.Config
	NC      *nats.Conn
	Email   *email.Client
	SMS     *sms.Client
	Metrics *observability.TrialMetrics `optional:"true"`
}

func RegisterWorkers(p WorkerParams) {
	n := &redAlertNotifier{
		sms:        p.SMS,
		recipients: p.Cfg.Trial.Alerts.EmailRecipients,
		onCall:     p.Cfg.Trial.Alerts.OnCallPhone,
		metrics:    p.Metrics,
	}
	if p.Email.IsEnabled() {
		n.email = p.Email
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			sub, err = startRedAlertWorker(p.NC, n)
			return err
		},
		OnStop: func(ctx context.Context) error {
			if sub == nil {
				return nil
			}
			return sub.Unsubscribe()
		},
	})
}

// ---------------------------------------------------------------------------
// red_alert_worker
// ---------------------------------------------------------------------------

func startRedAlertWorker(nc *nats.Conn, n *redAlertNotifier) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(triage.SubjectRedAlerts, func(msg *nats.Msg) {
		var ev triage.RedAlertEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("red_alert_worker: bad payload", "subject", msg.Subject, "err", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		n.notify(ctx, ev)
	})
	if err != nil {
		slog.Error("red_alert_worker: subscribe failed", "subject", triage.SubjectRedAlerts, "err", err)
		return nil, err
	}

	slog.Info("red_alert_worker: started", "subject", triage.SubjectRedAlerts)
	return sub, nil
}

type redAlertNotifier struct {
	email      email.Sender
	sms        sms.Sender
	recipients []string
	onCall     string
	metrics    *observability.TrialMetrics
}

// notify fans a RED event out to every configured channel. Failures are
// logged and counted; one channel failing does not stop the other.
func (n *redAlertNotifier) notify(ctx context.Context, ev triage.RedAlertEvent) {
	if n.email != nil && len(n.recipients) > 0 {
		msg := email.BuildRedAlertEmail(n.recipients, email.RedAlertData{
			PatientID:       ev.PatientID,
			Cohort:          string(ev.Cohort),
			Arm:             string(ev.Arm),
			ReportDate:      ev.ReportDate,
			Fatigue:         ev.Fatigue,
			MaxPain:         ev.MaxPain,
			PainZones:       ev.PainZones,
			SleepEfficiency: ev.SleepEfficiency,
			AppName:         constants.AlertAppName,
		})
		err := n.email.Send(ctx, msg)
		if err != nil {
			slog.Error("red_alert_worker: email failed", "patient_id", ev.PatientID, "err", err)
		}
		n.record(ctx, "email", err)
	}

	if n.sms != nil && n.sms.IsEnabled() && n.onCall != "" {
		err := n.sms.SendAlert(ctx, n.onCall, map[string]string{
			"PATIENT": ev.PatientID,
			"DATE":    ev.ReportDate,
			"FATIGUE": strconv.Itoa(ev.Fatigue),
			"PAIN":    strconv.Itoa(ev.MaxPain),
		})
		if err != nil {
			slog.Error("red_alert_worker: sms failed", "patient_id", ev.PatientID, "err", err)
		}
		n.record(ctx, "sms", err)
	}
}

func (n *redAlertNotifier) record(ctx context.Context, channel string, err error) {
	if n.metrics != nil {
		n.metrics.AlertNotified(ctx, channel, err)
	}
}
