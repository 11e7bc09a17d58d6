package trial

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
)

func NewClassifyCommand() *cobra.Command {
	var (
		bed, wake string
		pain      []string
		report    triage.DailyReport
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a morning report offline",
		Long: `Computes sleep metrics and the triage alert for one report without touching
the database. Pain is given as ZONE=INTENSITY and may be repeated:

  dtx trial classify --bed 23:30 --wake 07:00 --fatigue 6 --pain LOWER_BACK=4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if report.Bedtime, err = triage.ParseTimeOfDay(bed); err != nil {
				return err
			}
			if report.WakeTime, err = triage.ParseTimeOfDay(wake); err != nil {
				return err
			}
			if report.PainZones, err = parsePain(pain); err != nil {
				return err
			}

			a, err := triage.Evaluate(report)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Time in bed\t%d min\n", a.Sleep.TimeInBedMinutes)
			fmt.Fprintf(w, "Time asleep\t%d min (%.1f h)\n", a.Sleep.TimeAsleepMinutes, a.Sleep.HoursAsleep())
			fmt.Fprintf(w, "Efficiency\t%.1f%%\n", a.Sleep.EfficiencyPct)
			fmt.Fprintf(w, "Max pain\t%d (%s)\n", a.MaxPain, report.ZonesLabel())
			fmt.Fprintf(w, "Alert\t%s\n", a.Alert)
			return w.Flush()
		},
	}

	f := cmd.Flags()
	f.StringVar(&bed, "bed", "", "Bedtime, HH:MM")
	f.StringVar(&wake, "wake", "", "Wake time, HH:MM")
	f.IntVar(&report.LatencyMinutes, "latency", 0, "Minutes to fall asleep")
	f.IntVar(&report.AwakeMinutes, "awake", 0, "Minutes awake during the night")
	f.IntVar(&report.Fatigue, "fatigue", 0, "Fatigue 0-10")
	f.IntVar(&report.Stress, "stress", 0, "Stress 0-10")
	f.StringArrayVar(&pain, "pain", nil, "Pain as ZONE=INTENSITY, repeatable")
	_ = cmd.MarkFlagRequired("bed")
	_ = cmd.MarkFlagRequired("wake")

	return cmd
}

func parsePain(in []string) ([]triage.PainReport, error) {
	out := make([]triage.PainReport, 0, len(in))
	for _, s := range in {
		zone, level, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("%w: pain %q must be ZONE=INTENSITY", triage.ErrInvalidInput, s)
		}
		n, err := strconv.Atoi(strings.TrimSpace(level))
		if err != nil {
			return nil, fmt.Errorf("%w: pain intensity %q is not a number", triage.ErrInvalidInput, level)
		}
		out = append(out, triage.PainReport{
			Zone:      triage.PainZone(strings.ToUpper(strings.TrimSpace(zone))),
			Intensity: n,
		})
	}
	return out, nil
}
