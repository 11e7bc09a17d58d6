package prescription

import (
	"fmt"

	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
)

// OutcomeKind is the branch the selector took.
type OutcomeKind int

const (
	OutcomeMonitoringOnly OutcomeKind = iota + 1
	OutcomeNotEnrolled
	OutcomeRecoveryDay
	OutcomePlan
	// OutcomeAwaitingTriage is returned for an enrolled experimental patient
	// on a training day who has not submitted today's report.
	OutcomeAwaitingTriage
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeMonitoringOnly: "MONITORING_ONLY",
	OutcomeNotEnrolled:    "NOT_ENROLLED",
	OutcomeRecoveryDay:    "RECOVERY_DAY",
	OutcomePlan:           "PLAN",
	OutcomeAwaitingTriage: "AWAITING_TRIAGE",
}

func (k OutcomeKind) String() string {
	if s, ok := outcomeNames[k]; ok {
		return s
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SelectInput is everything the selector needs. It is a plain value.
type SelectInput struct {
	Cohort              Cohort
	Weekday             Weekday
	Arm                 TrialArm
	Alert               triage.AlertLevel
	DaysSinceEnrollment int
}

// PrescriptionPlan is the session issued on a training day. Exercises is
// empty and Vagal is set when the dose is BLOCKED.
type PrescriptionPlan struct {
	Weekday   Weekday        `json:"weekday"`
	Intensity string         `json:"intensity"`
	Exercises []Exercise     `json:"exercises"`
	Dose      DosePolicy     `json:"dose"`
	Guidance  Guidance       `json:"guidance"`
	Vagal     *VagalProtocol `json:"vagal,omitempty"`
}

type Outcome struct {
	Kind OutcomeKind       `json:"kind"`
	Plan *PrescriptionPlan `json:"plan,omitempty"`
}

// Select decides today's prescription. Rules apply in order: control arm,
// enrollment, weekday, catalog lookup, then the alert-driven dose.
func (c *Catalog) Select(in SelectInput) Outcome {
	if in.Arm == ArmControl {
		return Outcome{Kind: OutcomeMonitoringOnly}
	}
	if in.DaysSinceEnrollment < 0 {
		return Outcome{Kind: OutcomeNotEnrolled}
	}
	if !in.Weekday.IsTrainingDay() {
		return Outcome{Kind: OutcomeRecoveryDay}
	}

	routine, ok := c.Routine(in.Cohort, in.Weekday)
	if !ok {
		// Unknown cohort. A validated catalog covers every known cohort on
		// every training day.
		return Outcome{Kind: OutcomeRecoveryDay}
	}

	dose, ok := DoseFor(in.Alert)
	if !ok {
		return Outcome{Kind: OutcomeAwaitingTriage}
	}

	plan := &PrescriptionPlan{
		Weekday:   in.Weekday,
		Intensity: c.Intensity(in.Weekday),
		Dose:      dose,
		Guidance:  dose.Guidance(),
	}
	if dose == DoseBlocked {
		plan.Exercises = []Exercise{}
		plan.Vagal = DefaultVagalProtocol()
	} else {
		plan.Exercises = append([]Exercise(nil), routine[:]...)
	}

	return Outcome{Kind: OutcomePlan, Plan: plan}
}
