package triage

// Thresholds of the morning triage. RED is a hard safety gate; any single
// YELLOW signal is enough to reduce the session dose.
const (
	RedFatigueMin = 8
	RedPainMin    = 7

	YellowEfficiencyBelow = 85.0
	YellowLatencyAbove    = 45
	YellowFatigueMin      = 5
	YellowStressMin       = 6
)

// Classify maps one morning report onto an AlertLevel. Rules are evaluated in
// order and the first match wins.
func Classify(efficiencyPct float64, latency, fatigue, stress, maxPain int) AlertLevel {
	if fatigue >= RedFatigueMin || maxPain >= RedPainMin {
		return AlertRed
	}
	if efficiencyPct < YellowEfficiencyBelow ||
		latency > YellowLatencyAbove ||
		fatigue >= YellowFatigueMin ||
		stress >= YellowStressMin {
		return AlertYellow
	}
	return AlertGreen
}
