package prescription

// NoExercise fills unused exercise slots.
const NoExercise = "Ninguno"

// MaxRPE is the top of the Borg CR10 scale.
const MaxRPE = 10

// Visit is the session part of a daily record.
type Visit struct {
	Exercises [ExercisesPerSession]string
	Loads     [ExercisesPerSession]float64
	RPE       int
	Vagal     bool
}

func emptySlots() [ExercisesPerSession]string {
	var s [ExercisesPerSession]string
	for i := range s {
		s[i] = NoExercise
	}
	return s
}

// MonitoringVisit is recorded for control-arm patients.
func MonitoringVisit() Visit {
	return Visit{Exercises: emptySlots()}
}

// VagalVisit is recorded when the vagal protocol replaced the session.
func VagalVisit() Visit {
	v := Visit{Exercises: emptySlots(), Vagal: true}
	v.Exercises[0] = VagalSlotName
	return v
}

// TrainingVisit records the routine with the loads actually lifted.
func TrainingVisit(r Routine, loads [ExercisesPerSession]float64, rpe int) Visit {
	return Visit{Exercises: r.Names(), Loads: loads, RPE: rpe}
}
