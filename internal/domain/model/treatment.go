package model

import (
	"fmt"
	"strings"
)

// Treatment is a behavior column whose effect on weight change is studied.
type Treatment string

// Allowed treatments.
const (
	TreatmentExercise Treatment = Treatment(ColExerciseMin)
	TreatmentSleep    Treatment = Treatment(ColSleepHr)
	TreatmentCalories Treatment = Treatment(ColCalorieKcal)
)

// Treatments returns the allowed treatments in selector order.
func Treatments() []Treatment {
	return []Treatment{TreatmentExercise, TreatmentSleep, TreatmentCalories}
}

// ParseTreatment maps a selector value to a Treatment.
func ParseTreatment(s string) (Treatment, error) {
	t := Treatment(strings.TrimSpace(s))
	for _, known := range Treatments() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTreatment, s)
}

// Column returns the diary column the treatment reads.
func (t Treatment) Column() Column { return Column(t) }

func (t Treatment) String() string { return string(t) }
