package workouts

import (
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/validation"
)

// maxSetWeight matches the numeric(6,2) column bound.
const maxSetWeight = 9999.99

// validateNewWorkout checks the whole submitted tree and collects all
// problems into one field map, so the client gets everything at once.
func validateNewWorkout(newWorkout NewWorkout) (time.Time, error) {
	valErr := validation.NewError()

	var date time.Time
	if newWorkout.Date == "" {
		valErr.Set("date", "date is required")
	} else {
		parsedDate, err := time.Parse(DateLayout, newWorkout.Date)
		if err != nil {
			valErr.Set("date", "date must be in yyyy-mm-dd format")
		} else {
			date = parsedDate
		}
	}

	for i, newExercise := range newWorkout.Exercises {
		validateNewWorkoutExercise(fmt.Sprintf("exercises[%d].", i), newExercise, valErr)
	}

	return date, valErr.OrNil()
}

func validateNewWorkoutExercise(fieldPrefix string, newExercise NewWorkoutExercise, valErr *validation.Error) {
	if newExercise.ExerciseID <= 0 {
		valErr.Set(fieldPrefix+"exerciseId", "exercise id is required")
	}
	if newExercise.Position < 0 {
		valErr.Set(fieldPrefix+"position", "position must be positive")
	}
	for i, newSet := range newExercise.Sets {
		validateNewSet(fmt.Sprintf("%ssets[%d].", fieldPrefix, i), newSet, valErr)
	}
}

func validateNewSet(fieldPrefix string, newSet NewSet, valErr *validation.Error) {
	if newSet.SetNumber < 0 {
		valErr.Set(fieldPrefix+"setNumber", "set number must be positive")
	}
	if newSet.Reps <= 0 {
		valErr.Set(fieldPrefix+"reps", "reps must be positive")
	}
	if newSet.Weight != nil && (*newSet.Weight < 0 || *newSet.Weight > maxSetWeight) {
		valErr.Set(fieldPrefix+"weight", fmt.Sprintf("weight must be between 0 and %.2f", maxSetWeight))
	}
}

func validateUpdateWorkout(updateReq UpdateWorkoutRequest) (*time.Time, error) {
	valErr := validation.NewError()

	var date *time.Time
	if updateReq.Date != "" {
		parsedDate, err := time.Parse(DateLayout, updateReq.Date)
		if err != nil {
			valErr.Set("date", "date must be in yyyy-mm-dd format")
		} else {
			date = &parsedDate
		}
	}

	return date, valErr.OrNil()
}

func validateUpdateSet(updateReq UpdateSetRequest) error {
	valErr := validation.NewError()

	if updateReq.SetNumber <= 0 {
		valErr.Set("setNumber", "set number must be positive")
	}
	if updateReq.Reps <= 0 {
		valErr.Set("reps", "reps must be positive")
	}
	if updateReq.Weight != nil && (*updateReq.Weight < 0 || *updateReq.Weight > maxSetWeight) {
		valErr.Set("weight", fmt.Sprintf("weight must be between 0 and %.2f", maxSetWeight))
	}

	return valErr.OrNil()
}
