package workouts

import "sort"

// workoutRow is one row of the wide workouts-by-date query. The
// workout columns are always present, the exercise and set columns
// come from left joins and are all NULL together on a join miss.
type workoutRow struct {
	workout Workout

	workoutExerciseID *int
	exerciseID        *int
	exerciseName      *string
	position          *int

	setID     *int
	setNumber *int
	weight    *float64
	reps      *int
	setNotes  *string
}

// foldWorkoutRows groups the flat join rows into nested workouts,
// keyed first by workout id, then by workout exercise id. After
// grouping, exercises are sorted by (position, id) and sets by
// (set number, id), so ties resolve to insertion order.
func foldWorkoutRows(rows []workoutRow) []WorkoutWithExercises {
	foldedWorkouts := make([]WorkoutWithExercises, 0)
	workoutIndex := map[int]int{}         // workout id => index in foldedWorkouts
	workoutExerciseIndex := map[int]int{} // workout exercise id => index in its workout

	for _, row := range rows {
		wIndex, ok := workoutIndex[row.workout.ID]
		if !ok {
			foldedWorkouts = append(foldedWorkouts, WorkoutWithExercises{
				Workout:   row.workout,
				Exercises: make([]WorkoutExercise, 0),
			})
			wIndex = len(foldedWorkouts) - 1
			workoutIndex[row.workout.ID] = wIndex
		}

		if row.workoutExerciseID == nil {
			// workout without exercises
			continue
		}

		weIndex, ok := workoutExerciseIndex[*row.workoutExerciseID]
		if !ok {
			foldedWorkouts[wIndex].Exercises = append(foldedWorkouts[wIndex].Exercises, WorkoutExercise{
				ID:           *row.workoutExerciseID,
				WorkoutID:    row.workout.ID,
				ExerciseID:   *row.exerciseID,
				ExerciseName: *row.exerciseName,
				Position:     *row.position,
				Sets:         make([]Set, 0),
			})
			weIndex = len(foldedWorkouts[wIndex].Exercises) - 1
			workoutExerciseIndex[*row.workoutExerciseID] = weIndex
		}

		if row.setID == nil {
			// exercise without sets
			continue
		}

		foldedWorkouts[wIndex].Exercises[weIndex].Sets = append(foldedWorkouts[wIndex].Exercises[weIndex].Sets, Set{
			ID:                *row.setID,
			WorkoutExerciseID: *row.workoutExerciseID,
			SetNumber:         *row.setNumber,
			Weight:            row.weight,
			Reps:              *row.reps,
			Notes:             row.setNotes,
		})
	}

	for i := range foldedWorkouts {
		sortWorkoutTree(&foldedWorkouts[i])
	}

	return foldedWorkouts
}

func sortWorkoutTree(workout *WorkoutWithExercises) {
	sort.Slice(workout.Exercises, func(i, j int) bool {
		if workout.Exercises[i].Position != workout.Exercises[j].Position {
			return workout.Exercises[i].Position < workout.Exercises[j].Position
		}
		return workout.Exercises[i].ID < workout.Exercises[j].ID
	})
	for i := range workout.Exercises {
		sortSets(workout.Exercises[i].Sets)
	}
}

func sortSets(sets []Set) {
	sort.Slice(sets, func(i, j int) bool {
		if sets[i].SetNumber != sets[j].SetNumber {
			return sets[i].SetNumber < sets[j].SetNumber
		}
		return sets[i].ID < sets[j].ID
	})
}
