package workouts

import "time"

// DateLayout is the wire format for calendar dates, used for the
// ?date= filter and for dates inside mutation payloads.
const DateLayout = "2006-01-02"

// Workout is a single training session of one user on one date.
type Workout struct {
	ID        int       `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      *string   `json:"name,omitempty"`
	Date      time.Time `json:"date"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkoutExercise is one movement performed within a workout, joined
// with its catalog entry name.
type WorkoutExercise struct {
	ID           int    `json:"id"`
	WorkoutID    int    `json:"workoutId"`
	ExerciseID   int    `json:"exerciseId"`
	ExerciseName string `json:"exerciseName"`
	Position     int    `json:"position"`
	Sets         []Set  `json:"sets"`
}

type Set struct {
	ID                int      `json:"id"`
	WorkoutExerciseID int      `json:"workoutExerciseId"`
	SetNumber         int      `json:"setNumber"`
	Weight            *float64 `json:"weight,omitempty"`
	Reps              int      `json:"reps"`
	Notes             *string  `json:"notes,omitempty"`
}

// WorkoutWithExercises is the nested read shape: a workout with its
// exercises sorted by position and their sets sorted by set number.
// Both child lists are always present, empty when there are no children.
type WorkoutWithExercises struct {
	Workout
	Exercises []WorkoutExercise `json:"exercises"`
}

// RecentWorkout is the dashboard projection of a workout.
type RecentWorkout struct {
	ID   int       `json:"id"`
	Name *string   `json:"name,omitempty"`
	Date time.Time `json:"date"`
}

type WorkoutSummary struct {
	TotalWorkouts              int             `json:"totalWorkouts"`
	RecentWorkouts             []RecentWorkout `json:"recentWorkouts"`
	WorkoutExercisesLast30Days int             `json:"workoutExercisesLast30Days"`
	SetsLast30Days             int             `json:"setsLast30Days"`
	LastWorkoutDate            *time.Time      `json:"lastWorkoutDate"`
}

// NewWorkout is the payload for creating a whole workout tree at once.
// Date comes in as a yyyy-mm-dd string and is parsed at the HTTP
// boundary, never in the repo.
type NewWorkout struct {
	Name      *string              `json:"name,omitempty"`
	Date      string               `json:"date"`
	Notes     *string              `json:"notes,omitempty"`
	Exercises []NewWorkoutExercise `json:"exercises,omitempty"`
}

// NewWorkoutExercise adds one exercise to a workout. Position zero
// means "no position given": on create it defaults to the 1-based
// index within the submitted list, on a standalone add to max+1.
type NewWorkoutExercise struct {
	ExerciseID int      `json:"exerciseId"`
	Position   int      `json:"position,omitempty"`
	Sets       []NewSet `json:"sets,omitempty"`
}

// NewSet adds one set. SetNumber zero means "no number given" and is
// defaulted the same way as NewWorkoutExercise.Position.
type NewSet struct {
	SetNumber int      `json:"setNumber,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	Reps      int      `json:"reps"`
	Notes     *string  `json:"notes,omitempty"`
}

type UpdateWorkoutRequest struct {
	Name  *string `json:"name,omitempty"`
	Date  string  `json:"date,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

type UpdateSetRequest struct {
	SetNumber int      `json:"setNumber"`
	Weight    *float64 `json:"weight,omitempty"`
	Reps      int      `json:"reps"`
	Notes     *string  `json:"notes,omitempty"`
}

// CreateWorkoutParams is the repo side of NewWorkout, date already parsed.
type CreateWorkoutParams struct {
	Name      *string
	Date      time.Time
	Notes     *string
	Exercises []NewWorkoutExercise
}

// UpdateWorkoutParams is the repo side of UpdateWorkoutRequest.
// A nil date keeps the stored one.
type UpdateWorkoutParams struct {
	Name  *string
	Date  *time.Time
	Notes *string
}

type UpdateSetParams struct {
	SetNumber int
	Weight    *float64
	Reps      int
	Notes     *string
}
