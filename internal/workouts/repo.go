package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/exercises"
	"github.com/2beens/liftlog/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWorkoutNotFound         = errors.New("workout not found")
	ErrWorkoutExerciseNotFound = errors.New("workout exercise not found")
	ErrSetNotFound             = errors.New("set not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// GetWorkoutsByDate returns the user's workouts on the given date as
// fully nested trees. One wide query, the nesting is done in memory.
func (r *Repo) GetWorkoutsByDate(ctx context.Context, userID string, date time.Time) (_ []WorkoutWithExercises, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getByDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date.Format(DateLayout)))

	rows, err := r.db.Query(ctx, `
		SELECT
			w.id, w.owner_id, w.name, w.date, w.notes, w.created_at, w.updated_at,
			we.id, we.exercise_id, e.name, we.position,
			ws.id, ws.set_number, ws.weight, ws.reps, ws.notes
		FROM workout w
		LEFT JOIN workout_exercise we ON we.workout_id = w.id
		LEFT JOIN exercise e ON e.id = we.exercise_id
		LEFT JOIN workout_set ws ON ws.workout_exercise_id = we.id
		WHERE w.owner_id = $1 AND w.date = $2::date
		ORDER BY w.id ASC, we.id ASC, ws.id ASC`,
		userID, date.Format(DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("workouts by date: %w", err)
	}
	defer rows.Close()

	var flatRows []workoutRow
	for rows.Next() {
		var row workoutRow
		if err := rows.Scan(
			&row.workout.ID, &row.workout.OwnerID, &row.workout.Name,
			&row.workout.Date, &row.workout.Notes, &row.workout.CreatedAt, &row.workout.UpdatedAt,
			&row.workoutExerciseID, &row.exerciseID, &row.exerciseName, &row.position,
			&row.setID, &row.setNumber, &row.weight, &row.reps, &row.setNotes,
		); err != nil {
			return nil, fmt.Errorf("workouts by date, rows scan: %w", err)
		}
		flatRows = append(flatRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workouts by date, rows error: %w", err)
	}

	workoutTrees := foldWorkoutRows(flatRows)
	span.SetAttributes(attribute.Int("workouts", len(workoutTrees)))

	return workoutTrees, nil
}

// AllWorkouts returns every workout of every user as nested trees,
// used by the backup cmd. A non-nil createdAfter narrows the result
// to workouts created after that instant.
func (r *Repo) AllWorkouts(ctx context.Context, createdAfter *time.Time) (_ []WorkoutWithExercises, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.all")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	if createdAfter != nil {
		span.SetAttributes(attribute.String("createdAfter", createdAfter.String()))
	}

	const allWorkoutsQuery = `
		SELECT
			w.id, w.owner_id, w.name, w.date, w.notes, w.created_at, w.updated_at,
			we.id, we.exercise_id, e.name, we.position,
			ws.id, ws.set_number, ws.weight, ws.reps, ws.notes
		FROM workout w
		LEFT JOIN workout_exercise we ON we.workout_id = w.id
		LEFT JOIN exercise e ON e.id = we.exercise_id
		LEFT JOIN workout_set ws ON ws.workout_exercise_id = we.id`

	var rows pgx.Rows
	if createdAfter != nil {
		rows, err = r.db.Query(ctx,
			allWorkoutsQuery+`
			WHERE w.created_at > $1
			ORDER BY w.id ASC, we.id ASC, ws.id ASC`,
			*createdAfter,
		)
	} else {
		rows, err = r.db.Query(ctx,
			allWorkoutsQuery+`
			ORDER BY w.id ASC, we.id ASC, ws.id ASC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("all workouts: %w", err)
	}
	defer rows.Close()

	var flatRows []workoutRow
	for rows.Next() {
		var row workoutRow
		if err := rows.Scan(
			&row.workout.ID, &row.workout.OwnerID, &row.workout.Name,
			&row.workout.Date, &row.workout.Notes, &row.workout.CreatedAt, &row.workout.UpdatedAt,
			&row.workoutExerciseID, &row.exerciseID, &row.exerciseName, &row.position,
			&row.setID, &row.setNumber, &row.weight, &row.reps, &row.setNotes,
		); err != nil {
			return nil, fmt.Errorf("all workouts, rows scan: %w", err)
		}
		flatRows = append(flatRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("all workouts, rows error: %w", err)
	}

	workoutTrees := foldWorkoutRows(flatRows)
	span.SetAttributes(attribute.Int("workouts", len(workoutTrees)))

	return workoutTrees, nil
}

func (r *Repo) CountWorkouts(ctx context.Context, userID string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout WHERE owner_id = $1`,
		userID,
	).Scan(&count); err != nil {
		return -1, fmt.Errorf("count workouts: %w", err)
	}

	return count, nil
}

// RecentWorkouts returns up to limit workouts, most recent date first,
// newer (higher id) workouts first within the same date.
func (r *Repo) RecentWorkouts(ctx context.Context, userID string, limit int) (_ []RecentWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.recent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, date
		FROM workout
		WHERE owner_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent workouts: %w", err)
	}
	defer rows.Close()

	recentWorkouts := make([]RecentWorkout, 0)
	for rows.Next() {
		var rw RecentWorkout
		if err := rows.Scan(&rw.ID, &rw.Name, &rw.Date); err != nil {
			return nil, fmt.Errorf("recent workouts, rows scan: %w", err)
		}
		recentWorkouts = append(recentWorkouts, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent workouts, rows error: %w", err)
	}

	return recentWorkouts, nil
}

func (r *Repo) CountWorkoutExercisesSince(ctx context.Context, userID string, since time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.countExercisesSince")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM workout_exercise we
		JOIN workout w ON w.id = we.workout_id
		WHERE w.owner_id = $1 AND w.date >= $2::date`,
		userID, since.Format(DateLayout),
	).Scan(&count); err != nil {
		return -1, fmt.Errorf("count workout exercises: %w", err)
	}

	return count, nil
}

func (r *Repo) CountSetsSince(ctx context.Context, userID string, since time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.countSetsSince")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM workout_set ws
		JOIN workout_exercise we ON we.id = ws.workout_exercise_id
		JOIN workout w ON w.id = we.workout_id
		WHERE w.owner_id = $1 AND w.date >= $2::date`,
		userID, since.Format(DateLayout),
	).Scan(&count); err != nil {
		return -1, fmt.Errorf("count sets: %w", err)
	}

	return count, nil
}

// CreateWorkout inserts the workout and its whole exercises/sets tree
// in one transaction. A submitted exercise id that is not visible to
// the user fails the whole create with exercises.ErrExerciseNotFound.
func (r *Repo) CreateWorkout(ctx context.Context, userID string, params CreateWorkoutParams) (_ *WorkoutWithExercises, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("%w [rollback err: %s]", err, rollbackErr)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	createdWorkout := &WorkoutWithExercises{
		Exercises: make([]WorkoutExercise, 0),
	}
	if err = tx.QueryRow(ctx, `
		INSERT INTO workout (owner_id, name, date, notes)
		VALUES ($1, $2, $3::date, $4)
		RETURNING id, owner_id, name, date, notes, created_at, updated_at`,
		userID, params.Name, params.Date.Format(DateLayout), params.Notes,
	).Scan(
		&createdWorkout.ID, &createdWorkout.OwnerID, &createdWorkout.Name,
		&createdWorkout.Date, &createdWorkout.Notes,
		&createdWorkout.CreatedAt, &createdWorkout.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	for i, newExercise := range params.Exercises {
		position := newExercise.Position
		if position == 0 {
			position = i + 1
		}

		var insertedExercise *WorkoutExercise
		insertedExercise, err = insertWorkoutExercise(
			ctx, tx, userID, createdWorkout.ID, newExercise.ExerciseID, position, newExercise.Sets,
		)
		if err != nil {
			return nil, err
		}
		createdWorkout.Exercises = append(createdWorkout.Exercises, *insertedExercise)
	}

	sortWorkoutTree(createdWorkout)
	span.SetAttributes(attribute.Int("createdWorkout.id", createdWorkout.ID))

	return createdWorkout, nil
}

func (r *Repo) UpdateWorkout(ctx context.Context, userID string, id int, params UpdateWorkoutParams) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	// name and notes are replaced as given (nil clears), a missing
	// date keeps the stored one
	var newDate *string
	if params.Date != nil {
		formatted := params.Date.Format(DateLayout)
		newDate = &formatted
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE workout
		SET name = $3, date = COALESCE($4::date, date), notes = $5, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2`,
		id, userID, params.Name, newDate, params.Notes,
	)
	if err != nil {
		return fmt.Errorf("update workout %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

// DeleteWorkout removes the workout with its exercises and sets
// (the schema cascades).
func (r *Repo) DeleteWorkout(ctx context.Context, userID string, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx,
		`DELETE FROM workout WHERE id = $1 AND owner_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete workout %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

// AddWorkoutExercise appends one exercise (with optional sets) to an
// existing workout. Position zero is replaced with max(position)+1.
func (r *Repo) AddWorkoutExercise(ctx context.Context, userID string, workoutID int, newExercise NewWorkoutExercise) (_ *WorkoutExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("%w [rollback err: %s]", err, rollbackErr)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var workoutExists bool
	if err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM workout WHERE id = $1 AND owner_id = $2)`,
		workoutID, userID,
	).Scan(&workoutExists); err != nil {
		return nil, fmt.Errorf("check workout %d: %w", workoutID, err)
	}
	if !workoutExists {
		return nil, ErrWorkoutNotFound
	}

	position := newExercise.Position
	if position == 0 {
		if err = tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(position), 0) + 1 FROM workout_exercise WHERE workout_id = $1`,
			workoutID,
		).Scan(&position); err != nil {
			return nil, fmt.Errorf("next position: %w", err)
		}
	}

	return insertWorkoutExercise(ctx, tx, userID, workoutID, newExercise.ExerciseID, position, newExercise.Sets)
}

func (r *Repo) RemoveWorkoutExercise(ctx context.Context, userID string, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.removeExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM workout_exercise we
		WHERE we.id = $1 AND EXISTS (
			SELECT 1 FROM workout w
			WHERE w.id = we.workout_id AND w.owner_id = $2
		)`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("remove workout exercise %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutExerciseNotFound
	}

	return nil
}

// AddSet appends one set to a workout exercise. Set number zero is
// replaced with max(set_number)+1.
func (r *Repo) AddSet(ctx context.Context, userID string, workoutExerciseID int, newSet NewSet) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addSet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("%w [rollback err: %s]", err, rollbackErr)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var workoutExerciseExists bool
	if err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM workout_exercise we
			JOIN workout w ON w.id = we.workout_id
			WHERE we.id = $1 AND w.owner_id = $2
		)`,
		workoutExerciseID, userID,
	).Scan(&workoutExerciseExists); err != nil {
		return nil, fmt.Errorf("check workout exercise %d: %w", workoutExerciseID, err)
	}
	if !workoutExerciseExists {
		return nil, ErrWorkoutExerciseNotFound
	}

	setNumber := newSet.SetNumber
	if setNumber == 0 {
		if err = tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(set_number), 0) + 1 FROM workout_set WHERE workout_exercise_id = $1`,
			workoutExerciseID,
		).Scan(&setNumber); err != nil {
			return nil, fmt.Errorf("next set number: %w", err)
		}
	}

	addedSet := &Set{
		WorkoutExerciseID: workoutExerciseID,
		SetNumber:         setNumber,
		Weight:            newSet.Weight,
		Reps:              newSet.Reps,
		Notes:             newSet.Notes,
	}
	if err = tx.QueryRow(ctx, `
		INSERT INTO workout_set (workout_exercise_id, set_number, weight, reps, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		workoutExerciseID, setNumber, newSet.Weight, newSet.Reps, newSet.Notes,
	).Scan(&addedSet.ID); err != nil {
		return nil, fmt.Errorf("insert set: %w", err)
	}

	span.SetAttributes(attribute.Int("addedSet.id", addedSet.ID))

	return addedSet, nil
}

func (r *Repo) UpdateSet(ctx context.Context, userID string, id int, params UpdateSetParams) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.updateSet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		UPDATE workout_set ws
		SET set_number = $3, weight = $4, reps = $5, notes = $6
		WHERE ws.id = $1 AND EXISTS (
			SELECT 1 FROM workout_exercise we
			JOIN workout w ON w.id = we.workout_id
			WHERE we.id = ws.workout_exercise_id AND w.owner_id = $2
		)`,
		id, userID, params.SetNumber, params.Weight, params.Reps, params.Notes,
	)
	if err != nil {
		return fmt.Errorf("update set %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}

	return nil
}

func (r *Repo) DeleteSet(ctx context.Context, userID string, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteSet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM workout_set ws
		WHERE ws.id = $1 AND EXISTS (
			SELECT 1 FROM workout_exercise we
			JOIN workout w ON w.id = we.workout_id
			WHERE we.id = ws.workout_exercise_id AND w.owner_id = $2
		)`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete set %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}

	return nil
}

// insertWorkoutExercise resolves the exercise from the catalog (system
// or owned by the user), inserts the workout exercise row and its sets.
// Runs within the caller's transaction.
func insertWorkoutExercise(
	ctx context.Context,
	tx pgx.Tx,
	userID string,
	workoutID, exerciseID, position int,
	sets []NewSet,
) (*WorkoutExercise, error) {
	var exerciseName string
	err := tx.QueryRow(ctx,
		`SELECT name FROM exercise WHERE id = $1 AND (owner_id IS NULL OR owner_id = $2)`,
		exerciseID, userID,
	).Scan(&exerciseName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, exercises.ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check exercise %d: %w", exerciseID, err)
	}

	insertedExercise := &WorkoutExercise{
		WorkoutID:    workoutID,
		ExerciseID:   exerciseID,
		ExerciseName: exerciseName,
		Position:     position,
		Sets:         make([]Set, 0),
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO workout_exercise (workout_id, exercise_id, position)
		VALUES ($1, $2, $3)
		RETURNING id`,
		workoutID, exerciseID, position,
	).Scan(&insertedExercise.ID); err != nil {
		return nil, fmt.Errorf("insert workout exercise: %w", err)
	}

	for i, newSet := range sets {
		setNumber := newSet.SetNumber
		if setNumber == 0 {
			setNumber = i + 1
		}

		insertedSet := Set{
			WorkoutExerciseID: insertedExercise.ID,
			SetNumber:         setNumber,
			Weight:            newSet.Weight,
			Reps:              newSet.Reps,
			Notes:             newSet.Notes,
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO workout_set (workout_exercise_id, set_number, weight, reps, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			insertedExercise.ID, setNumber, newSet.Weight, newSet.Reps, newSet.Notes,
		).Scan(&insertedSet.ID); err != nil {
			return nil, fmt.Errorf("insert set: %w", err)
		}
		insertedExercise.Sets = append(insertedExercise.Sets, insertedSet)
	}

	sortSets(insertedExercise.Sets)

	return insertedExercise, nil
}
