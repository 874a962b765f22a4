package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/coocood/freecache"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseInUse    = errors.New("exercise in use")
	ErrExerciseExists   = errors.New("exercise already exists")
)

const (
	oneHour            = 60 * 60
	catalogCacheExpire = oneHour
)

type Repo struct {
	db    *pgxpool.Pool
	cache *freecache.Cache
}

func NewRepo(db *pgxpool.Pool) *Repo {
	megabyte := 1024 * 1024
	cacheSize := 10 * megabyte

	return &Repo{
		db:    db,
		cache: freecache.NewCache(cacheSize),
	}
}

// ListVisible returns the catalog as seen by the given user: system
// entries plus the entries they created themselves. Results are cached
// per user and invalidated on catalog writes.
func (r *Repo) ListVisible(ctx context.Context, userID string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list_visible")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cacheKey := visibleCacheKey(userID)
	if cachedBytes, err := r.cache.Get(cacheKey); err == nil {
		var cached []Exercise
		if err = json.Unmarshal(cachedBytes, &cached); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
		log.Errorf("failed to unmarshal cached exercises for user [%s]: %s", userID, err)
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, name, primary_muscle, secondary_muscles, owner_id, created_at
			FROM exercise
			WHERE owner_id IS NULL OR owner_id = $1
			ORDER BY name ASC, id ASC
		`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("exercises [query]: %w", err)
	}
	defer rows.Close()

	exercisesList := make([]Exercise, 0)
	for rows.Next() {
		var exercise Exercise
		if err := rows.Scan(
			&exercise.ID,
			&exercise.Name,
			&exercise.PrimaryMuscle,
			&exercise.SecondaryMuscles,
			&exercise.OwnerID,
			&exercise.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("exercises [rows scan]: %w", err)
		}
		exercisesList = append(exercisesList, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("exercises [rows error]: %w", err)
	}

	if listBytes, err := json.Marshal(exercisesList); err == nil {
		if err := r.cache.Set(cacheKey, listBytes, catalogCacheExpire); err != nil {
			log.Errorf("failed to cache exercises for user [%s]: %s", userID, err)
		}
	}

	return exercisesList, nil
}

// Add creates a user owned catalog entry and returns it with the
// generated id set. A name the owner already uses is rejected with
// ErrExerciseExists.
func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO exercise
				(name, primary_muscle, secondary_muscles, owner_id, created_at)
				VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
		exercise.Name, exercise.PrimaryMuscle, exercise.SecondaryMuscles, exercise.OwnerID, exercise.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrExerciseExists
		}
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			// names are unique per owner, a clash is a client error
			if pkg.IsUniqueViolationError(err) {
				return nil, ErrExerciseExists
			}
			return nil, err
		}
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", id))

	exercise.ID = id
	if exercise.OwnerID != nil {
		r.invalidateVisible(*exercise.OwnerID)
	}

	return &exercise, nil
}

// Delete removes a catalog entry owned by the given user. System
// entries and entries of other users are never touched. An entry still
// referenced by a workout is rejected with ErrExerciseInUse.
func (r *Repo) Delete(ctx context.Context, userID string, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercise WHERE id = $1 AND owner_id = $2`,
		id, userID,
	)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return ErrExerciseInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	r.invalidateVisible(userID)

	return nil
}

// SeedSystemCatalog upserts the given system entries, skipping names
// already present. Returns the number of newly inserted entries.
func (r *Repo) SeedSystemCatalog(ctx context.Context, entries []Exercise) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.seed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("%w [rollback err: %s]", err, rollbackErr)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	inserted := 0
	for _, entry := range entries {
		tag, err := tx.Exec(
			ctx,
			`INSERT INTO exercise
					(name, primary_muscle, secondary_muscles, owner_id, created_at)
					VALUES ($1, $2, $3, NULL, NOW())
				ON CONFLICT (name) WHERE owner_id IS NULL DO NOTHING;`,
			entry.Name, entry.PrimaryMuscle, entry.SecondaryMuscles,
		)
		if err != nil {
			return 0, fmt.Errorf("seed exercise [%s]: %w", entry.Name, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if inserted > 0 {
		r.cache.Clear()
	}

	span.SetAttributes(attribute.Int("seeded", inserted))
	return inserted, nil
}

func (r *Repo) invalidateVisible(userID string) {
	r.cache.Del(visibleCacheKey(userID))
}

func visibleCacheKey(userID string) []byte {
	return []byte("visible::" + userID)
}
