package workouts

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/telemetry/tracing"

	"golang.org/x/sync/errgroup"
)

const (
	recentWorkoutsLimit = 5
	summaryWindowDays   = 30
)

type Analyzer struct {
	repo workoutsRepo
}

func NewAnalyzer(repo workoutsRepo) *Analyzer {
	return &Analyzer{
		repo: repo,
	}
}

// Summary gathers the dashboard numbers for one user. The four store
// reads are independent and run concurrently, the first failure wins.
// The "last N days" window boundary is computed once, at call time,
// and the boundary day itself counts into the window.
func (a *Analyzer) Summary(ctx context.Context, userID string) (_ *WorkoutSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	today := time.Now().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -summaryWindowDays)

	summary := &WorkoutSummary{
		RecentWorkouts: make([]RecentWorkout, 0),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totalWorkouts, err := a.repo.CountWorkouts(gctx, userID)
		if err != nil {
			return fmt.Errorf("count workouts: %w", err)
		}
		summary.TotalWorkouts = totalWorkouts
		return nil
	})
	g.Go(func() error {
		recentWorkouts, err := a.repo.RecentWorkouts(gctx, userID, recentWorkoutsLimit)
		if err != nil {
			return fmt.Errorf("recent workouts: %w", err)
		}
		summary.RecentWorkouts = recentWorkouts
		return nil
	})
	g.Go(func() error {
		exercisesCount, err := a.repo.CountWorkoutExercisesSince(gctx, userID, since)
		if err != nil {
			return fmt.Errorf("count workout exercises: %w", err)
		}
		summary.WorkoutExercisesLast30Days = exercisesCount
		return nil
	})
	g.Go(func() error {
		setsCount, err := a.repo.CountSetsSince(gctx, userID, since)
		if err != nil {
			return fmt.Errorf("count sets: %w", err)
		}
		summary.SetsLast30Days = setsCount
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// recent workouts come most recent first, so the last workout
	// date falls out of the first element, no extra query needed
	if len(summary.RecentWorkouts) > 0 {
		summary.LastWorkoutDate = &summary.RecentWorkouts[0].Date
	}

	return summary, nil
}
