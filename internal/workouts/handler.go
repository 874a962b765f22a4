package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/exercises"
	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/internal/validation"
	"github.com/2beens/liftlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	GetWorkoutsByDate(ctx context.Context, userID string, date time.Time) ([]WorkoutWithExercises, error)
	CountWorkouts(ctx context.Context, userID string) (int, error)
	RecentWorkouts(ctx context.Context, userID string, limit int) ([]RecentWorkout, error)
	CountWorkoutExercisesSince(ctx context.Context, userID string, since time.Time) (int, error)
	CountSetsSince(ctx context.Context, userID string, since time.Time) (int, error)
	CreateWorkout(ctx context.Context, userID string, params CreateWorkoutParams) (*WorkoutWithExercises, error)
	UpdateWorkout(ctx context.Context, userID string, id int, params UpdateWorkoutParams) error
	DeleteWorkout(ctx context.Context, userID string, id int) error
	AddWorkoutExercise(ctx context.Context, userID string, workoutID int, newExercise NewWorkoutExercise) (*WorkoutExercise, error)
	RemoveWorkoutExercise(ctx context.Context, userID string, id int) error
	AddSet(ctx context.Context, userID string, workoutExerciseID int, newSet NewSet) (*Set, error)
	UpdateSet(ctx context.Context, userID string, id int, params UpdateSetParams) error
	DeleteSet(ctx context.Context, userID string, id int) error
}

type UpdateWorkoutResponse struct {
	UpdatedID int `json:"updatedId"`
}

type DeleteWorkoutResponse struct {
	DeletedID int `json:"deletedId"`
}

type RemoveExerciseResponse struct {
	DeletedID int `json:"deletedId"`
}

type UpdateSetResponse struct {
	UpdatedID int `json:"updatedId"`
}

type DeleteSetResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo     workoutsRepo
	analyzer *Analyzer
	metrics  *metrics.Manager
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:     repo,
		analyzer: NewAnalyzer(repo),
		metrics:  metricsManager,
	}
}

func (handler *Handler) HandleGetByDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.getByDate")
	defer span.End()

	// no logged user - no workouts
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONResponseOK(w, "[]")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		http.Error(w, "error, date empty", http.StatusBadRequest)
		return
	}
	date, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		http.Error(w, "error, date must be in yyyy-mm-dd format", http.StatusBadRequest)
		return
	}

	workoutTrees, err := handler.repo.GetWorkoutsByDate(ctx, userID, date)
	if err != nil {
		log.Errorf("get workouts on [%s] for user [%s]: %s", dateStr, userID, err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	workoutsJson, err := json.Marshal(workoutTrees)
	if err != nil {
		log.Errorf("failed to marshal workouts: %s", err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutsJson, http.StatusOK)
}

func (handler *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.summary")
	defer span.End()

	// no logged user - show the empty dashboard, the store stays untouched
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		emptySummary, err := json.Marshal(WorkoutSummary{
			RecentWorkouts: make([]RecentWorkout, 0),
		})
		if err != nil {
			http.Error(w, "failed to get summary", http.StatusInternalServerError)
			return
		}
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, emptySummary, http.StatusOK)
		return
	}

	summary, err := handler.analyzer.Summary(ctx, userID)
	if err != nil {
		log.Errorf("get workout summary for user [%s]: %s", userID, err)
		http.Error(w, "failed to get summary", http.StatusInternalServerError)
		return
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("failed to marshal workout summary: %s", err)
		http.Error(w, "failed to get summary", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summaryJson, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var newWorkout NewWorkout
	if err := json.NewDecoder(r.Body).Decode(&newWorkout); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	date, err := validateNewWorkout(newWorkout)
	if err != nil {
		var valErr *validation.Error
		if errors.As(err, &valErr) {
			validation.WriteError(w, valErr)
			return
		}
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	createdWorkout, err := handler.repo.CreateWorkout(ctx, userID, CreateWorkoutParams{
		Name:      newWorkout.Name,
		Date:      date,
		Notes:     newWorkout.Notes,
		Exercises: newWorkout.Exercises,
	})
	switch {
	case errors.Is(err, exercises.ErrExerciseNotFound):
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("failed to add new workout for user [%s]: %s", userID, err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	createdWorkoutJson, err := json.Marshal(createdWorkout)
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkouts.Inc()
	setsCount := 0
	for _, workoutExercise := range createdWorkout.Exercises {
		setsCount += len(workoutExercise.Sets)
	}
	if setsCount > 0 {
		handler.metrics.CounterSets.Add(float64(setsCount))
	}

	log.Debugf("new workout added for user [%s]: %d", userID, createdWorkout.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, createdWorkoutJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	var updateReq UpdateWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Tracef("update workout, unmarshal json params: %s", err)
		http.Error(w, "update workout failed", http.StatusBadRequest)
		return
	}

	date, err := validateUpdateWorkout(updateReq)
	if err != nil {
		var valErr *validation.Error
		if errors.As(err, &valErr) {
			validation.WriteError(w, valErr)
			return
		}
		http.Error(w, "update workout failed", http.StatusBadRequest)
		return
	}

	switch err := handler.repo.UpdateWorkout(ctx, userID, id, UpdateWorkoutParams{
		Name:  updateReq.Name,
		Date:  date,
		Notes: updateReq.Notes,
	}); {
	case errors.Is(err, ErrWorkoutNotFound):
		log.Debugf("workout %d not found for user [%s]", id, userID)
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("failed to update workout %d: %s", id, err)
		http.Error(w, "workout not updated", http.StatusInternalServerError)
		return
	}

	updateRespJson, err := json.Marshal(UpdateWorkoutResponse{
		UpdatedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal update response: %s", err)
		http.Error(w, "failed to marshal update response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(updateRespJson))
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	switch err := handler.repo.DeleteWorkout(ctx, userID, id); {
	case errors.Is(err, ErrWorkoutNotFound):
		log.Debugf("workout %d not found for user [%s]", id, userID)
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("failed to delete workout %d: %s", id, err)
		http.Error(w, "workout not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteWorkoutResponse{
		DeletedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func (handler *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addExercise")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	workoutID, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	var newExercise NewWorkoutExercise
	if err := json.NewDecoder(r.Body).Decode(&newExercise); err != nil {
		log.Tracef("add workout exercise, unmarshal json params: %s", err)
		http.Error(w, "add workout exercise failed", http.StatusBadRequest)
		return
	}

	valErr := validation.NewError()
	validateNewWorkoutExercise("", newExercise, valErr)
	if err := valErr.OrNil(); err != nil {
		validation.WriteError(w, valErr)
		return
	}

	addedExercise, err := handler.repo.AddWorkoutExercise(ctx, userID, workoutID, newExercise)
	switch {
	case errors.Is(err, ErrWorkoutNotFound):
		log.Debugf("workout %d not found for user [%s]", workoutID, userID)
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	case errors.Is(err, exercises.ErrExerciseNotFound):
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("failed to add exercise to workout %d: %s", workoutID, err)
		http.Error(w, "error, failed to add workout exercise", http.StatusInternalServerError)
		return
	}

	addedExerciseJson, err := json.Marshal(addedExercise)
	if err != nil {
		log.Errorf("failed to marshal added workout exercise: %s", err)
		http.Error(w, "error, failed to add workout exercise", http.StatusInternalServerError)
		return
	}

	if len(addedExercise.Sets) > 0 {
		handler.metrics.CounterSets.Add(float64(len(addedExercise.Sets)))
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedExerciseJson, http.StatusCreated)
}

func (handler *Handler) HandleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.removeExercise")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	switch err := handler.repo.RemoveWorkoutExercise(ctx, userID, id); {
	case errors.Is(err, ErrWorkoutExerciseNotFound):
		log.Debugf("workout exercise %d not found for user [%s]", id, userID)
		http.Error(w, "workout exercise not found", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("failed to remove workout exercise %d: %s", id, err)
		http.Error(w, "workout exercise not removed", http.StatusInternalServerError)
		return
	}

	removeRespJson, err := json.Marshal(RemoveExerciseResponse{
		DeletedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal remove response: %s", err)
		http.Error(w, "failed to marshal remove response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(removeRespJson))
}

func (handler *Handler) HandleAddSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addSet")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	workoutExerciseID, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	var newSet NewSet
	if err := json.NewDecoder(r.Body).Decode(&newSet); err != nil {
		log.Tracef("add set, unmarshal json params: %s", err)
		http.Error(w, "add set failed", http.StatusBadRequest)
		return
	}

	valErr := validation.NewError()
	validateNewSet("", newSet, valErr)
	if err := valErr.OrNil(); err != nil {
		validation.WriteError(w, valErr)
		return
	}

	addedSet, err := handler.repo.AddSet(ctx, userID, workoutExerciseID, newSet)
	switch {
	case errors.Is(err, ErrWorkoutExerciseNotFound):
		log.Debugf("workout exercise %d not found for user [%s]", workoutExerciseID, userID)
		http.Error(w, "workout exercise not found", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("failed to add set to workout exercise %d: %s", workoutExerciseID, err)
		http.Error(w, "error, failed to add set", http.StatusInternalServerError)
		return
	}

	addedSetJson, err := json.Marshal(addedSet)
	if err != nil {
		log.Errorf("failed to marshal added set: %s", err)
		http.Error(w, "error, failed to add set", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterSets.Inc()
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedSetJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateSet")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	var updateReq UpdateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Tracef("update set, unmarshal json params: %s", err)
		http.Error(w, "update set failed", http.StatusBadRequest)
		return
	}

	if err := validateUpdateSet(updateReq); err != nil {
		var valErr *validation.Error
		if errors.As(err, &valErr) {
			validation.WriteError(w, valErr)
			return
		}
		http.Error(w, "update set failed", http.StatusBadRequest)
		return
	}

	switch err := handler.repo.UpdateSet(ctx, userID, id, UpdateSetParams{
		SetNumber: updateReq.SetNumber,
		Weight:    updateReq.Weight,
		Reps:      updateReq.Reps,
		Notes:     updateReq.Notes,
	}); {
	case errors.Is(err, ErrSetNotFound):
		log.Debugf("set %d not found for user [%s]", id, userID)
		http.Error(w, "set not found", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("failed to update set %d: %s", id, err)
		http.Error(w, "set not updated", http.StatusInternalServerError)
		return
	}

	updateRespJson, err := json.Marshal(UpdateSetResponse{
		UpdatedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal update response: %s", err)
		http.Error(w, "failed to marshal update response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(updateRespJson))
}

func (handler *Handler) HandleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteSet")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	switch err := handler.repo.DeleteSet(ctx, userID, id); {
	case errors.Is(err, ErrSetNotFound):
		log.Debugf("set %d not found for user [%s]", id, userID)
		http.Error(w, "set not found", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("failed to delete set %d: %s", id, err)
		http.Error(w, "set not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteSetResponse{
		DeletedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}
