package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/internal/validation"
	"github.com/2beens/liftlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	ListVisible(ctx context.Context, userID string) ([]Exercise, error)
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Delete(ctx context.Context, userID string, id int) error
}

type NewExerciseRequest struct {
	Name             string   `json:"name"`
	PrimaryMuscle    *string  `json:"primaryMuscle,omitempty"`
	SecondaryMuscles []string `json:"secondaryMuscles,omitempty"`
}

type DeleteExerciseResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo exercisesRepo
}

func NewHandler(repo exercisesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	// no logged user - no catalog, same as the other reads
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONResponseOK(w, "[]")
		return
	}

	visibleExercises, err := handler.repo.ListVisible(ctx, userID)
	if err != nil {
		log.Errorf("list exercises for user [%s]: %s", userID, err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	exercisesJson, err := json.Marshal(visibleExercises)
	if err != nil {
		log.Errorf("failed to marshal exercises: %s", err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exercisesJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.new")
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

	var newExercise NewExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&newExercise); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	if err := validateNewExercise(newExercise); err != nil {
		var valErr *validation.Error
		if errors.As(err, &valErr) {
			validation.WriteError(w, valErr)
			return
		}
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	addedExercise, err := handler.repo.Add(ctx, Exercise{
		Name:             newExercise.Name,
		PrimaryMuscle:    newExercise.PrimaryMuscle,
		SecondaryMuscles: newExercise.SecondaryMuscles,
		OwnerID:          &userID,
	})
	switch {
	case errors.Is(err, ErrExerciseExists):
		http.Error(w, "exercise with that name already exists", http.StatusConflict)
		return
	case err != nil:
		log.Errorf("failed to add new exercise [%s] for user [%s]: %s", newExercise.Name, userID, err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	addedExJson, err := json.Marshal(addedExercise)
	if err != nil {
		log.Errorf("failed to marshal new exercise: %s", err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("new exercise added: %s", addedExJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedExJson, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
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

	switch err := handler.repo.Delete(ctx, userID, id); {
	case errors.Is(err, ErrExerciseNotFound):
		log.Debugf("exercise %d not found for user [%s]", id, userID)
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrExerciseInUse):
		http.Error(w, "exercise is used by a workout", http.StatusConflict)
		return
	case err != nil:
		log.Errorf("failed to delete exercise %d: %s", id, err)
		http.Error(w, "exercise not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteExerciseResponse{
		DeletedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func validateNewExercise(newExercise NewExerciseRequest) error {
	valErr := validation.NewError()
	if newExercise.Name == "" {
		valErr.Set("name", "name is required")
	}
	for _, muscle := range newExercise.SecondaryMuscles {
		if muscle == "" {
			valErr.Set("secondaryMuscles", "secondary muscles must not contain empty values")
			break
		}
	}
	return valErr.OrNil()
}
