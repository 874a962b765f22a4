package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/2beens/liftlog/internal/exercises"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validationErrResponse mirrors the JSON shape of rejected mutation input.
type validationErrResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func (s *IntegrationTestSuite) listExercisesRequest(ctx context.Context, token string) []exercises.Exercise {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/exercises", serverEndpoint),
		nil,
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	if token != "" {
		req.Header.Set("X-LIFTLOG-TOKEN", token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	var exercisesList []exercises.Exercise
	require.NoError(s.T(), json.Unmarshal(respBytes, &exercisesList))

	return exercisesList
}

func (s *IntegrationTestSuite) newExerciseRequest(
	ctx context.Context,
	token string,
	newExercise exercises.NewExerciseRequest,
) exercises.Exercise {
	newExerciseJson, err := json.Marshal(newExercise)
	require.NoError(s.T(), err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/exercises", serverEndpoint),
		bytes.NewReader(newExerciseJson),
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-LIFTLOG-TOKEN", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	var addedExercise exercises.Exercise
	require.NoError(s.T(), json.Unmarshal(respBytes, &addedExercise))

	return addedExercise
}

// deleteExerciseRequest fires the delete and returns the raw response,
// the called test asserts the status it expects.
func (s *IntegrationTestSuite) deleteExerciseRequest(ctx context.Context, token string, id int) *http.Response {
	req, err := http.NewRequestWithContext(
		ctx,
		"DELETE", fmt.Sprintf("%s/exercises/%d", serverEndpoint, id),
		nil,
	)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	if token != "" {
		req.Header.Set("X-LIFTLOG-TOKEN", token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	return resp
}

func findExerciseByName(exercisesList []exercises.Exercise, name string) *exercises.Exercise {
	for i := range exercisesList {
		if exercisesList[i].Name == name {
			return &exercisesList[i]
		}
	}
	return nil
}

func (s *IntegrationTestSuite) TestExercises() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.redisDataCleanup(ctx))
	s.deleteAllWorkouts(ctx)

	token := s.doLogin(ctx, testUsername, testPassword)
	token2 := s.doLogin(ctx, testUsername2, testPassword)

	t.Run("anonymous list gets an empty catalog", func(t *testing.T) {
		exercisesList := s.listExercisesRequest(ctx, "")
		assert.Len(t, exercisesList, 0)
	})

	t.Run("catalog contains the seeded system entries", func(t *testing.T) {
		exercisesList := s.listExercisesRequest(ctx, token)
		require.GreaterOrEqual(t, len(exercisesList), 40)

		squat := findExerciseByName(exercisesList, "Barbell Back Squat")
		require.NotNil(t, squat)
		assert.Nil(t, squat.OwnerID)
		require.NotNil(t, squat.PrimaryMuscle)
		assert.Equal(t, "quadriceps", *squat.PrimaryMuscle)
		assert.Contains(t, squat.SecondaryMuscles, "glutes")

		// returned sorted by name
		squatIndex, pushdownIndex := -1, -1
		for i, exercise := range exercisesList {
			switch exercise.Name {
			case "Barbell Back Squat":
				squatIndex = i
			case "Triceps Pushdown":
				pushdownIndex = i
			}
		}
		require.NotEqual(t, -1, squatIndex)
		require.NotEqual(t, -1, pushdownIndex)
		assert.Less(t, squatIndex, pushdownIndex)
	})

	t.Run("user entries are visible only to their owner", func(t *testing.T) {
		addedExercise := s.newExerciseRequest(ctx, token, exercises.NewExerciseRequest{
			Name:             "Weighted Ring Dip",
			PrimaryMuscle:    strPtr("triceps"),
			SecondaryMuscles: []string{"chest", "front delts"},
		})
		require.Greater(t, addedExercise.ID, 0)
		require.NotNil(t, addedExercise.OwnerID)
		assert.Equal(t, testUsers[0].ID, *addedExercise.OwnerID)

		ownerList := s.listExercisesRequest(ctx, token)
		assert.NotNil(t, findExerciseByName(ownerList, "Weighted Ring Dip"))

		otherList := s.listExercisesRequest(ctx, token2)
		assert.Nil(t, findExerciseByName(otherList, "Weighted Ring Dip"))
	})

	t.Run("invalid new exercise is rejected with a field map", func(t *testing.T) {
		badExerciseJson, err := json.Marshal(exercises.NewExerciseRequest{
			Name:             "",
			SecondaryMuscles: []string{"chest", ""},
		})
		require.NoError(t, err)

		req, err := http.NewRequestWithContext(
			ctx,
			"POST", fmt.Sprintf("%s/exercises", serverEndpoint),
			bytes.NewReader(badExerciseJson),
		)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("X-LIFTLOG-TOKEN", token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		defer resp.Body.Close()

		respBytes, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var valErrResp validationErrResponse
		require.NoError(t, json.Unmarshal(respBytes, &valErrResp))
		assert.Equal(t, "validation failed", valErrResp.Error)
		assert.Equal(t, "name is required", valErrResp.Fields["name"])
		assert.Contains(t, valErrResp.Fields, "secondaryMuscles")
	})

	t.Run("anonymous add is rejected", func(t *testing.T) {
		newExerciseJson, err := json.Marshal(exercises.NewExerciseRequest{Name: "Sneaky Curl"})
		require.NoError(t, err)

		req, err := http.NewRequestWithContext(
			ctx,
			"POST", fmt.Sprintf("%s/exercises", serverEndpoint),
			bytes.NewReader(newExerciseJson),
		)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("not owned and unknown entries give the same not found", func(t *testing.T) {
		exercisesList := s.listExercisesRequest(ctx, token)
		squat := findExerciseByName(exercisesList, "Barbell Back Squat")
		require.NotNil(t, squat)

		// system entry, not owned by anybody
		resp := s.deleteExerciseRequest(ctx, token, squat.ID)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()

		// unknown id
		resp = s.deleteExerciseRequest(ctx, token, 999999)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()

		// entry of another user
		otherExercise := s.newExerciseRequest(ctx, token2, exercises.NewExerciseRequest{
			Name: "Other User Press",
		})
		resp = s.deleteExerciseRequest(ctx, token, otherExercise.ID)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("entry used by a workout cannot be deleted", func(t *testing.T) {
		usedExercise := s.newExerciseRequest(ctx, token, exercises.NewExerciseRequest{
			Name: "Landmine Press",
		})
		createdWorkout := s.newWorkoutRequest(ctx, token, newWorkoutWithExercise(usedExercise.ID))

		resp := s.deleteExerciseRequest(ctx, token, usedExercise.ID)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		resp.Body.Close()

		// after the workout is gone, the delete goes through
		s.deleteWorkoutRequest(ctx, token, createdWorkout.ID)

		resp = s.deleteExerciseRequest(ctx, token, usedExercise.ID)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		respBytes, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()

		var deleteResp exercises.DeleteExerciseResponse
		require.NoError(t, json.Unmarshal(respBytes, &deleteResp))
		assert.Equal(t, usedExercise.ID, deleteResp.DeletedID)
	})

	t.Run("anonymous delete is rejected", func(t *testing.T) {
		resp := s.deleteExerciseRequest(ctx, "", 1)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
}

func strPtr(s string) *string {
	return &s
}
