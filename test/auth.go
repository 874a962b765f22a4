package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/liftlog/internal/misc"

	"github.com/stretchr/testify/require"
)

// doLogin logs the given user in and returns the session token.
func (s *IntegrationTestSuite) doLogin(ctx context.Context, username, password string) string {
	loginReqJson, err := json.Marshal(misc.LoginRequest{
		Username: username,
		Password: password,
	})
	require.NoError(s.T(), err)

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/a/login", serverEndpoint), bytes.NewBuffer(loginReqJson))
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), respBytes)

	var loginResp misc.LoginResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &loginResp))
	require.NotEmpty(s.T(), loginResp.Token)

	return loginResp.Token
}
