package auth

import "context"

type LoginTestChecker struct {
	// LoggedSessions maps a session token to the id of the logged user
	LoggedSessions map[string]string
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		map[string]string{},
	}
}

func (c *LoginTestChecker) GetLoggedUserID(_ context.Context, token string) (string, error) {
	userID, ok := c.LoggedSessions[token]
	if !ok {
		return "", nil
	}
	return userID, nil
}
