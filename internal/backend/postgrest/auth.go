package postgrest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"novelhub/internal/backend"
)

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signUpResponse covers both shapes: a full session when sign-ups are
// auto-confirmed, or just the user while confirmation is pending.
type signUpResponse struct {
	backend.Session
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*backend.User, *backend.Session, error) {
	body, err := jsonBody(credentialsBody{Email: email, Password: password})
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.do(ctx, request{
		operation: "auth:signup",
		method:    http.MethodPost,
		path:      authPrefix + "/signup",
		body:      body,
		token:     c.anonKey,
	})
	if err != nil {
		return nil, nil, err
	}

	var result signUpResponse
	if err := decodeJSON(resp, &result); err != nil {
		return nil, nil, err
	}

	if result.AccessToken != "" {
		session := result.Session
		return &session.User, &session, nil
	}
	if result.ID == "" {
		return nil, nil, errors.New("Registration failed")
	}
	return &backend.User{ID: result.ID, Email: result.Email}, nil, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	body, err := jsonBody(credentialsBody{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return c.token(ctx, "password", body)
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*backend.Session, error) {
	body, err := jsonBody(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, err
	}
	return c.token(ctx, "refresh_token", body)
}

func (c *Client) token(ctx context.Context, grant string, body io.Reader) (*backend.Session, error) {
	resp, err := c.do(ctx, request{
		operation: "auth:token:" + grant,
		method:    http.MethodPost,
		path:      authPrefix + "/token",
		query:     url.Values{"grant_type": []string{grant}},
		body:      body,
		token:     c.anonKey,
	})
	if err != nil {
		return nil, err
	}

	var session backend.Session
	if err := decodeJSON(resp, &session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, errors.New("Login failed")
	}
	return &session, nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*backend.User, error) {
	resp, err := c.do(ctx, request{
		operation: "auth:user",
		method:    http.MethodGet,
		path:      authPrefix + "/user",
		token:     accessToken,
	})
	if err != nil {
		return nil, err
	}
	var user backend.User
	if err := decodeJSON(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, request{
		operation: "auth:logout",
		method:    http.MethodPost,
		path:      authPrefix + "/logout",
		token:     accessToken,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}
