// Package client implements the delete-user form as a Go component.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// GenericFailureMessage is shown when the request could not complete.
const GenericFailureMessage = "An error occurred while trying to delete the user."

var (
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not finished.
	ErrSubmitInFlight = errors.New("a delete request is already in flight")
	// ErrUsernameRequired is returned for an empty username; nothing is sent.
	ErrUsernameRequired = errors.New("username is required")
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Notifier surfaces a result message to the operator.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Notify calls f(message).
func (f NotifierFunc) Notify(message string) { f(message) }

// Outcome is the server's answer to a submission.
type Outcome struct {
	StatusCode int
	Message    string
}

// OK reports whether the server accepted the deletion.
func (o Outcome) OK() bool {
	return o.StatusCode >= 200 && o.StatusCode < 300
}

// Config configures a DeleteUserForm.
type Config struct {
	Endpoint string
	APIKey   string
	Doer     Doer
	Notifier Notifier
	Logger   *slog.Logger
}

// DeleteUserForm submits delete-user requests, one at a time.
type DeleteUserForm struct {
	endpoint string
	apiKey   string
	doer     Doer
	notifier Notifier
	logger   *slog.Logger

	inFlight atomic.Bool
}

// NewDeleteUserForm creates a form bound to an endpoint and transport.
func NewDeleteUserForm(cfg Config) (*DeleteUserForm, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if cfg.Doer == nil {
		cfg.Doer = http.DefaultClient
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NotifierFunc(func(string) {})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &DeleteUserForm{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		doer:     cfg.Doer,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}, nil
}

// InFlight reports whether a submission is outstanding.
func (f *DeleteUserForm) InFlight() bool {
	return f.inFlight.Load()
}

// Submit posts username to the endpoint and notifies the result.
//
// The server's message is notified as is on success and prefixed with
// "Error: " otherwise. When the request fails or the reply cannot be parsed,
// the error is logged, GenericFailureMessage is notified and the error is
// returned.
func (f *DeleteUserForm) Submit(ctx context.Context, username string) (Outcome, error) {
	if username == "" {
		return Outcome{}, ErrUsernameRequired
	}
	if !f.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, ErrSubmitInFlight
	}
	defer f.inFlight.Store(false)

	out, err := f.send(ctx, username)
	if err != nil {
		f.logger.Error("delete user request failed",
			slog.String("endpoint", f.endpoint),
			slog.String("error", err.Error()),
		)
		f.notifier.Notify(GenericFailureMessage)
		return Outcome{}, err
	}

	if out.OK() {
		f.notifier.Notify(out.Message)
	} else {
		f.notifier.Notify("Error: " + out.Message)
	}
	return out, nil
}

type deleteUserRequest struct {
	Username string `json:"username"`
}

// replyBody covers both the handler's {"message"} body and the gate's
// {"error":{"message"}} body.
type replyBody struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *DeleteUserForm) send(ctx context.Context, username string) (Outcome, error) {
	payload, err := json.Marshal(deleteUserRequest{Username: username})
	if err != nil {
		return Outcome{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Outcome{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.doer.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var body replyBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Outcome{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	msg := body.Message
	if msg == "" && body.Error != nil {
		msg = body.Error.Message
	}
	return Outcome{StatusCode: resp.StatusCode, Message: msg}, nil
}
