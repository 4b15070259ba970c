// Package actor identifies the user performing warehouse operations.
//
// Clients are inconsistent about how they send the acting user: some send a
// plain string, others an object carrying a username field. Actor accepts
// both wire shapes and normalizes them to a single username.
package actor

import (
	"context"
	"encoding/json"
	"strings"
)

// Actor is the user performing an operation. It unmarshals from either a
// JSON string ("alice") or an object ({"username": "alice"}).
type Actor struct {
	Username string `json:"username"`
}

// actorObject mirrors the object wire shapes seen from clients.
type actorObject struct {
	Username string `json:"username"`
	User     string `json:"user"`
	Name     string `json:"name"`
}

// UnmarshalJSON accepts a plain string or an object exposing an identifier field.
func (a *Actor) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		a.Username = strings.TrimSpace(plain)
		return nil
	}

	var obj actorObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	switch {
	case obj.Username != "":
		a.Username = strings.TrimSpace(obj.Username)
	case obj.User != "":
		a.Username = strings.TrimSpace(obj.User)
	default:
		a.Username = strings.TrimSpace(obj.Name)
	}
	return nil
}

// MarshalJSON always emits the object form.
func (a Actor) MarshalJSON() ([]byte, error) {
	return json.Marshal(actorObject{Username: a.Username})
}

// IsZero reports whether no username was provided.
func (a Actor) IsZero() bool {
	return a.Username == ""
}

// String returns the username for logging.
func (a Actor) String() string {
	if a.Username == "" {
		return "system"
	}
	return a.Username
}

// System returns the actor used for background and system-initiated operations.
func System() Actor {
	return Actor{Username: "system"}
}

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// FromContext retrieves the Actor from the context.
// Returns the zero Actor if none is present.
func FromContext(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{}
	}
	a, _ := ctx.Value(actorContextKey).(Actor)
	return a
}
