package actor_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/smartstock/smartstock-backend/pkg/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalPlainString(t *testing.T) {
	var a actor.Actor
	require.NoError(t, json.Unmarshal([]byte(`"alice"`), &a))
	assert.Equal(t, "alice", a.Username)
}

func TestUnmarshalObject(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"username field", `{"username": "alice"}`, "alice"},
		{"user field", `{"user": "bob"}`, "bob"},
		{"name field", `{"name": "carol"}`, "carol"},
		{"username wins over user", `{"username": "alice", "user": "bob"}`, "alice"},
		{"whitespace trimmed", `"  alice  "`, "alice"},
		{"empty object", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a actor.Actor
			require.NoError(t, json.Unmarshal([]byte(tt.body), &a))
			assert.Equal(t, tt.want, a.Username)
		})
	}
}

func TestUnmarshalInsideRequest(t *testing.T) {
	type ingressRequest struct {
		Code string      `json:"code"`
		User actor.Actor `json:"user"`
	}

	var req ingressRequest
	require.NoError(t, json.Unmarshal([]byte(`{"code":"M1","user":"alice"}`), &req))
	assert.Equal(t, "alice", req.User.Username)

	require.NoError(t, json.Unmarshal([]byte(`{"code":"M1","user":{"username":"bob"}}`), &req))
	assert.Equal(t, "bob", req.User.Username)
}

func TestString(t *testing.T) {
	assert.Equal(t, "system", actor.Actor{}.String())
	assert.Equal(t, "alice", actor.Actor{Username: "alice"}.String())
	assert.True(t, actor.Actor{}.IsZero())
}

func TestContextRoundTrip(t *testing.T) {
	ctx := actor.WithActor(context.Background(), actor.Actor{Username: "alice"})
	assert.Equal(t, "alice", actor.FromContext(ctx).Username)
	assert.True(t, actor.FromContext(context.Background()).IsZero())
}
