package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventWrapsData(t *testing.T) {
	data := StockIngressedEvent{
		MaterialCode: "MAT-001",
		Location:     "A-01-01",
		Quantity:     "10",
		NewTotal:     "25",
		Username:     "alice",
	}

	event, err := NewEvent(EventStockIngressed, "stock-service", "corr-1", data)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventStockIngressed, event.Type)
	assert.Equal(t, "stock-service", event.Source)
	assert.Equal(t, "corr-1", event.CorrelationID)

	var decoded StockIngressedEvent
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, data, decoded)
}

func TestUserUpdatedEvent_UsernameChanged(t *testing.T) {
	oldName := "alice"
	newName := "alicia"
	same := "alice"

	tests := []struct {
		name  string
		event UserUpdatedEvent
		want  bool
	}{
		{"no rename fields", UserUpdatedEvent{UserID: 1}, false},
		{"only old set", UserUpdatedEvent{OldUsername: &oldName}, false},
		{"renamed", UserUpdatedEvent{OldUsername: &oldName, NewUsername: &newName}, true},
		{"same name", UserUpdatedEvent{OldUsername: &oldName, NewUsername: &same}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.UsernameChanged())
		})
	}
}
