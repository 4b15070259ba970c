package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// User events
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"

	// Stock events
	EventStockIngressed   = "stock.ingressed"
	EventStockTransferred = "stock.transferred"
	EventStockWithdrawn   = "stock.withdrawn"

	// Location events
	EventLocationCreated     = "location.created"
	EventLocationDeactivated = "location.deactivated"

	// Receipt events
	EventReceiptCreated = "receipt.created"
)

// Exchange names
const (
	ExchangeUserEvents  = "user.events"
	ExchangeStockEvents = "stock.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// User Events

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserUpdatedEvent is published when a user is updated.
// OldUsername/NewUsername are set only when the username itself changed;
// consumers use them to re-attribute stock rows and movement history.
type UserUpdatedEvent struct {
	UserID int64          `json:"user_id"`
	Fields map[string]any `json:"fields"`

	OldUsername *string `json:"old_username,omitempty"`
	NewUsername *string `json:"new_username,omitempty"`
}

// UsernameChanged reports whether the update carried a username rename.
func (e *UserUpdatedEvent) UsernameChanged() bool {
	return e.OldUsername != nil && e.NewUsername != nil && *e.OldUsername != *e.NewUsername
}

// UserDeletedEvent is published when a user is deleted
type UserDeletedEvent struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Stock Events

// StockIngressedEvent is published after a successful ingress
type StockIngressedEvent struct {
	MaterialCode string `json:"material_code"`
	Location     string `json:"location"`
	Lot          string `json:"lot,omitempty"`
	Quantity     string `json:"quantity"`
	NewTotal     string `json:"new_total"`
	Username     string `json:"username"`
}

// StockTransferredEvent is published after a successful transfer
type StockTransferredEvent struct {
	MaterialCode  string `json:"material_code"`
	FromLocation  string `json:"from_location"`
	ToLocation    string `json:"to_location"`
	Quantity      string `json:"quantity"`
	FromRemaining string `json:"from_remaining"`
	ToTotal       string `json:"to_total"`
	Username      string `json:"username"`
}

// StockWithdrawnEvent is published after a successful withdrawal
type StockWithdrawnEvent struct {
	MaterialCode string `json:"material_code"`
	Location     string `json:"location"`
	Lot          string `json:"lot,omitempty"`
	Quantity     string `json:"quantity"`
	Remaining    string `json:"remaining"`
	Username     string `json:"username"`
}

// Location Events

// LocationCreatedEvent is published when a storage location is registered
type LocationCreatedEvent struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// LocationDeactivatedEvent is published when a storage location is deactivated
type LocationDeactivatedEvent struct {
	Code string `json:"code"`
}

// Receipt Events

// ReceiptCreatedEvent is published when a plant receipt is recorded
type ReceiptCreatedEvent struct {
	ReceiptID    int64  `json:"receipt_id"`
	Plant        string `json:"plant"`
	MaterialCode string `json:"material_code"`
	Quantity     string `json:"quantity"`
	Username     string `json:"username"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
