package consumers

import (
	"context"
	"fmt"

	"github.com/smartstock/smartstock-backend/internal/stock/service"
	"github.com/smartstock/smartstock-backend/pkg/logger"
	"github.com/smartstock/smartstock-backend/pkg/messaging"
)

// UserConsumer reacts to user lifecycle events from the user service. Its one
// job is keeping stock attribution in sync when a username is renamed.
type UserConsumer struct {
	consumer *messaging.Consumer
	rename   *service.RenameService
	logger   *logger.Logger
}

// NewUserConsumer creates a consumer bound to the user events exchange
func NewUserConsumer(rmq *messaging.RabbitMQ, rename *service.RenameService, log *logger.Logger) (*UserConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "stock-service.user-events", log)
	if err != nil {
		return nil, fmt.Errorf("failed to create user consumer: %w", err)
	}

	if err := consumer.Subscribe(messaging.ExchangeUserEvents, "user.#"); err != nil {
		return nil, fmt.Errorf("failed to subscribe to user events: %w", err)
	}

	c := &UserConsumer{
		consumer: consumer,
		rename:   rename,
		logger:   log.WithComponent("user-consumer"),
	}

	consumer.RegisterHandler(messaging.EventUserUpdated, c.handleUserUpdated)
	consumer.RegisterHandler(messaging.EventUserDeleted, c.handleUserDeleted)

	return c, nil
}

// Start begins consuming user events
func (c *UserConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// handleUserUpdated propagates username renames across stock attribution.
// Returning an error requeues the message, so the rename is retried until the
// ledger and the audit trail both reflect the new name.
func (c *UserConsumer) handleUserUpdated(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserUpdatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("failed to unmarshal user updated event: %w", err)
	}

	if !data.UsernameChanged() {
		return nil
	}

	c.logger.Info().
		Int64("user_id", data.UserID).
		Str("old_username", *data.OldUsername).
		Str("new_username", *data.NewUsername).
		Msg("propagating username rename")

	return c.rename.PropagateUsername(ctx, *data.OldUsername, *data.NewUsername)
}

// handleUserDeleted logs the deletion. Historical attribution is kept: rows
// written by a deleted user still carry their username.
func (c *UserConsumer) handleUserDeleted(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserDeletedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("failed to unmarshal user deleted event: %w", err)
	}

	c.logger.Info().
		Int64("user_id", data.UserID).
		Str("username", data.Username).
		Msg("user deleted, retaining historical attribution")
	return nil
}
