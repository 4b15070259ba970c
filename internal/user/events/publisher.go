package events

import (
	"context"

	"github.com/smartstock/smartstock-backend/internal/user/repository"
	"github.com/smartstock/smartstock-backend/pkg/logger"
	"github.com/smartstock/smartstock-backend/pkg/messaging"
)

// UserEventPublisher publishes user lifecycle events to the user.events exchange.
type UserEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewUserEventPublisher creates a new user event publisher
func NewUserEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*UserEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeUserEvents, "user-service", log)
	if err != nil {
		return nil, err
	}

	return &UserEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishUserCreated publishes a user created event
func (p *UserEventPublisher) PublishUserCreated(ctx context.Context, user *repository.User) {
	data := messaging.UserCreatedEvent{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	if err := p.publisher.Publish(ctx, messaging.EventUserCreated, data); err != nil {
		p.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to publish user created event")
	}
}

// PublishUserUpdated publishes a user updated event. When oldUsername differs
// from the user's current username the event carries the rename, which the
// stock service uses to re-attribute its rows.
func (p *UserEventPublisher) PublishUserUpdated(ctx context.Context, user *repository.User, changes map[string]any, oldUsername string) {
	data := messaging.UserUpdatedEvent{
		UserID: user.ID,
		Fields: changes,
	}

	if oldUsername != "" && oldUsername != user.Username {
		data.OldUsername = &oldUsername
		data.NewUsername = &user.Username
	}

	if err := p.publisher.Publish(ctx, messaging.EventUserUpdated, data); err != nil {
		p.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to publish user updated event")
	}
}

// PublishUserDeleted publishes a user deleted event
func (p *UserEventPublisher) PublishUserDeleted(ctx context.Context, userID int64, username string) {
	data := messaging.UserDeletedEvent{
		UserID:   userID,
		Username: username,
	}

	if err := p.publisher.Publish(ctx, messaging.EventUserDeleted, data); err != nil {
		p.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to publish user deleted event")
	}
}
