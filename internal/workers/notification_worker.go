package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/socialapp/socialapp/internal/models"
	"github.com/socialapp/socialapp/internal/repository"
	"github.com/socialapp/socialapp/pkg/cache"
	"github.com/socialapp/socialapp/pkg/logger"
	"github.com/socialapp/socialapp/pkg/queue"
)

// NotificationWorker consumes activity events and materializes
// notification rows for the affected account. Un-toggles and
// self-directed activity produce no notification.
type NotificationWorker struct {
	notificationRepo repository.NotificationRepository
	cache            *cache.RedisClient
	consumer         *queue.KafkaConsumer
	logger           *logger.Logger
}

func NewNotificationWorker(
	notificationRepo repository.NotificationRepository,
	cache *cache.RedisClient,
	consumer *queue.KafkaConsumer,
	logger *logger.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		notificationRepo: notificationRepo,
		cache:            cache,
		consumer:         consumer,
		logger:           logger,
	}
}

func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker...")

	return w.consumer.Subscribe(ctx, func(msg queue.Message) error {
		var event queue.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal event: %w", err)
		}

		w.logger.WithFields(map[string]interface{}{
			"event_type": event.Type,
			"timestamp":  event.Timestamp,
		}).Info("Processing event")

		switch event.Type {
		case queue.EventLikeToggled:
			return w.handleLikeToggled(ctx, event)
		case queue.EventCommentCreated:
			return w.handleCommentCreated(ctx, event)
		case queue.EventFollowToggled:
			return w.handleFollowToggled(ctx, event)
		case queue.EventMessageSent:
			return w.handleMessageSent(ctx, event)
		case queue.EventPostCreated, queue.EventPostUpdated, queue.EventPostDeleted:
			return w.handlePostChanged(ctx, event)
		default:
			w.logger.WithField("event_type", event.Type).Warn("Unknown event type")
			return nil
		}
	})
}

func (w *NotificationWorker) Stop() error {
	return w.consumer.Close()
}

func (w *NotificationWorker) handleLikeToggled(ctx context.Context, event queue.Event) error {
	var data queue.LikeEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("invalid like event data: %w", err)
	}

	if !data.Liked {
		return nil
	}

	return w.notify(ctx, &models.Notification{
		Type:       "like",
		TargetType: "post",
		TargetID:   data.PostID,
		Message:    fmt.Sprintf("%s liked your post", data.ActorName),
	}, data.ActorID, data.OwnerID)
}

func (w *NotificationWorker) handleCommentCreated(ctx context.Context, event queue.Event) error {
	var data queue.CommentEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("invalid comment event data: %w", err)
	}

	return w.notify(ctx, &models.Notification{
		Type:       "comment",
		TargetType: "post",
		TargetID:   data.PostID,
		Message:    fmt.Sprintf("%s commented on your post", data.ActorName),
	}, data.ActorID, data.OwnerID)
}

func (w *NotificationWorker) handleFollowToggled(ctx context.Context, event queue.Event) error {
	var data queue.FollowEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("invalid follow event data: %w", err)
	}

	if !data.Following {
		return nil
	}

	return w.notify(ctx, &models.Notification{
		Type:       "follow",
		TargetType: "user",
		TargetID:   data.FollowerID,
		Message:    fmt.Sprintf("%s started following you", data.FollowerName),
	}, data.FollowerID, data.FollowedID)
}

func (w *NotificationWorker) handleMessageSent(ctx context.Context, event queue.Event) error {
	var data queue.MessageEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("invalid message event data: %w", err)
	}

	if data.RecipientID == "" {
		return nil
	}

	return w.notify(ctx, &models.Notification{
		Type:       "message",
		TargetType: "chat",
		TargetID:   data.ChatID,
		Message:    fmt.Sprintf("New message from %s", data.SenderName),
	}, data.SenderID, data.RecipientID)
}

// handlePostChanged only drops the shared feed cache so other API
// processes pick up the change; post events carry no recipient.
func (w *NotificationWorker) handlePostChanged(ctx context.Context, _ queue.Event) error {
	if err := w.cache.Delete(ctx, "feed:recent"); err != nil {
		w.logger.WithError(err).Warn("Failed to invalidate feed cache")
	}
	return nil
}

func (w *NotificationWorker) notify(ctx context.Context, notification *models.Notification, actorID, recipientID string) error {
	if actorID == recipientID || recipientID == "" {
		return nil
	}

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return fmt.Errorf("invalid actor ID: %w", err)
	}
	recipientUUID, err := uuid.Parse(recipientID)
	if err != nil {
		return fmt.Errorf("invalid recipient ID: %w", err)
	}

	notification.ActorID = actorUUID
	notification.RecipientID = recipientUUID

	if err := w.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	w.logger.WithFields(map[string]interface{}{
		"type":      notification.Type,
		"recipient": recipientID,
	}).Info("Notification created")

	return nil
}
