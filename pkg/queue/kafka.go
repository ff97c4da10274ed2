package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher is the producing side of the event queue. Services depend on
// this interface so tests can swap in a no-op implementation.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

type KafkaProducer struct {
	writer *kafka.Writer
}

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Async:    false,
	}

	return &KafkaProducer{writer: writer}
}

func NewKafkaConsumer(brokers []string, topic, groupID string) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1 * time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	return &KafkaConsumer{reader: reader}
}

func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	return p.writer.WriteMessages(ctx, message)
}

func (c *KafkaConsumer) Subscribe(ctx context.Context, handler func(Message) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := c.reader.ReadMessage(ctx)
			if err != nil {
				return fmt.Errorf("failed to read message: %w", err)
			}

			msg := Message{
				Key:   string(message.Key),
				Value: message.Value,
				Topic: message.Topic,
			}

			if err := handler(msg); err != nil {
				fmt.Printf("Failed to handle message: %v\n", err)
				continue
			}
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type Message struct {
	Key   string
	Value []byte
	Topic string
}

type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventProfileUpdated EventType = "profile_updated"
	EventPostCreated    EventType = "post_created"
	EventPostUpdated    EventType = "post_updated"
	EventPostDeleted    EventType = "post_deleted"
	EventLikeToggled    EventType = "like_toggled"
	EventFollowToggled  EventType = "follow_toggled"
	EventCommentCreated EventType = "comment_created"
	EventMessageSent    EventType = "message_sent"
)

type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent marshals the payload so consumers can decode Data into the
// matching typed struct.
func NewEvent(eventType EventType, timestamp time.Time, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return Event{Type: eventType, Timestamp: timestamp, Data: raw}, nil
}

type UserEventData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type PostEventData struct {
	PostID   string `json:"post_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Caption  string `json:"caption"`
}

type LikeEventData struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
	PostID    string `json:"post_id"`
	OwnerID   string `json:"owner_id"`
	Liked     bool   `json:"liked"`
}

type FollowEventData struct {
	FollowerID   string `json:"follower_id"`
	FollowerName string `json:"follower_name"`
	FollowedID   string `json:"followed_id"`
	Following    bool   `json:"following"`
}

type CommentEventData struct {
	CommentID string `json:"comment_id"`
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
	PostID    string `json:"post_id"`
	OwnerID   string `json:"owner_id"`
	Text      string `json:"text"`
}

type MessageEventData struct {
	MessageID   string `json:"message_id"`
	ChatID      string `json:"chat_id"`
	SenderID    string `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}
