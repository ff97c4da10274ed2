package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/socialapp/socialapp/internal/models"
	"gorm.io/gorm"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	AddParticipants(ctx context.Context, chatID uuid.UUID, userIDs ...uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	GetByParticipants(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID uuid.UUID) ([]*models.Chat, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByChatID(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *models.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

func (r *chatRepository) AddParticipants(ctx context.Context, chatID uuid.UUID, userIDs ...uuid.UUID) error {
	participants := make([]models.ChatParticipant, len(userIDs))
	for i, userID := range userIDs {
		participants[i] = models.ChatParticipant{ChatID: chatID, UserID: userID}
	}
	if err := r.db.WithContext(ctx).Create(&participants).Error; err != nil {
		return fmt.Errorf("failed to add chat participants: %w", err)
	}
	return nil
}

func (r *chatRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).
		Preload("Participants").
		First(&chat, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &chat, nil
}

// GetByParticipants returns the first chat both users belong to. There
// is no uniqueness guarantee; concurrent first contacts may have
// produced more than one such chat and any of them is a valid answer.
func (r *chatRepository) GetByParticipants(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants pa ON pa.chat_id = chats.id AND pa.user_id = ?", userA).
		Joins("JOIN chat_participants pb ON pb.chat_id = chats.id AND pb.user_id = ?", userB).
		Preload("Participants").
		Order("chats.created_at ASC").
		First(&chat).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat by participants: %w", err)
	}
	return &chat, nil
}

func (r *chatRepository) GetUserChats(ctx context.Context, userID uuid.UUID) ([]*models.Chat, error) {
	var chats []*models.Chat
	if err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id").
		Where("cp.user_id = ?", userID).
		Preload("Participants").
		Order("chats.created_at DESC").
		Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("failed to get user chats: %w", err)
	}
	return chats, nil
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) GetByChatID(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	var messages []*models.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get messages by chat: %w", err)
	}
	return messages, nil
}
