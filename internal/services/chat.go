package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/socialapp/socialapp/internal/models"
	"github.com/socialapp/socialapp/internal/repository"
	"github.com/socialapp/socialapp/pkg/logger"
	"github.com/socialapp/socialapp/pkg/queue"
)

type ChatService struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	producer    queue.Publisher
	logger      *logger.Logger
}

func NewChatService(
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	producer queue.Publisher,
	logger *logger.Logger,
) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		producer:    producer,
		logger:      logger,
	}
}

type SendMessageRequest struct {
	ChatID  string `json:"chat_id" binding:"required"`
	Content string `json:"content"`
}

// OpenOrCreateChat finds a chat both users belong to, creating one with
// both as participants if none exists. Lookup and create are separate
// steps, so two simultaneous first contacts can produce two chats for
// the same pair; that duplication is accepted.
func (s *ChatService) OpenOrCreateChat(ctx context.Context, userID, partnerUsername string) (*models.Chat, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	partner, err := s.userRepo.GetByUsername(ctx, partnerUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	if partner == nil {
		return nil, ErrUserNotFound
	}

	chat, err := s.chatRepo.GetByParticipants(ctx, userUUID, partner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up chat: %w", err)
	}
	if chat != nil {
		return chat, nil
	}

	chat = &models.Chat{}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	if err := s.chatRepo.AddParticipants(ctx, chat.ID, userUUID, partner.ID); err != nil {
		return nil, fmt.Errorf("failed to add participants: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"chat_id": chat.ID,
		"user_id": userID,
		"partner": partnerUsername,
	}).Info("Chat created")

	return chat, nil
}

// SendMessage appends an immutable message with a server timestamp.
// The sender must be a chat participant.
func (s *ChatService) SendMessage(ctx context.Context, senderID string, req *SendMessageRequest) (*models.Message, error) {
	if req.Content == "" {
		return nil, ErrContentRequired
	}

	senderUUID, err := uuid.Parse(senderID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender ID: %w", err)
	}

	chatUUID, err := uuid.Parse(req.ChatID)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	chat, err := s.chatRepo.GetByID(ctx, chatUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	var sender *models.User
	var recipientID string
	for i := range chat.Participants {
		if chat.Participants[i].ID == senderUUID {
			sender = &chat.Participants[i]
		} else {
			recipientID = chat.Participants[i].ID.String()
		}
	}
	if sender == nil {
		return nil, ErrNotParticipant
	}

	message := &models.Message{
		ChatID:   chat.ID,
		SenderID: senderUUID,
		Content:  req.Content,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	message.Sender = *sender

	event, err := queue.NewEvent(queue.EventMessageSent, message.CreatedAt, queue.MessageEventData{
		MessageID:   message.ID.String(),
		ChatID:      req.ChatID,
		SenderID:    senderID,
		SenderName:  sender.Username,
		RecipientID: recipientID,
		Content:     message.Content,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, senderID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish message sent event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"chat_id":    req.ChatID,
		"message_id": message.ID,
	}).Info("Message sent")

	return message, nil
}

// LoadMessages returns the full chat history in ascending timestamp
// order. No pagination; this mirrors the chat UI contract.
func (s *ChatService) LoadMessages(ctx context.Context, chatID string) ([]*models.Message, error) {
	chatUUID, err := uuid.Parse(chatID)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	chat, err := s.chatRepo.GetByID(ctx, chatUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	messages, err := s.messageRepo.GetByChatID(ctx, chatUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}

// Partners lists the other participant of each chat the user belongs
// to, deduplicated. Duplicate chats for the same pair collapse to one
// entry here.
func (s *ChatService) Partners(ctx context.Context, userID string) ([]*models.User, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	chats, err := s.chatRepo.GetUserChats(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user chats: %w", err)
	}

	seen := make(map[uuid.UUID]bool)
	var partners []*models.User
	for _, chat := range chats {
		for i := range chat.Participants {
			p := &chat.Participants[i]
			if p.ID == userUUID || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			partners = append(partners, p)
			break
		}
	}
	return partners, nil
}
