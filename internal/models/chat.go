package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat has no uniqueness constraint on its participant set; two racing
// first contacts may create two chats for the same pair, and both stay
// usable.
type Chat struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`

	Participants []User    `json:"participants,omitempty" gorm:"many2many:chat_participants;"`
	Messages     []Message `json:"messages,omitempty" gorm:"foreignKey:ChatID"`
}

type ChatParticipant struct {
	ChatID   uuid.UUID `json:"chat_id" gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

type Message struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ChatID    uuid.UUID `json:"chat_id" gorm:"type:uuid;not null;index"`
	SenderID  uuid.UUID `json:"sender_id" gorm:"type:uuid;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Chat   Chat `json:"-" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Sender User `json:"sender" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
}

func (Chat) TableName() string {
	return "chats"
}

func (ChatParticipant) TableName() string {
	return "chat_participants"
}

func (Message) TableName() string {
	return "messages"
}
