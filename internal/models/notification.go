package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Type        string    `json:"type" gorm:"size:30;index"` // like, comment, follow, message
	ActorID     uuid.UUID `json:"actor_id" gorm:"type:uuid;not null"`
	RecipientID uuid.UUID `json:"recipient_id" gorm:"type:uuid;not null;index"`
	TargetType  string    `json:"target_type" gorm:"size:20"` // post, comment, user, chat
	TargetID    string    `json:"target_id"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`

	Actor     User `json:"actor" gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
	Recipient User `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
}

func (Notification) TableName() string {
	return "notifications"
}
