package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username    string    `json:"username" gorm:"uniqueIndex;not null"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"not null"`
	DisplayName string    `json:"display_name"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

// Profile is created together with its User and never exists without one.
type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Bio       string    `json:"bio" gorm:"type:text"`
	Location  string    `json:"location"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type Follow struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FollowerID uuid.UUID `json:"follower_id" gorm:"type:uuid;not null;uniqueIndex:idx_follower_followed"`
	FollowedID uuid.UUID `json:"followed_id" gorm:"type:uuid;not null;uniqueIndex:idx_follower_followed"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `json:"follower" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed User `json:"followed" gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

func (Profile) TableName() string {
	return "profiles"
}

func (Follow) TableName() string {
	return "follows"
}
