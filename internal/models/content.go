package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

type Post struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Caption      string    `json:"caption" gorm:"type:text;not null"`
	ImageURL     string    `json:"image_url"`
	VideoURL     string    `json:"video_url"`
	LikeCount    int64     `json:"like_count" gorm:"default:0"`
	CommentCount int64     `json:"comment_count" gorm:"default:0"`
	IsDeleted    bool      `json:"-" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Hashtags returns the #tags embedded in the caption.
func (p *Post) Hashtags() []string {
	return hashtagPattern.FindAllString(p.Caption, -1)
}

// Like rows are hard-deleted on un-like so the (user, post) unique index
// keeps a repeated toggle from ever duplicating.
type Like struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_post"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_post"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post Post `json:"post" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

type Comment struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null"`
	PostID    uuid.UUID  `json:"post_id" gorm:"type:uuid;not null;index"`
	Text      string     `json:"text" gorm:"type:text;not null"`
	ParentID  *uuid.UUID `json:"parent_id" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post Post `json:"post" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string {
	return "posts"
}

func (Like) TableName() string {
	return "likes"
}

func (Comment) TableName() string {
	return "comments"
}
