package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reply to a Post written by a User. Both its author (UserID) and the
// Post it belongs to (PostID) are fixed on creation.
type Comment struct {
	ID       string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Content  string    `json:"content"`
	Datetime time.Time `json:"datetime" gorm:"autoCreateTime"`
	UserID   string    `json:"user_id" gorm:"notNull;index;type:varchar(36)"`
	User     *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PostID   string    `json:"post_id" gorm:"notNull;index;type:varchar(36)"`
	Post     *Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`

	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a new ID, unless one has been set already.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CommentUpdate holds the fields of a comment update. A nil field is left untouched.
type CommentUpdate struct {
	Content *string `json:"content"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	ByID(ctx context.Context, id string) (*Comment, error)
	ByPostID(ctx context.Context, postID string) ([]Comment, error)
	CountLikes(ctx context.Context, id string) (int, error)
	Create(ctx context.Context, actor *Actor, userID, postID string, comment *Comment) error
	Update(ctx context.Context, actor *Actor, userID, id string, upd CommentUpdate) (*Comment, error)
	Delete(ctx context.Context, actor *Actor, userID, id string) error
}
