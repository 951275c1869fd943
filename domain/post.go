package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a blog entry written by a User. Its author (UserID) and Datetime are set
// once on creation. Updates only ever touch Title and Content.
// Deleting the author deletes the post (and with it its comments and likes).
type Post struct {
	ID       string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Datetime time.Time `json:"datetime" gorm:"autoCreateTime;index"`
	UserID   string    `json:"user_id" gorm:"notNull;index;type:varchar(36)"`
	User     *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a new ID, unless one has been set already.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostUpdate holds the fields of a post update. A nil field is left untouched.
type PostUpdate struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// PostService is a set of methods to manipulate and work with the Post model.
type PostService interface {
	ByID(ctx context.Context, id string) (*Post, error)
	ByUserID(ctx context.Context, userID string) ([]Post, error)
	Latest(ctx context.Context, page, size int, sortKey string) ([]Post, error)
	CountLikes(ctx context.Context, id string) (int, error)
	Create(ctx context.Context, actor *Actor, userID string, post *Post) error
	Update(ctx context.Context, actor *Actor, userID, id string, upd PostUpdate) (*Post, error)
	Delete(ctx context.Context, actor *Actor, userID, id string) error
}
