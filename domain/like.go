package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostLike represents a many-to-many relationship between a User and a Post.
// A PostLike is created when a user decides to like a post. It's destroyed when
// a user decides to unlike a previously liked post, or when the post gets deleted.
type PostLike struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"notNull;type:varchar(36);uniqueIndex:idx_post_like_user_post"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PostID    string    `json:"post_id" gorm:"notNull;type:varchar(36);uniqueIndex:idx_post_like_user_post;index"`
	Post      *Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a new ID, unless one has been set already.
func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// CommentLike is the same as PostLike, for Comments.
type CommentLike struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"notNull;type:varchar(36);uniqueIndex:idx_comment_like_user_comment"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CommentID string    `json:"comment_id" gorm:"notNull;type:varchar(36);uniqueIndex:idx_comment_like_user_comment;index"`
	Comment   *Comment  `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a new ID, unless one has been set already.
func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// LikeService is a set of methods to manipulate and work with the PostLike and CommentLike models.
type LikeService interface {
	LikePost(ctx context.Context, actor *Actor, userID, postID string) (*PostLike, error)
	UnlikePost(ctx context.Context, actor *Actor, userID, postID string) error
	LikeComment(ctx context.Context, actor *Actor, userID, commentID string) (*CommentLike, error)
	UnlikeComment(ctx context.Context, actor *Actor, userID, commentID string) error
}
