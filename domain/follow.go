package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow represents a self-referential many-to-may relationship between two users.
// A Follow is created when one user decides to follow another user.
// The FollowerID is the ID of the user that follows, and the FollowedID is the ID of the
// user that is being followed. A pair of users can only be connected once in each direction,
// which the unique index on both columns enforces.
type Follow struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FollowerID string    `json:"follower_id" gorm:"notNull;type:varchar(36);uniqueIndex:idx_follower_followed"`
	Follower   *User     `json:"follower,omitempty" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	FollowedID string    `json:"followed_id" gorm:"notNull;type:varchar(36);uniqueIndex:idx_follower_followed;index"`
	Followed   *User     `json:"followed,omitempty" gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate assigns a new ID, unless one has been set already.
func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Create(ctx context.Context, actor *Actor, followerID, followedID string) (*Follow, error)
	Delete(ctx context.Context, actor *Actor, followerID, followedID string) error
	Followers(ctx context.Context, actor *Actor, userID string) ([]User, error)
	Followeds(ctx context.Context, actor *Actor, userID string) ([]User, error)
}
