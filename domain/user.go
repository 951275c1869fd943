package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// RoleUser is assigned to every user on signup.
	RoleUser = "user"
	// RoleAdmin may act as any user.
	RoleAdmin = "admin"
)

// User represents a registered author. Users own Posts and Comments, follow other Users
// and like Posts and Comments. The Username is unique across all users.
// Password only lives in memory for as long as it takes to hash it, Remember only for as
// long as it takes to hand it to the client. Only their hashes are stored.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username string `json:"username" gorm:"notNull;uniqueIndex"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Roles    string `json:"roles" gorm:"notNull;default:user"`

	Password     string `json:"-" gorm:"-"`
	PasswordHash string `json:"-" gorm:"notNull"`
	Remember     string `json:"-" gorm:"-"`
	RememberHash string `json:"-" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a new ID, unless one has been set already.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// RoleSet returns the user's roles as a slice.
func (u *User) RoleSet() []string {
	var roles []string
	for _, r := range strings.Split(u.Roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRole reports whether the user has the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.RoleSet() {
		if r == role {
			return true
		}
	}
	return false
}

// UserUpdate holds the fields of a profile update. A nil or empty field is left untouched.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password"`
}

// UserService is a set of methods to manipulate and work with the User model.
// The Actor passed to mutating methods is the resolved identity of the caller.
type UserService interface {
	ByID(ctx context.Context, id string) (*User, error)
	All(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, actor *Actor, id string, upd UserUpdate) (*User, error)
	Delete(ctx context.Context, actor *Actor, id string) error
	Authenticate(ctx context.Context, username, password string) (*User, string, error)
	ByRemember(ctx context.Context, token string) (*User, error)
}
