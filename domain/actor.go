package domain

// Actor is the identity resolved from a request's bearer token.
// It's handed to every crud method that mutates data belonging to a specific user,
// so that the method can decide if the caller may act as that user.
type Actor struct {
	UserID string   `json:"uid"`
	Roles  []string `json:"roles"`
}

// NewActor builds the Actor for an authenticated User.
func NewActor(user *User) *Actor {
	return &Actor{
		UserID: user.ID,
		Roles:  user.RoleSet(),
	}
}

// IsAdmin reports whether the actor has the admin role.
func (a *Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}
