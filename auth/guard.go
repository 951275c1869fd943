package auth

import (
	"blogGraph/domain"
	"blogGraph/errs"
)

// Authorize decides whether actor may act as the user with targetUserID.
// Admins may act as anyone, everybody else only as themselves.
// It must run before any write that is scoped to targetUserID.
func Authorize(actor *domain.Actor, targetUserID string) error {
	if actor == nil || actor.UserID == "" {
		return errs.Errorf(errs.EUNAUTHENTICATED, "You need to be logged in.")
	}
	if actor.IsAdmin() || actor.UserID == targetUserID {
		return nil
	}
	return errs.Errorf(errs.EUNAUTHORIZED, "You do not have access to this resource.")
}
