package crud

import (
	"context"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"blogGraph/auth"
	"blogGraph/database"
	"blogGraph/domain"
	"blogGraph/errs"
)

// FollowService manages Follows.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Create makes followerID follow followedID. Whether the followed user exists is left to
// the foreign key, so a user deleted in between still can't end up being followed.
// Following the same user twice is a conflict.
func (fv *followValidator) Create(ctx context.Context, actor *domain.Actor, followerID, followedID string) (*domain.Follow, error) {
	if err := auth.Authorize(actor, followerID); err != nil {
		return nil, err
	}
	follow := &domain.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
	}
	err := runFollowValFns(follow,
		fv.followedIdValid,
		fv.followedIsNotFollower)
	if err != nil {
		return nil, err
	}
	if err := fv.followGorm.Create(ctx, follow); err != nil {
		return nil, err
	}
	edgeOps.WithLabelValues(edgeFollow, opCreate).Inc()
	return follow, nil
}

// Delete makes followerID stop following followedID.
func (fv *followValidator) Delete(ctx context.Context, actor *domain.Actor, followerID, followedID string) error {
	if err := auth.Authorize(actor, followerID); err != nil {
		return err
	}
	if err := fv.followGorm.Delete(ctx, followerID, followedID); err != nil {
		return err
	}
	edgeOps.WithLabelValues(edgeFollow, opDelete).Inc()
	return nil
}

// Followers returns the users following userID. Only the user (or an admin) gets to see them.
func (fv *followValidator) Followers(ctx context.Context, actor *domain.Actor, userID string) ([]domain.User, error) {
	if err := auth.Authorize(actor, userID); err != nil {
		return nil, err
	}
	follows, err := fv.followGorm.ByFollowedID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(follows, func(f domain.Follow, _ int) (domain.User, bool) {
		if f.Follower == nil {
			return domain.User{}, false
		}
		return *f.Follower, true
	}), nil
}

// Followeds returns the users userID is following.
func (fv *followValidator) Followeds(ctx context.Context, actor *domain.Actor, userID string) ([]domain.User, error) {
	if err := auth.Authorize(actor, userID); err != nil {
		return nil, err
	}
	follows, err := fv.followGorm.ByFollowerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(follows, func(f domain.Follow, _ int) (domain.User, bool) {
		if f.Followed == nil {
			return domain.User{}, false
		}
		return *f.Followed, true
	}), nil
}

// runFollowValFns runs any number of functions of type followValFn on the passed in Follow object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow object and returns an error.
type followValFn func(follow *domain.Follow) error

// followedIdValid makes sure there's someone to follow.
func (fv *followValidator) followedIdValid(follow *domain.Follow) error {
	if follow.FollowedID == "" {
		return errs.IdInvalid
	}
	return nil
}

// followedIsNotFollower makes sure that the user doesn't follow themselves.
func (fv *followValidator) followedIsNotFollower(follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowedID {
		return errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}
	return nil
}

// ByFollowedID retrieves the follows pointing at a user, along with the following users.
func (fg *followGorm) ByFollowedID(ctx context.Context, userID string) ([]domain.Follow, error) {
	var follows []domain.Follow
	err := fg.db.WithContext(ctx).
		Where("followed_id = ?", userID).
		Preload("Follower").
		Find(&follows).Error
	if err != nil {
		return nil, database.Unavailable(err)
	}
	return follows, nil
}

// ByFollowerID retrieves the follows of a user, along with the followed users.
func (fg *followGorm) ByFollowerID(ctx context.Context, userID string) ([]domain.Follow, error) {
	var follows []domain.Follow
	err := fg.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Preload("Followed").
		Find(&follows).Error
	if err != nil {
		return nil, database.Unavailable(err)
	}
	return follows, nil
}

// Create stores the data from the Follow object in a new database record.
func (fg *followGorm) Create(ctx context.Context, follow *domain.Follow) error {
	err := fg.db.WithContext(ctx).Create(follow).Error
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return errs.Errorf(errs.ECONFLICT, "You already follow this user.")
		case database.IsForeignKeyViolation(err):
			return errs.Errorf(errs.ENOTFOUND, "The follower or the followed user does not exist.")
		}
		return database.Unavailable(err)
	}
	return nil
}

// Delete permanently deletes the follow between the two users.
func (fg *followGorm) Delete(ctx context.Context, followerID, followedID string) error {
	res := fg.db.WithContext(ctx).
		Delete(&domain.Follow{}, "follower_id = ? AND followed_id = ?", followerID, followedID)
	if res.Error != nil {
		return database.Unavailable(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "You don't follow this user.")
	}
	return nil
}
