package crud

import (
	"context"
	"time"

	"gorm.io/gorm"

	"blogGraph/auth"
	"blogGraph/database"
	"blogGraph/domain"
	"blogGraph/errs"
)

const (
	// SortByDatetime orders posts newest first. It's the only ordering the feed knows.
	SortByDatetime = "datetime"
	// MaxPageSize caps the number of posts a single feed page may contain.
	MaxPageSize = 100
)

// PostService manages Posts.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create checks that the actor may write as userID, then stores the post with userID as its author.
// If userID doesn't belong to an existing user, the foreign key makes the insert fail with ENOTFOUND.
func (pv *postValidator) Create(ctx context.Context, actor *domain.Actor, userID string, post *domain.Post) error {
	if err := auth.Authorize(actor, userID); err != nil {
		return err
	}
	post.ID = ""
	post.UserID = userID
	post.User = nil
	post.Datetime = time.Now().UTC()
	return pv.postGorm.Create(ctx, post)
}

// Update merges the present fields of upd into the post with the given id.
// The post is looked up by id AND author, so nobody gets to edit somebody else's
// post just by knowing its id.
func (pv *postValidator) Update(ctx context.Context, actor *domain.Actor, userID, id string, upd domain.PostUpdate) (*domain.Post, error) {
	if err := auth.Authorize(actor, userID); err != nil {
		return nil, err
	}
	post, err := pv.postGorm.ByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	changes := make(map[string]interface{})
	if upd.Title != nil {
		post.Title = *upd.Title
		changes["title"] = post.Title
	}
	if upd.Content != nil {
		post.Content = *upd.Content
		changes["content"] = post.Content
	}
	if len(changes) == 0 {
		return post, nil
	}
	if err := pv.postGorm.Update(ctx, post, changes); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes the post with the given id, if userID is its author.
func (pv *postValidator) Delete(ctx context.Context, actor *domain.Actor, userID, id string) error {
	if err := auth.Authorize(actor, userID); err != nil {
		return err
	}
	return pv.postGorm.Delete(ctx, id, userID)
}

// Latest returns one page of the feed: all posts, newest first.
// Pages are zero-based. A page past the last post is empty, not an error.
func (pv *postValidator) Latest(ctx context.Context, page, size int, sortKey string) ([]domain.Post, error) {
	if sortKey != "" && sortKey != SortByDatetime {
		return nil, errs.Errorf(errs.EINVALID, "Posts can only be sorted by %s.", SortByDatetime)
	}
	if page < 0 {
		return nil, errs.Errorf(errs.EINVALID, "The page number must not be negative.")
	}
	if size <= 0 || size > MaxPageSize {
		return nil, errs.Errorf(errs.EINVALID, "The page size must be between 1 and %d.", MaxPageSize)
	}
	return pv.postGorm.Latest(ctx, page*size, size)
}

// ByID retrieves a single Post by ID.
func (pg *postGorm) ByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, database.Unavailable(err)
	}
	return &post, nil
}

// ByIDAndUserID retrieves a single Post by ID, but only if it was written by the given user.
func (pg *postGorm) ByIDAndUserID(ctx context.Context, id, userID string) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).First(&post, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, database.Unavailable(err)
	}
	return &post, nil
}

// ByUserID retrieves all posts written by the given user, newest first.
func (pg *postGorm) ByUserID(ctx context.Context, userID string) ([]domain.Post, error) {
	posts := make([]domain.Post, 0)
	err := pg.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("datetime desc").
		Order("id desc").
		Find(&posts).Error
	if err != nil {
		return nil, database.Unavailable(err)
	}
	return posts, nil
}

// Latest retrieves limit posts of all users, newest first, skipping the first offset.
func (pg *postGorm) Latest(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	posts := make([]domain.Post, 0)
	err := pg.db.WithContext(ctx).
		Order("datetime desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, database.Unavailable(err)
	}
	return posts, nil
}

// CountLikes returns the number of users who like the post.
func (pg *postGorm) CountLikes(ctx context.Context, id string) (int, error) {
	var count int64
	err := pg.db.WithContext(ctx).Model(&domain.PostLike{}).Where("post_id = ?", id).Count(&count).Error
	if err != nil {
		return 0, database.Unavailable(err)
	}
	return int(count), nil
}

// Create stores the data from the Post object in a new database record.
func (pg *postGorm) Create(ctx context.Context, post *domain.Post) error {
	err := pg.db.WithContext(ctx).Create(post).Error
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return database.Unavailable(err)
	}
	return nil
}

// Update writes the given columns of the post. Author and creation time are never part of them.
func (pg *postGorm) Update(ctx context.Context, post *domain.Post, changes map[string]interface{}) error {
	res := pg.db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ? AND user_id = ?", post.ID, post.UserID).
		Updates(changes)
	if res.Error != nil {
		return database.Unavailable(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
	}
	return nil
}

// Delete permanently deletes the post written by userID, along with its comments and likes.
func (pg *postGorm) Delete(ctx context.Context, id, userID string) error {
	res := pg.db.WithContext(ctx).Delete(&domain.Post{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return database.Unavailable(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
	}
	return nil
}
