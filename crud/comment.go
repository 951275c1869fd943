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

// CommentService manages Comments.
// It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

// commentValidator checks the actor before passing on to commentGorm.
type commentValidator struct {
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment data.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		commentValidator{
			commentGorm{
				db: db,
			},
		},
	}
}

var _ domain.CommentService = &CommentService{}

// Create stores a comment by userID under the post with postID.
// Author and post are fixed from here on.
func (cv *commentValidator) Create(ctx context.Context, actor *domain.Actor, userID, postID string, comment *domain.Comment) error {
	if err := auth.Authorize(actor, userID); err != nil {
		return err
	}
	comment.ID = ""
	comment.UserID = userID
	comment.PostID = postID
	comment.User = nil
	comment.Post = nil
	comment.Datetime = time.Now().UTC()
	return cv.commentGorm.Create(ctx, comment)
}

// Update changes the content of a comment written by userID.
func (cv *commentValidator) Update(ctx context.Context, actor *domain.Actor, userID, id string, upd domain.CommentUpdate) (*domain.Comment, error) {
	if err := auth.Authorize(actor, userID); err != nil {
		return nil, err
	}
	comment, err := cv.commentGorm.ByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if upd.Content == nil {
		return comment, nil
	}
	comment.Content = *upd.Content
	if err := cv.commentGorm.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment written by userID.
func (cv *commentValidator) Delete(ctx context.Context, actor *domain.Actor, userID, id string) error {
	if err := auth.Authorize(actor, userID); err != nil {
		return err
	}
	return cv.commentGorm.Delete(ctx, id, userID)
}

// ByID retrieves a single Comment by ID.
func (cg *commentGorm) ByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	err := cg.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The comment does not exist.")
		}
		return nil, database.Unavailable(err)
	}
	return &comment, nil
}

// ByIDAndUserID retrieves a single Comment by ID, but only if it was written by the given user.
func (cg *commentGorm) ByIDAndUserID(ctx context.Context, id, userID string) (*domain.Comment, error) {
	var comment domain.Comment
	err := cg.db.WithContext(ctx).First(&comment, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The comment does not exist.")
		}
		return nil, database.Unavailable(err)
	}
	return &comment, nil
}

// ByPostID retrieves the comments of a post, oldest first.
func (cg *commentGorm) ByPostID(ctx context.Context, postID string) ([]domain.Comment, error) {
	comments := make([]domain.Comment, 0)
	err := cg.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("datetime asc").
		Order("id asc").
		Find(&comments).Error
	if err != nil {
		return nil, database.Unavailable(err)
	}
	return comments, nil
}

// CountLikes returns the number of users who like the comment.
func (cg *commentGorm) CountLikes(ctx context.Context, id string) (int, error) {
	var count int64
	err := cg.db.WithContext(ctx).Model(&domain.CommentLike{}).Where("comment_id = ?", id).Count(&count).Error
	if err != nil {
		return 0, database.Unavailable(err)
	}
	return int(count), nil
}

// Create stores the data from the Comment object in a new database record.
// A missing author or post shows up as a foreign key violation.
func (cg *commentGorm) Create(ctx context.Context, comment *domain.Comment) error {
	err := cg.db.WithContext(ctx).Create(comment).Error
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errs.Errorf(errs.ENOTFOUND, "The user or the post does not exist.")
		}
		return database.Unavailable(err)
	}
	return nil
}

// Update writes the comment's content.
func (cg *commentGorm) Update(ctx context.Context, comment *domain.Comment) error {
	res := cg.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ? AND user_id = ?", comment.ID, comment.UserID).
		Update("content", comment.Content)
	if res.Error != nil {
		return database.Unavailable(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "The comment does not exist.")
	}
	return nil
}

// Delete permanently deletes the comment written by userID, along with its likes.
func (cg *commentGorm) Delete(ctx context.Context, id, userID string) error {
	res := cg.db.WithContext(ctx).Delete(&domain.Comment{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return database.Unavailable(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "The comment does not exist.")
	}
	return nil
}
