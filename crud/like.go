package crud

import (
	"context"

	"gorm.io/gorm"

	"blogGraph/auth"
	"blogGraph/database"
	"blogGraph/domain"
	"blogGraph/errs"
)

// LikeService manages PostLikes and CommentLikes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator checks the actor before passing on to likeGorm.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming like data.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// LikePost makes userID like the post. Liking a post twice is a conflict,
// liking a post that doesn't exist is ENOTFOUND.
func (lv *likeValidator) LikePost(ctx context.Context, actor *domain.Actor, userID, postID string) (*domain.PostLike, error) {
	if err := auth.Authorize(actor, userID); err != nil {
		return nil, err
	}
	like := &domain.PostLike{
		UserID: userID,
		PostID: postID,
	}
	if err := lv.likeGorm.create(ctx, like, "post"); err != nil {
		return nil, err
	}
	edgeOps.WithLabelValues(edgePostLike, opCreate).Inc()
	return like, nil
}

// UnlikePost removes userID's like of the post.
func (lv *likeValidator) UnlikePost(ctx context.Context, actor *domain.Actor, userID, postID string) error {
	if err := auth.Authorize(actor, userID); err != nil {
		return err
	}
	err := lv.likeGorm.delete(ctx, &domain.PostLike{}, "user_id = ? AND post_id = ?", userID, postID, "post")
	if err != nil {
		return err
	}
	edgeOps.WithLabelValues(edgePostLike, opDelete).Inc()
	return nil
}

// LikeComment makes userID like the comment.
func (lv *likeValidator) LikeComment(ctx context.Context, actor *domain.Actor, userID, commentID string) (*domain.CommentLike, error) {
	if err := auth.Authorize(actor, userID); err != nil {
		return nil, err
	}
	like := &domain.CommentLike{
		UserID:    userID,
		CommentID: commentID,
	}
	if err := lv.likeGorm.create(ctx, like, "comment"); err != nil {
		return nil, err
	}
	edgeOps.WithLabelValues(edgeCommentLike, opCreate).Inc()
	return like, nil
}

// UnlikeComment removes userID's like of the comment.
func (lv *likeValidator) UnlikeComment(ctx context.Context, actor *domain.Actor, userID, commentID string) error {
	if err := auth.Authorize(actor, userID); err != nil {
		return err
	}
	err := lv.likeGorm.delete(ctx, &domain.CommentLike{}, "user_id = ? AND comment_id = ?", userID, commentID, "comment")
	if err != nil {
		return err
	}
	edgeOps.WithLabelValues(edgeCommentLike, opDelete).Inc()
	return nil
}

// create stores a like. The unique index turns a second like into a conflict,
// the foreign keys turn a like by or of something missing into ENOTFOUND.
func (lg *likeGorm) create(ctx context.Context, like interface{}, target string) error {
	err := lg.db.WithContext(ctx).Create(like).Error
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return errs.Errorf(errs.ECONFLICT, "You already like that %s.", target)
		case database.IsForeignKeyViolation(err):
			return errs.Errorf(errs.ENOTFOUND, "The user or the %s does not exist.", target)
		}
		return database.Unavailable(err)
	}
	return nil
}

// delete permanently deletes the like matching the query.
func (lg *likeGorm) delete(ctx context.Context, model interface{}, query string, userID, targetID, target string) error {
	res := lg.db.WithContext(ctx).Delete(model, query, userID, targetID)
	if res.Error != nil {
		return database.Unavailable(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "You cannot unlike a %s you have not liked.", target)
	}
	return nil
}
