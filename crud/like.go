package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

var (
	errAlreadyLiked = errs.Errorf(errs.EINVALID, "You already liked this post.")
	errNotLiked     = errs.Errorf(errs.EINVALID, "You have not liked this post.")
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
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

// Create runs validations needed for creating new Like database records.
// The checks and the insert share one transaction, and the unique index on
// (post, author) turns a lost race into the same error as the check.
func (lv *likeValidator) Create(ctx context.Context, like *domain.Like) error {
	return lv.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txv := &likeValidator{likeGorm{db: tx}}
		err := runLikeValFns(like,
			txv.authorIdValid,
			txv.likedPostExists,
			txv.notAlreadyLiked)
		if err != nil {
			return err
		}
		return txv.likeGorm.Create(like)
	})
}

// Delete runs validations needed for deleting existing Like database records.
func (lv *likeValidator) Delete(ctx context.Context, like *domain.Like) error {
	return lv.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txv := &likeValidator{likeGorm{db: tx}}
		err := runLikeValFns(like,
			txv.authorIdValid,
			txv.likedPostExists)
		if err != nil {
			return err
		}
		return txv.likeGorm.Delete(like)
	})
}

// runLikeValFns runs any number of functions of type likeValFn on the passed in Like object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runLikeValFns(like *domain.Like, fns ...likeValFn) error {
	for _, fn := range fns {
		if err := fn(like); err != nil {
			return err
		}
	}
	return nil
}

// A likeValFn is any function that takes in a pointer to a domain.Like object and returns an error.
type likeValFn func(like *domain.Like) error

// likedPostExists makes sure that the post to be liked or unliked actually exists.
func (lv *likeValidator) likedPostExists(like *domain.Like) error {
	err := lv.db.Select("id").First(&domain.Post{}, like.PostID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errPostNotFound
		}
		return err
	}
	return nil
}

// notAlreadyLiked makes sure that the user doesn't already like the post.
func (lv *likeValidator) notAlreadyLiked(like *domain.Like) error {
	var count int64
	err := lv.db.Model(&domain.Like{}).
		Where("post_id = ? AND author_id = ?", like.PostID, like.AuthorID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errAlreadyLiked
	}
	return nil
}

// authorIdValid ensures that the author ID is not empty.
func (lv *likeValidator) authorIdValid(like *domain.Like) error {
	if like.AuthorID <= 0 {
		return errs.Errorf(errs.EUNAUTHORIZED, "Authentication credentials were not provided.")
	}
	return nil
}

// Create stores the data from the Like object in a new database record.
func (lg *likeGorm) Create(like *domain.Like) error {
	err := lg.db.Omit("Author").Create(like).Error
	if isUniqueViolation(err) {
		return errAlreadyLiked
	}
	return err
}

// Delete permanently deletes the like of the author on the post.
// It fails with a validation error if the author had not liked the post.
func (lg *likeGorm) Delete(like *domain.Like) error {
	res := lg.db.
		Where("post_id = ? AND author_id = ?", like.PostID, like.AuthorID).
		Delete(&domain.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errNotLiked
	}
	return nil
}
