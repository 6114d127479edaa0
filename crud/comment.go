package crud

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

var errCommentNotFound = errs.Errorf(errs.ENOTFOUND, "Comment not found.")

// CommentService manages Comments.
// It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
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

// Ensure the CommentService struct properly implements the domain.CommentService interface.
var _ domain.CommentService = &CommentService{}

// Create runs validations needed for creating new Comment database records.
func (cv *commentValidator) Create(ctx context.Context, comment *domain.Comment) error {
	err := runCommentValFns(ctx, comment,
		cv.authorIdValid,
		cv.contentRequired,
		cv.commentedPostExists)
	if err != nil {
		return err
	}
	return cv.commentGorm.Create(ctx, comment)
}

// Update replaces the content of the Comment with the given ID.
func (cv *commentValidator) Update(ctx context.Context, id int, content string) (*domain.Comment, error) {
	comment, err := cv.commentGorm.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comment.Content = content
	if err := runCommentValFns(ctx, comment, cv.contentRequired); err != nil {
		return nil, err
	}
	if err := cv.commentGorm.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// runCommentValFns runs any number of functions of type commentValFn on the passed in Comment object.
func runCommentValFns(ctx context.Context, comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, comment); err != nil {
			return err
		}
	}
	return nil
}

// A commentValFn is any function that takes in a pointer to a domain.Comment object and returns an error.
type commentValFn func(ctx context.Context, comment *domain.Comment) error

// authorIdValid ensures that the comment has an author.
func (cv *commentValidator) authorIdValid(ctx context.Context, comment *domain.Comment) error {
	if comment.AuthorID <= 0 {
		return errs.Errorf(errs.EUNAUTHORIZED, "Authentication credentials were not provided.")
	}
	return nil
}

// contentRequired makes sure that the comment is not blank.
func (cv *commentValidator) contentRequired(ctx context.Context, comment *domain.Comment) error {
	if strings.TrimSpace(comment.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Content is required.")
	}
	return nil
}

// commentedPostExists makes sure that the commented post exists. A missing post is
// a problem of the submitted data, so it is reported as invalid rather than not found.
func (cv *commentValidator) commentedPostExists(ctx context.Context, comment *domain.Comment) error {
	if comment.PostID <= 0 {
		return errs.Errorf(errs.EINVALID, "A post is required.")
	}
	err := cv.db.WithContext(ctx).Select("id").First(&domain.Post{}, comment.PostID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Errorf(errs.EINVALID, "Invalid post %d, object does not exist.", comment.PostID)
	}
	return err
}

// withPostTitle joins the commented post's title onto each comment.
func withPostTitle(db *gorm.DB) *gorm.DB {
	return db.Select("comments.*, posts.title AS post_title").
		Joins("JOIN posts ON posts.id = comments.post_id")
}

// ByID retrieves a comment along with its author and the title of the commented post.
func (cg *commentGorm) ByID(ctx context.Context, id int) (*domain.Comment, error) {
	var comment domain.Comment
	err := cg.db.WithContext(ctx).
		Scopes(withPostTitle).
		Preload("Author").
		First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// List retrieves one page of comments, newest first, and the total number of
// comments matching the filter.
func (cg *commentGorm) List(ctx context.Context, filter domain.CommentFilter) ([]domain.Comment, int64, error) {
	query := cg.db.WithContext(ctx).Model(&domain.Comment{})
	if filter.PostID > 0 {
		query = query.Where("comments.post_id = ?", filter.PostID)
	}
	query = query.Session(&gorm.Session{})

	count, err := countPage(query, filter.Page)
	if err != nil {
		return nil, 0, err
	}

	var comments []domain.Comment
	err = query.
		Scopes(withPostTitle, paginate(filter.Page)).
		Preload("Author").
		Order("comments.created_at DESC, comments.id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, count, nil
}

// Create stores the data from the Comment object in a new database record.
func (cg *commentGorm) Create(ctx context.Context, comment *domain.Comment) error {
	return cg.db.WithContext(ctx).Omit("Author").Create(comment).Error
}

// Update saves the content of the Comment object in its existing database record.
func (cg *commentGorm) Update(ctx context.Context, comment *domain.Comment) error {
	return cg.db.WithContext(ctx).
		Model(comment).
		Select("content").
		Updates(comment).Error
}

// Delete permanently deletes a comment.
func (cg *commentGorm) Delete(ctx context.Context, id int) error {
	res := cg.db.WithContext(ctx).Delete(&domain.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errCommentNotFound
	}
	return nil
}
