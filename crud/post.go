package crud

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

var errPostNotFound = errs.Errorf(errs.ENOTFOUND, "Post not found.")

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

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post,
		pv.authorIdValid,
		pv.titleValid,
		pv.contentRequired,
		pv.hashtagValid)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(ctx, post)
}

// Update applies a partial update to the Post with the given ID and runs the
// validations needed for updating it.
func (pv *postValidator) Update(ctx context.Context, id int, upd *domain.PostUpdate) (*domain.Post, error) {
	post, err := pv.postGorm.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		post.Title = *upd.Title
	}
	if upd.Content != nil {
		post.Content = *upd.Content
	}
	if upd.Hashtag != nil {
		post.Hashtag = *upd.Hashtag
	}

	err = runPostValFns(post,
		pv.titleValid,
		pv.contentRequired,
		pv.hashtagValid)
	if err != nil {
		return nil, err
	}
	if err := pv.postGorm.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn func(post *domain.Post) error

// authorIdValid ensures that the post has an author.
func (pv *postValidator) authorIdValid(post *domain.Post) error {
	if post.AuthorID <= 0 {
		return errs.Errorf(errs.EUNAUTHORIZED, "Authentication credentials were not provided.")
	}
	return nil
}

// titleValid trims the title and makes sure it is neither empty nor longer than 255 characters.
func (pv *postValidator) titleValid(post *domain.Post) error {
	post.Title = strings.TrimSpace(post.Title)
	if post.Title == "" {
		return errs.Errorf(errs.EINVALID, "A title is required.")
	}
	if utf8.RuneCountInString(post.Title) > 255 {
		return errs.Errorf(errs.EINVALID, "The title must not have more than 255 characters.")
	}
	return nil
}

// contentRequired makes sure that the post has content.
func (pv *postValidator) contentRequired(post *domain.Post) error {
	if strings.TrimSpace(post.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Content is required.")
	}
	return nil
}

// hashtagValid trims the optional hashtag and makes sure it has at most 50 characters.
func (pv *postValidator) hashtagValid(post *domain.Post) error {
	post.Hashtag = strings.TrimSpace(post.Hashtag)
	if utf8.RuneCountInString(post.Hashtag) > 50 {
		return errs.Errorf(errs.EINVALID, "The hashtag must not have more than 50 characters.")
	}
	return nil
}

// withCounts selects the like and comment counts of each post along with its columns.
func withCounts(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " + postLikeCount + ", " + postCommentCount)
}

// ByID retrieves a post, its author and its like and comment counts.
func (pg *postGorm) ByID(ctx context.Context, id int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).
		Scopes(withCounts).
		Preload("Author").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Detail retrieves a post like ByID does, together with all of its comments
// (newest first) and likes, each with their author.
func (pg *postGorm) Detail(ctx context.Context, id int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).
		Scopes(withCounts).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at DESC, comments.id DESC")
		}).
		Preload("Comments.Author").
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("likes.id")
		}).
		Preload("Likes.Author").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// List retrieves one page of posts, newest first, with their authors and counts,
// along with the total number of posts matching the filter. The search matches the hashtag.
func (pg *postGorm) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int64, error) {
	query := search(pg.db.WithContext(ctx).Model(&domain.Post{}), filter.Search, "posts.hashtag").
		Session(&gorm.Session{})

	count, err := countPage(query, filter.Page)
	if err != nil {
		return nil, 0, err
	}

	var posts []domain.Post
	err = query.
		Scopes(withCounts, paginate(filter.Page)).
		Preload("Author").
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, count, nil
}

// Create stores the data from the Post object in a new database record.
func (pg *postGorm) Create(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Omit("Author", "Comments", "Likes").Create(post).Error
}

// Update saves the editable fields of the Post object in its existing database record.
func (pg *postGorm) Update(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).
		Model(post).
		Select("title", "content", "hashtag").
		Updates(post).Error
}

// SetImage stores a new image key for the post and returns the key it replaced.
func (pg *postGorm) SetImage(ctx context.Context, id int, key string) (string, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).Select("id", "image").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errPostNotFound
		}
		return "", err
	}
	old := post.Image
	err = pg.db.WithContext(ctx).Model(&post).Update("image", key).Error
	if err != nil {
		return "", err
	}
	return old, nil
}

// Delete permanently deletes a post along with its comments and likes.
func (pg *postGorm) Delete(ctx context.Context, id int) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPostNotFound
		}
		return nil
	})
}
