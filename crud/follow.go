package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

var (
	errSelfFollow       = errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	errAlreadyFollowing = errs.Errorf(errs.EINVALID, "You already follow this user.")
	errNotFollowing     = errs.Errorf(errs.ENOTFOUND, "You don't follow this user.")
)

// FollowService manages Follows, the edges of the social graph.
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

// Create runs validations needed for creating new Follow database records.
// The checks and the insert share one transaction. Two concurrent requests
// can still both pass the checks, in which case the unique index on the pair
// rejects the second insert with the same error the check would have returned.
func (fv *followValidator) Create(ctx context.Context, follow *domain.Follow) error {
	return fv.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txv := &followValidator{followGorm{db: tx}}
		err := runFollowValFns(follow,
			txv.followerIdValid,
			txv.followedIsNotFollower,
			txv.followedUserExists,
			txv.notAlreadyFollowed)
		if err != nil {
			return err
		}
		return txv.followGorm.Create(follow)
	})
}

// Delete runs validations needed for deleting existing Follow database records.
func (fv *followValidator) Delete(ctx context.Context, follow *domain.Follow) error {
	txv := &followValidator{followGorm{db: fv.db.WithContext(ctx)}}
	err := runFollowValFns(follow, txv.followerIdValid, txv.followedUserExists)
	if err != nil {
		return err
	}
	return txv.followGorm.Delete(follow)
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

// followerIdValid ensures that the follower ID is not empty.
func (fv *followValidator) followerIdValid(follow *domain.Follow) error {
	if follow.FollowerID <= 0 {
		return errs.Errorf(errs.EUNAUTHORIZED, "Authentication credentials were not provided.")
	}
	return nil
}

// followedIsNotFollower makes sure that users don't follow themselves.
func (fv *followValidator) followedIsNotFollower(follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowedID {
		return errSelfFollow
	}
	return nil
}

// followedUserExists makes sure that the user to be followed actually exists.
func (fv *followValidator) followedUserExists(follow *domain.Follow) error {
	err := fv.db.Select("id").First(&domain.User{}, follow.FollowedID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "User not found.")
		}
		return err
	}
	return nil
}

// notAlreadyFollowed makes sure that the follower doesn't already follow the followed user.
func (fv *followValidator) notAlreadyFollowed(follow *domain.Follow) error {
	var count int64
	err := fv.db.Model(&domain.Follow{}).
		Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errAlreadyFollowing
	}
	return nil
}

// Counts returns how many users follow the user with the given ID, and how many users they follow.
// Both numbers are counted from the follows table on every call.
func (fg *followGorm) Counts(ctx context.Context, userID int) (followers, following int64, err error) {
	db := fg.db.WithContext(ctx)
	err = db.Model(&domain.Follow{}).Where("followed_id = ?", userID).Count(&followers).Error
	if err != nil {
		return 0, 0, err
	}
	err = db.Model(&domain.Follow{}).Where("follower_id = ?", userID).Count(&following).Error
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// Following retrieves the users that the user with the given ID follows, oldest edge first.
// Only ID and Nickname of the returned users are set.
func (fg *followGorm) Following(ctx context.Context, userID int) ([]domain.User, error) {
	var users []domain.User
	err := fg.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("users.id, users.nickname").
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.id").
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Followers retrieves the users that follow the user with the given ID, oldest edge first.
// Only ID and Nickname of the returned users are set.
func (fg *followGorm) Followers(ctx context.Context, userID int) ([]domain.User, error) {
	var users []domain.User
	err := fg.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("users.id, users.nickname").
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("follows.id").
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Create stores the data from the Follow object in a new database record.
func (fg *followGorm) Create(follow *domain.Follow) error {
	err := fg.db.Omit("Follower", "Followed").Create(follow).Error
	if isUniqueViolation(err) {
		return errAlreadyFollowing
	}
	return err
}

// Delete permanently deletes the edge between follower and followed.
// It fails with a not found error if there was no such edge.
func (fg *followGorm) Delete(follow *domain.Follow) error {
	res := fg.db.
		Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
		Delete(&domain.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errNotFollowing
	}
	return nil
}
