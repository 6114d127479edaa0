package crud

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

// PasswordMinLength is the minimum number of characters of a password.
const PasswordMinLength = 5

// errBadCredentials is returned for an unknown email and a wrong password alike,
// so that the response does not reveal which accounts exist.
var errBadCredentials = errs.Errorf(errs.EUNAUTHORIZED, "No active account found with the given credentials.")

// UserService manages Users. It also contains the part of the authentication system
// that checks credentials and hashes passwords. Tokens are handled by TokenService.
// It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	pepper     string
	emailRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, pepper string) *UserService {
	return &UserService{
		userValidator{
			pepper:     pepper,
			emailRegex: regexp.MustCompile(`(?i)^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted email address and password for existence and correctness.
func (uv *userValidator) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	// Look for a user database record containing the normalized email address.
	found, err := uv.userGorm.ByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	// Append the pepper to the submitted password and compare it to the stored hash.
	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password+uv.pepper))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	return found, nil
}

// Create runs validations needed for creating new User database records.
func (uv *userValidator) Create(ctx context.Context, user *domain.User) error {
	err := runUserValFns(ctx, user,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail,
		uv.nicknameNormalize,
		uv.nicknameRequired,
		uv.nicknameIsAvail,
		uv.namesRequired)
	if err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, user)
}

// Update applies a partial update to the User with the given ID and runs the
// validations needed for updating it. A new password is hashed, an omitted
// password leaves the current hash untouched.
func (uv *userValidator) Update(ctx context.Context, id int, upd *domain.UserUpdate) (*domain.User, error) {
	user, err := uv.userGorm.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUserUpdate(user, upd)

	err = runUserValFns(ctx, user,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail,
		uv.nicknameNormalize,
		uv.nicknameRequired,
		uv.nicknameIsAvail,
		uv.namesRequired)
	if err != nil {
		return nil, err
	}
	if err := uv.userGorm.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// applyUserUpdate copies every field set in upd onto the user.
func applyUserUpdate(user *domain.User, upd *domain.UserUpdate) {
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Nickname != nil {
		user.Nickname = *upd.Nickname
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Password != nil {
		user.Password = *upd.Password
	}
	if upd.City != nil {
		user.City = *upd.City
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Birthday != nil {
		user.Birthday = upd.Birthday
	}
	if upd.ClearBirthday {
		user.Birthday = nil
	}
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(ctx context.Context, user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(ctx context.Context, user *domain.User) error

// emailFormat makes sure that a provided email address matches a predefined regex pattern.
func (uv *userValidator) emailFormat(ctx context.Context, user *domain.User) error {
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.Errorf(errs.EINVALID, "Enter a valid email address.")
	}
	return nil
}

// emailIsAvail makes sure that a provided email address is not yet taken.
func (uv *userValidator) emailIsAvail(ctx context.Context, user *domain.User) error {
	existing, err := uv.userGorm.ByEmail(ctx, user.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Address is not taken.
		return nil
	}
	if err != nil {
		return err
	}
	if user.ID != existing.ID {
		return errs.Errorf(errs.EINVALID, "User with this email already exists.")
	}
	return nil
}

// emailNormalize trims the email's whitespaces and lowercases its domain part.
func (uv *userValidator) emailNormalize(ctx context.Context, user *domain.User) error {
	user.Email = normalizeEmail(user.Email)
	return nil
}

// normalizeEmail lowercases the part after the last @. The local part is
// kept as submitted, since mail servers may treat it case-sensitively.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// emailRequired makes sure that the email is not the empty string.
func (uv *userValidator) emailRequired(ctx context.Context, user *domain.User) error {
	if user.Email == "" {
		return errs.Errorf(errs.EINVALID, "An email address is required.")
	}
	return nil
}

// nicknameNormalize trims the nickname's whitespaces.
func (uv *userValidator) nicknameNormalize(ctx context.Context, user *domain.User) error {
	user.Nickname = strings.TrimSpace(user.Nickname)
	return nil
}

// nicknameRequired makes sure that the nickname is neither empty nor too long.
func (uv *userValidator) nicknameRequired(ctx context.Context, user *domain.User) error {
	if user.Nickname == "" {
		return errs.Errorf(errs.EINVALID, "A nickname is required.")
	}
	if utf8.RuneCountInString(user.Nickname) > 255 {
		return errs.Errorf(errs.EINVALID, "The nickname must not have more than 255 characters.")
	}
	return nil
}

// nicknameIsAvail makes sure that the nickname is not used by another user.
func (uv *userValidator) nicknameIsAvail(ctx context.Context, user *domain.User) error {
	existing, err := uv.userGorm.ByNickname(ctx, user.Nickname)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.ID != existing.ID {
		return errs.Errorf(errs.EINVALID, "User with this nickname already exists.")
	}
	return nil
}

// namesRequired makes sure that first and last name are set.
func (uv *userValidator) namesRequired(ctx context.Context, user *domain.User) error {
	user.FirstName = strings.TrimSpace(user.FirstName)
	user.LastName = strings.TrimSpace(user.LastName)
	if user.FirstName == "" || user.LastName == "" {
		return errs.Errorf(errs.EINVALID, "First and last name are required.")
	}
	return nil
}

// passwordBcrypt hashes a user's password with a predefined pepper.
// It bcrypts it, if the Password field is not the empty string.
// It then clears the password on the user object in memory for security reasons.
func (uv *userValidator) passwordBcrypt(ctx context.Context, user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	pwBytes := []byte(user.Password + uv.pepper)
	hashedBytes, err := bcrypt.GenerateFromPassword(pwBytes, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

// passwordHashRequired makes sure that the user's password hash is not the empty string.
func (uv *userValidator) passwordHashRequired(ctx context.Context, user *domain.User) error {
	if user.PasswordHash == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// passwordMinLength makes sure that the user's password has at least PasswordMinLength characters.
func (uv *userValidator) passwordMinLength(ctx context.Context, user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < PasswordMinLength {
		return errs.Errorf(errs.EINVALID, "Ensure the password has at least %d characters.", PasswordMinLength)
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(ctx context.Context, user *domain.User) error {
	if user.Password == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// ByID retrieves a user by their ID.
func (ug *userGorm) ByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "User not found.")
		}
		return nil, err
	}
	return &user, nil
}

// ByEmail retrieves a user by their email address. It returns gorm.ErrRecordNotFound
// if no user has that address, which lets the validators tell availability apart from failure.
func (ug *userGorm) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ByNickname retrieves a user by their nickname, returning gorm.ErrRecordNotFound like ByEmail.
func (ug *userGorm) ByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).Where("nickname = ?", nickname).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves one page of users along with their follower and following counts,
// and the total number of users matching the filter. The search matches nickname and city.
func (ug *userGorm) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error) {
	query := search(ug.db.WithContext(ctx).Model(&domain.User{}), filter.Search, "users.nickname", "users.city").
		Session(&gorm.Session{})

	count, err := countPage(query, filter.Page)
	if err != nil {
		return nil, 0, err
	}

	var users []domain.User
	err = query.
		Select("users.*, " + userFollowerCount + ", " + userFollowingCount).
		Order("users.id").
		Scopes(paginate(filter.Page)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// Create stores the data from the User object in a new database record.
// A unique index violation caused by a concurrent registration is reported
// like the failed availability check.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	err := ug.db.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		return errs.Errorf(errs.EINVALID, "User with this email or nickname already exists.")
	}
	return err
}

// Update saves all fields of the User object in its existing database record.
func (ug *userGorm) Update(ctx context.Context, user *domain.User) error {
	err := ug.db.WithContext(ctx).Save(user).Error
	if isUniqueViolation(err) {
		return errs.Errorf(errs.EINVALID, "User with this email or nickname already exists.")
	}
	return err
}

// SetImage stores a new image key for the user and returns the key it replaced.
func (ug *userGorm) SetImage(ctx context.Context, id int, key string) (string, error) {
	user, err := ug.ByID(ctx, id)
	if err != nil {
		return "", err
	}
	old := user.Image
	err = ug.db.WithContext(ctx).Model(user).Update("image", key).Error
	if err != nil {
		return "", err
	}
	return old, nil
}

// Delete permanently deletes a user along with every post, comment, like and
// follow they are part of, all in one transaction. It returns the storage keys
// of the images that belonged to the deleted user and posts, so that the caller
// can remove the files once the records are gone.
func (ug *userGorm) Delete(ctx context.Context, id int) ([]string, error) {
	var keys []string
	err := ug.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Errorf(errs.ENOTFOUND, "User not found.")
			}
			return err
		}

		err := tx.Model(&domain.Post{}).
			Where("author_id = ? AND image <> ''", id).
			Pluck("image", &keys).Error
		if err != nil {
			return err
		}
		if user.Image != "" {
			keys = append(keys, user.Image)
		}

		postIDs := tx.Model(&domain.Post{}).Select("id").Where("author_id = ?", id)
		deletes := []struct {
			model interface{}
			query string
			args  []interface{}
		}{
			{&domain.Like{}, "post_id IN (?) OR author_id = ?", []interface{}{postIDs, id}},
			{&domain.Comment{}, "post_id IN (?) OR author_id = ?", []interface{}{postIDs, id}},
			{&domain.Post{}, "author_id = ?", []interface{}{id}},
			{&domain.Follow{}, "follower_id = ? OR followed_id = ?", []interface{}{id, id}},
		}
		for _, d := range deletes {
			if err := tx.Where(d.query, d.args...).Delete(d.model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
