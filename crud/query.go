package crud

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

// Correlated sub-selects computing the aggregated counts of a row at query time.
const (
	userFollowerCount  = "(SELECT COUNT(*) FROM follows WHERE follows.followed_id = users.id) AS follower_count"
	userFollowingCount = "(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) AS following_count"
	postLikeCount      = "(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count"
	postCommentCount   = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"
)

// errInvalidPage is returned when a page beyond the last one is requested.
var errInvalidPage = errs.Errorf(errs.ENOTFOUND, "Invalid page.")

// isUniqueViolation reports whether err was caused by a unique index.
// Drivers that translate errors return gorm.ErrDuplicatedKey, the
// message checks cover postgres, sqlite and mysql otherwise.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "Duplicate entry")
}

// search adds one condition per search term to the query. A row matches a
// term if any of the columns contains it, ignoring case.
func search(db *gorm.DB, query string, columns ...string) *gorm.DB {
	for _, term := range domain.SearchTerms(query) {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			conds[i] = "LOWER(" + col + ") LIKE ? ESCAPE '!'"
			args[i] = pattern
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return db
}

// escapeLike escapes the wildcard characters of a LIKE pattern with '!',
// which means the same thing in every supported database.
func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}

// countPage counts the rows matching the query and makes sure the requested
// page exists. The query must be a new session so it can be reused afterwards.
func countPage(db *gorm.DB, page domain.PageRequest) (int64, error) {
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	if !page.InRange(count) {
		return 0, errInvalidPage
	}
	return count, nil
}

// paginate limits the query to the requested page.
func paginate(page domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page.Size <= 0 {
			return db
		}
		return db.Offset(page.Offset()).Limit(page.Size)
	}
}
