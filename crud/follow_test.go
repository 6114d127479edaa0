package crud

import (
	"context"
	"fmt"
	"testing"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

func TestFollowYourself(t *testing.T) {
	s := newTestServices(t)
	a := createUser(t, s, "alice")

	err := s.Follow.Create(context.Background(), &domain.Follow{FollowerID: a.ID, FollowedID: a.ID})
	assertCode(t, err, errs.EINVALID)
	assertMessage(t, err, "You cannot follow yourself.")
}

func TestFollowMissingUser(t *testing.T) {
	s := newTestServices(t)
	a := createUser(t, s, "alice")

	err := s.Follow.Create(context.Background(), &domain.Follow{FollowerID: a.ID, FollowedID: a.ID + 100})
	assertCode(t, err, errs.ENOTFOUND)
}

func TestFollowUnfollowScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := createUser(t, s, "alice")
	b := createUser(t, s, "bob")

	if err := s.Follow.Create(ctx, &domain.Follow{FollowerID: a.ID, FollowedID: b.ID}); err != nil {
		t.Fatalf("follow: %v", err)
	}
	assertCounts(t, s, b.ID, 1, 0)
	assertCounts(t, s, a.ID, 0, 1)

	err := s.Follow.Create(ctx, &domain.Follow{FollowerID: a.ID, FollowedID: b.ID})
	assertCode(t, err, errs.EINVALID)
	assertMessage(t, err, "You already follow this user.")
	assertCounts(t, s, b.ID, 1, 0)

	if err := s.Follow.Delete(ctx, &domain.Follow{FollowerID: a.ID, FollowedID: b.ID}); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	assertCounts(t, s, b.ID, 0, 0)
	assertCounts(t, s, a.ID, 0, 0)

	err = s.Follow.Delete(ctx, &domain.Follow{FollowerID: a.ID, FollowedID: b.ID})
	assertCode(t, err, errs.ENOTFOUND)
	assertMessage(t, err, "You don't follow this user.")
}

func TestFollowIsDirected(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := createUser(t, s, "alice")
	b := createUser(t, s, "bob")

	if err := s.Follow.Create(ctx, &domain.Follow{FollowerID: a.ID, FollowedID: b.ID}); err != nil {
		t.Fatalf("a follows b: %v", err)
	}
	if err := s.Follow.Create(ctx, &domain.Follow{FollowerID: b.ID, FollowedID: a.ID}); err != nil {
		t.Fatalf("b follows a: %v", err)
	}
	assertCounts(t, s, a.ID, 1, 1)
	assertCounts(t, s, b.ID, 1, 1)

	if err := s.Follow.Delete(ctx, &domain.Follow{FollowerID: b.ID, FollowedID: a.ID}); err != nil {
		t.Fatalf("b unfollows a: %v", err)
	}
	assertCounts(t, s, a.ID, 0, 1)
	assertCounts(t, s, b.ID, 1, 0)
}

func TestFollowCountsManyEdges(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	target := createUser(t, s, "target")

	const n = 4
	var fans []*domain.User
	for i := 0; i < n; i++ {
		fan := createUser(t, s, fmt.Sprintf("fan%d", i))
		fans = append(fans, fan)
		if err := s.Follow.Create(ctx, &domain.Follow{FollowerID: fan.ID, FollowedID: target.ID}); err != nil {
			t.Fatalf("follow: %v", err)
		}
		if err := s.Follow.Create(ctx, &domain.Follow{FollowerID: target.ID, FollowedID: fan.ID}); err != nil {
			t.Fatalf("follow back: %v", err)
		}
	}
	assertCounts(t, s, target.ID, n, n)

	followers, err := s.Follow.Followers(ctx, target.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(followers) != n || followers[0].Nickname != "fan0" || followers[0].ID != fans[0].ID {
		t.Fatalf("unexpected followers %+v", followers)
	}
	following, err := s.Follow.Following(ctx, target.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(following) != n || following[n-1].Nickname != fmt.Sprintf("fan%d", n-1) {
		t.Fatalf("unexpected following %+v", following)
	}

	if err := s.Follow.Delete(ctx, &domain.Follow{FollowerID: fans[1].ID, FollowedID: target.ID}); err != nil {
		t.Fatal(err)
	}
	assertCounts(t, s, target.ID, n-1, n)
}

func TestFollowPairIsUniqueInStorage(t *testing.T) {
	s := newTestServices(t)
	a := createUser(t, s, "alice")
	b := createUser(t, s, "bob")

	if err := s.db.Omit("Follower", "Followed").Create(&domain.Follow{FollowerID: a.ID, FollowedID: b.ID}).Error; err != nil {
		t.Fatal(err)
	}
	err := s.db.Omit("Follower", "Followed").Create(&domain.Follow{FollowerID: a.ID, FollowedID: b.ID}).Error
	if !isUniqueViolation(err) {
		t.Fatalf("expected a unique violation, got %v", err)
	}

	// The insert path alone, skipping the pre-checks, reports the same error as the check.
	fg := &followGorm{db: s.db}
	err = fg.Create(&domain.Follow{FollowerID: a.ID, FollowedID: b.ID})
	assertCode(t, err, errs.EINVALID)
	assertMessage(t, err, "You already follow this user.")
}

func TestSelfFollowRejectedByStorage(t *testing.T) {
	s := newTestServices(t)
	a := createUser(t, s, "alice")

	if err := s.db.Omit("Follower", "Followed").Create(&domain.Follow{FollowerID: a.ID, FollowedID: a.ID}).Error; err == nil {
		t.Fatal("expected the check constraint to reject a self-follow")
	}
}

func assertCounts(t *testing.T, s *Services, userID int, followers, following int64) {
	t.Helper()
	gotFollowers, gotFollowing, err := s.Follow.Counts(context.Background(), userID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if gotFollowers != followers || gotFollowing != following {
		t.Fatalf("counts(%d) = (%d followers, %d following), want (%d, %d)",
			userID, gotFollowers, gotFollowing, followers, following)
	}
}
