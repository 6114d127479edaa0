package http

import (
	"time"

	"github.com/lobodInI/API-Social-Media/domain"
)

// dateLayout is the format of calendar dates in requests and responses.
const dateLayout = "2006-01-02"

// An urlFunc resolves a stored image key into a URL for clients.
type urlFunc func(key string) string

type userResponse struct {
	ID               int     `json:"id"`
	Email            string  `json:"email"`
	Nickname         string  `json:"nickname"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	UserImage        string  `json:"user_image"`
	City             string  `json:"city"`
	Bio              string  `json:"bio"`
	Birthday         *string `json:"birthday"`
	DateRegistration string  `json:"date_registration"`
	IsStaff          bool    `json:"is_staff"`
}

type userListResponse struct {
	userResponse
	CountFollowing int64 `json:"count_following"`
	CountFollowers int64 `json:"count_followers"`
}

type userDetailResponse struct {
	userListResponse
	Following []followingResponse `json:"following"`
	Followers []followerResponse  `json:"followers"`
}

type followingResponse struct {
	ID       int    `json:"id"`
	Nickname string `json:"nickname"`
}

type followerResponse struct {
	UserID   int    `json:"user_id"`
	Nickname string `json:"nickname"`
}

type postResponse struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Hashtag   string    `json:"hashtag"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
}

type postListResponse struct {
	ID            int       `json:"id"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
	Title         string    `json:"title"`
	Image         string    `json:"image"`
	Hashtag       string    `json:"hashtag"`
	CommentsCount int64     `json:"comments_count"`
	LikesCount    int64     `json:"likes_count"`
}

type postDetailResponse struct {
	ID            int                   `json:"id"`
	Author        string                `json:"author"`
	CreatedAt     time.Time             `json:"created_at"`
	Title         string                `json:"title"`
	Content       string                `json:"content"`
	Image         string                `json:"image"`
	Hashtag       string                `json:"hashtag"`
	CommentsCount int64                 `json:"comments_count"`
	LikesCount    int64                 `json:"likes_count"`
	Comments      []postCommentResponse `json:"comments"`
	Likes         []postLikeResponse    `json:"likes"`
}

type postCommentResponse struct {
	ID        int       `json:"id"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Content   string    `json:"content"`
}

type postLikeResponse struct {
	ID     int    `json:"id"`
	Author string `json:"author"`
}

type postImageResponse struct {
	ID    int    `json:"id"`
	Image string `json:"image"`
}

type commentResponse struct {
	ID        int       `json:"id"`
	Post      int       `json:"post"`
	Content   string    `json:"content"`
	Author    int       `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type commentListResponse struct {
	ID        int       `json:"id"`
	Post      string    `json:"post"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type commentDetailResponse struct {
	ID        int                 `json:"id"`
	Post      commentPostResponse `json:"post"`
	Content   string              `json:"content"`
	Author    string              `json:"author"`
	CreatedAt time.Time           `json:"created_at"`
}

type commentPostResponse struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func newUserResponse(u *domain.User, url urlFunc) userResponse {
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Nickname:         u.Nickname,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		UserImage:        url(u.Image),
		City:             u.City,
		Bio:              u.Bio,
		Birthday:         formatDate(u.Birthday),
		DateRegistration: u.CreatedAt.Format(dateLayout),
		IsStaff:          u.IsStaff,
	}
}

func newUserListResponse(u *domain.User, url urlFunc) userListResponse {
	return userListResponse{
		userResponse:   newUserResponse(u, url),
		CountFollowing: u.FollowingCount,
		CountFollowers: u.FollowerCount,
	}
}

// newUserDetailResponse expects the counts of u to be set already.
func newUserDetailResponse(u *domain.User, following, followers []domain.User, url urlFunc) userDetailResponse {
	res := userDetailResponse{
		userListResponse: newUserListResponse(u, url),
		Following:        make([]followingResponse, 0, len(following)),
		Followers:        make([]followerResponse, 0, len(followers)),
	}
	for _, f := range following {
		res.Following = append(res.Following, followingResponse{ID: f.ID, Nickname: f.Nickname})
	}
	for _, f := range followers {
		res.Followers = append(res.Followers, followerResponse{UserID: f.ID, Nickname: f.Nickname})
	}
	return res
}

func newPostResponse(p *domain.Post, url urlFunc) postResponse {
	return postResponse{
		ID:        p.ID,
		Title:     p.Title,
		CreatedAt: p.CreatedAt,
		Hashtag:   p.Hashtag,
		Content:   p.Content,
		Image:     url(p.Image),
	}
}

func newPostListResponse(p *domain.Post, url urlFunc) postListResponse {
	return postListResponse{
		ID:            p.ID,
		Author:        p.Author.Nickname,
		CreatedAt:     p.CreatedAt,
		Title:         p.Title,
		Image:         url(p.Image),
		Hashtag:       p.Hashtag,
		CommentsCount: p.CommentCount,
		LikesCount:    p.LikeCount,
	}
}

// newPostDetailResponse expects p to be loaded by PostService.Detail.
func newPostDetailResponse(p *domain.Post, url urlFunc) postDetailResponse {
	res := postDetailResponse{
		ID:            p.ID,
		Author:        p.Author.Nickname,
		CreatedAt:     p.CreatedAt,
		Title:         p.Title,
		Content:       p.Content,
		Image:         url(p.Image),
		Hashtag:       p.Hashtag,
		CommentsCount: p.CommentCount,
		LikesCount:    p.LikeCount,
		Comments:      make([]postCommentResponse, 0, len(p.Comments)),
		Likes:         make([]postLikeResponse, 0, len(p.Likes)),
	}
	for _, c := range p.Comments {
		res.Comments = append(res.Comments, postCommentResponse{
			ID:        c.ID,
			Author:    c.Author.Nickname,
			CreatedAt: c.CreatedAt,
			Content:   c.Content,
		})
	}
	for _, l := range p.Likes {
		res.Likes = append(res.Likes, postLikeResponse{ID: l.ID, Author: l.Author.Nickname})
	}
	return res
}

func newCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		Post:      c.PostID,
		Content:   c.Content,
		Author:    c.AuthorID,
		CreatedAt: c.CreatedAt,
	}
}

func newCommentListResponse(c *domain.Comment) commentListResponse {
	return commentListResponse{
		ID:        c.ID,
		Post:      c.PostTitle,
		Content:   c.Content,
		Author:    c.Author.Nickname,
		CreatedAt: c.CreatedAt,
	}
}

func newCommentDetailResponse(c *domain.Comment, post *domain.Post) commentDetailResponse {
	return commentDetailResponse{
		ID: c.ID,
		Post: commentPostResponse{
			ID:        post.ID,
			Title:     post.Title,
			Content:   post.Content,
			Author:    post.Author.Nickname,
			CreatedAt: post.CreatedAt,
		},
		Content:   c.Content,
		Author:    c.Author.Nickname,
		CreatedAt: c.CreatedAt,
	}
}
