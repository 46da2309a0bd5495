package mock

import (
	"context"
	"fmt"
	"sync"

	"postboard/app/maybe"
	"postboard/app/models"
)

// Source is an in-memory client.Source that records every call.
type Source struct {
	Users    []models.User
	Posts    []models.Post
	Comments []models.Comment

	// Fail lists calls, formatted like the entries of Calls, that return None.
	Fail map[string]bool

	mutex sync.Mutex
	calls []string
}

// NewSource creates a Source over the given records.
func NewSource(users []models.User, posts []models.Post, comments []models.Comment) *Source {
	return &Source{
		Users:    users,
		Posts:    posts,
		Comments: comments,
		Fail:     make(map[string]bool),
	}
}

// Calls returns the calls made so far, e.g. "user:1" or "comments:3".
func (s *Source) Calls() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Source) record(kind string, id int) bool {
	call := kind
	if id != 0 {
		call = fmt.Sprintf("%s:%d", kind, id)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calls = append(s.calls, call)
	return s.Fail[call]
}

func (s *Source) FetchUsers(ctx context.Context) maybe.Value[[]models.User] {
	if s.record("users", 0) {
		return maybe.None[[]models.User]()
	}
	return maybe.Some(append([]models.User{}, s.Users...))
}

func (s *Source) FetchPostsByUser(ctx context.Context, userID int) maybe.Value[[]models.Post] {
	if userID <= 0 {
		return maybe.None[[]models.Post]()
	}
	if s.record("posts", userID) {
		return maybe.None[[]models.Post]()
	}
	posts := []models.Post{}
	for _, p := range s.Posts {
		if p.UserID == userID {
			posts = append(posts, p)
		}
	}
	return maybe.Some(posts)
}

func (s *Source) FetchUser(ctx context.Context, userID int) maybe.Value[models.User] {
	if userID <= 0 {
		return maybe.None[models.User]()
	}
	if s.record("user", userID) {
		return maybe.None[models.User]()
	}
	for _, u := range s.Users {
		if u.ID == userID {
			return maybe.Some(u)
		}
	}
	return maybe.None[models.User]()
}

func (s *Source) FetchPostComments(ctx context.Context, postID int) maybe.Value[[]models.Comment] {
	if postID <= 0 {
		return maybe.None[[]models.Comment]()
	}
	if s.record("comments", postID) {
		return maybe.None[[]models.Comment]()
	}
	comments := []models.Comment{}
	for _, c := range s.Comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	return maybe.Some(comments)
}

// Fixture returns one user with two posts, three comments each, plus a
// second user with no posts.
func Fixture() *Source {
	users := []models.User{
		{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz", Company: models.Company{Name: "Romaguera-Crona"}},
		{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv", Company: models.Company{Name: "Deckow-Crist"}},
	}
	posts := []models.Post{
		{ID: 1, UserID: 1, Title: "sunt aut facere repellat", Body: "quia et suscipit"},
		{ID: 2, UserID: 1, Title: "qui est esse", Body: "est rerum tempore vitae"},
	}
	var comments []models.Comment
	for _, p := range posts {
		for i := 1; i <= 3; i++ {
			id := (p.ID-1)*3 + i
			comments = append(comments, models.Comment{
				ID:     id,
				PostID: p.ID,
				Name:   fmt.Sprintf("comment %d", id),
				Email:  fmt.Sprintf("reader%d@example.com", id),
				Body:   "odio adipisci rerum aut animi",
			})
		}
	}
	return NewSource(users, posts, comments)
}
