package services

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"

	"postboard/app/models"
	"postboard/app/repositories"
)

//go:embed fixtures/default.json
var fixtures embed.FS

// Fixture is a bulk import document.
type Fixture struct {
	Users    []models.User    `json:"users"`
	Posts    []models.Post    `json:"posts"`
	Comments []models.Comment `json:"comments"`
}

// SeedCounts reports how many records a seed stored.
type SeedCounts struct {
	Users    int `json:"users"`
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
}

// StoreService serves the read-only collection queries of the local store
type StoreService struct {
	userRepo    repositories.UserRepository
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
}

// NewStoreService creates a new StoreService
func NewStoreService(userRepo repositories.UserRepository, postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *StoreService {
	return &StoreService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// ListUsers retrieves every user
func (s *StoreService) ListUsers() ([]*models.User, error) {
	return s.userRepo.List()
}

// GetUser retrieves a single user
func (s *StoreService) GetUser(id int) (*models.User, error) {
	if id <= 0 {
		return nil, repositories.ErrNotFound
	}
	return s.userRepo.GetByID(id)
}

// ListPosts retrieves every post, or only the posts of userID when it is set
func (s *StoreService) ListPosts(userID int) ([]*models.Post, error) {
	if userID > 0 {
		return s.postRepo.ListByUser(userID)
	}
	return s.postRepo.List()
}

// GetPost retrieves a single post
func (s *StoreService) GetPost(id int) (*models.Post, error) {
	if id <= 0 {
		return nil, repositories.ErrNotFound
	}
	return s.postRepo.GetByID(id)
}

// ListPostComments retrieves all comments for a post
func (s *StoreService) ListPostComments(postID int) ([]*models.Comment, error) {
	if postID <= 0 {
		return []*models.Comment{}, nil
	}
	return s.commentRepo.ListByPost(postID)
}

// Seed imports a fixture. Every record is validated before anything is
// written, and posts and comments must reference records of the fixture or
// the store.
func (s *StoreService) Seed(f *Fixture) (SeedCounts, error) {
	var counts SeedCounts
	if err := models.ValidateAll(f.Users); err != nil {
		return counts, fmt.Errorf("invalid user: %w", err)
	}
	if err := models.ValidateAll(f.Posts); err != nil {
		return counts, fmt.Errorf("invalid post: %w", err)
	}
	if err := models.ValidateAll(f.Comments); err != nil {
		return counts, fmt.Errorf("invalid comment: %w", err)
	}

	users := make(map[int]bool, len(f.Users))
	for _, u := range f.Users {
		users[u.ID] = true
	}
	posts := make(map[int]bool, len(f.Posts))
	for _, p := range f.Posts {
		if !users[p.UserID] {
			if _, err := s.userRepo.GetByID(p.UserID); err != nil {
				return counts, fmt.Errorf("post %d: owner %d: %w", p.ID, p.UserID, err)
			}
		}
		posts[p.ID] = true
	}
	for _, c := range f.Comments {
		if !posts[c.PostID] {
			if _, err := s.postRepo.GetByID(c.PostID); err != nil {
				return counts, fmt.Errorf("comment %d: post %d: %w", c.ID, c.PostID, err)
			}
		}
	}

	for i := range f.Users {
		if err := s.userRepo.Save(&f.Users[i]); err != nil {
			return counts, fmt.Errorf("failed to save user %d: %w", f.Users[i].ID, err)
		}
		counts.Users++
	}
	for i := range f.Posts {
		if err := s.postRepo.Save(&f.Posts[i]); err != nil {
			return counts, fmt.Errorf("failed to save post %d: %w", f.Posts[i].ID, err)
		}
		counts.Posts++
	}
	for i := range f.Comments {
		if err := s.commentRepo.Save(&f.Comments[i]); err != nil {
			return counts, fmt.Errorf("failed to save comment %d: %w", f.Comments[i].ID, err)
		}
		counts.Comments++
	}
	return counts, nil
}

// ReadFixture decodes a fixture document.
func ReadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &f, nil
}

// DefaultFixture returns the fixture embedded in the binary.
func DefaultFixture() (*Fixture, error) {
	f, err := fixtures.Open("fixtures/default.json")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFixture(f)
}
