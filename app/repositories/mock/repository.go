package mock

import (
	"sort"
	"sync"

	"postboard/app/models"
	"postboard/app/repositories"
)

type UserRepository struct {
	users  map[int]*models.User
	nextID int
	mutex  sync.RWMutex
}

type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex
}

type CommentRepository struct {
	comments map[int]*models.Comment
	nextID   int
	mutex    sync.RWMutex
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int]*models.User), nextID: 1}
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[int]*models.Post), nextID: 1}
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[int]*models.Comment), nextID: 1}
}

func assignID(id *int, next *int) {
	if *id == 0 {
		*id = *next
	}
	if *id >= *next {
		*next = *id + 1
	}
}

// UserRepository implementation
func (m *UserRepository) Save(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	assignID(&user.ID, &m.nextID)
	m.users[user.ID] = user
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (m *UserRepository) List() ([]*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := []*models.User{}
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// PostRepository implementation
func (m *PostRepository) Save(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	assignID(&post.ID, &m.nextID)
	m.posts[post.ID] = post
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *PostRepository) List() ([]*models.Post, error) {
	return m.filter(func(*models.Post) bool { return true }), nil
}

func (m *PostRepository) ListByUser(userID int) ([]*models.Post, error) {
	return m.filter(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (m *PostRepository) filter(keep func(*models.Post) bool) []*models.Post {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []*models.Post{}
	for id := 1; id < m.nextID; id++ {
		if post, exists := m.posts[id]; exists && keep(post) {
			posts = append(posts, post)
		}
	}
	return posts
}

// CommentRepository implementation
func (m *CommentRepository) Save(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	assignID(&comment.ID, &m.nextID)
	m.comments[comment.ID] = comment
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return comment, nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comments := []*models.Comment{}
	for id := 1; id < m.nextID; id++ {
		if comment, exists := m.comments[id]; exists && comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}
