package repositories

import "postboard/app/models"

// UserRepository defines the interface for user data access
type UserRepository interface {
	Save(user *models.User) error
	GetByID(id int) (*models.User, error)
	List() ([]*models.User, error)
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	Save(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	List() ([]*models.Post, error)
	ListByUser(userID int) ([]*models.Post, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Save(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
}
