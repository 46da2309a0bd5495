package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Company is the employer attached to a user record.
type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase,omitempty"`
	BS          string `json:"bs,omitempty"`
}

// User represents an author as served by the collection store.
type User struct {
	ID       int     `json:"id" validate:"required,gt=0"`
	Name     string  `json:"name" validate:"required"`
	Username string  `json:"username,omitempty"`
	Email    string  `json:"email,omitempty" validate:"omitempty,email"`
	Company  Company `json:"company"`
}

// Post represents a blog post owned by a user.
type Post struct {
	ID     int    `json:"id" validate:"required,gt=0"`
	UserID int    `json:"userId" validate:"required,gt=0"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID     int    `json:"id" validate:"required,gt=0"`
	PostID int    `json:"postId" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Body   string `json:"body"`
}

// ValidateAll validates every record in a decoded list and reports the first failure.
func ValidateAll[T any, P interface {
	*T
	Validate() error
}](records []T) error {
	for i := range records {
		if err := P(&records[i]).Validate(); err != nil {
			return err
		}
	}
	return nil
}
