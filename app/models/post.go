package models

import "errors"

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	return validate.Struct(p)
}

// SetAuthor sets the owning user and updates the UserID
func (p *Post) SetAuthor(user *User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	p.UserID = user.ID
	return nil
}
