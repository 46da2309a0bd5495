package models

import "errors"

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	return validate.Struct(c)
}

// SetPost sets the parent post and updates the PostID
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}

	c.PostID = post.ID
	return nil
}
