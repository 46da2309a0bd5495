package models

import "fmt"

// Validate checks if the user meets all validation requirements
func (u *User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return err
	}
	return nil
}

// Byline renders the author line shown under a post.
func (u *User) Byline() string {
	return fmt.Sprintf("Author: %s with %s", u.Name, u.Company.Name)
}
