package models

import (
	"strings"
	"time"
)

// Catalog is an immutable snapshot of the loaded classes and users.
type Catalog struct {
	Classes    []DanceClass `json:"classes"`
	Users      []User       `json:"users"`
	LoadedAt   time.Time    `json:"loaded_at"`
	LoadErrors []string     `json:"load_errors,omitempty"`
}

// ClassByID returns the class with id.
func (c *Catalog) ClassByID(id string) (DanceClass, bool) {
	if c == nil {
		return DanceClass{}, false
	}
	for _, class := range c.Classes {
		if class.ID == id {
			return class, true
		}
	}
	return DanceClass{}, false
}

// UserByID returns the user with id.
func (c *Catalog) UserByID(id string) (User, bool) {
	if c == nil {
		return User{}, false
	}
	for _, user := range c.Users {
		if user.ID == id {
			return user, true
		}
	}
	return User{}, false
}

// UserByUsername returns the user with username (case-insensitive).
func (c *Catalog) UserByUsername(username string) (User, bool) {
	if c == nil || username == "" {
		return User{}, false
	}
	for _, user := range c.Users {
		if strings.EqualFold(user.Username, username) {
			return user, true
		}
	}
	return User{}, false
}

// Choreographers returns users able to teach, in catalog order.
func (c *Catalog) Choreographers() []User {
	if c == nil {
		return nil
	}
	out := make([]User, 0)
	for _, user := range c.Users {
		if user.Role.CanTeach() {
			out = append(out, user)
		}
	}
	return out
}

// HasLoadErrors reports whether any collection failed to load.
func (c *Catalog) HasLoadErrors() bool {
	return c != nil && len(c.LoadErrors) > 0
}
