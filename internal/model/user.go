package model

import "strings"

// User is the account record produced by the user and admin factories.
type User struct {
	ID         string `json:"id" factory:"id"`
	Name       string `json:"name,omitempty" factory:"name"`
	FirstName  string `json:"first_name,omitempty" factory:"first_name"`
	LastName   string `json:"last_name,omitempty" factory:"last_name"`
	Admin      bool   `json:"admin" factory:"admin"`
	Email      string `json:"email" factory:"email"`
	UpperEmail string `json:"upper_email,omitempty" factory:"upper_email"`
	Login      string `json:"login,omitempty" factory:"login"`
	Password   string `json:"-" factory:"password"`
	Hash       string `json:"-" factory:"hash"`
}

// IsAdmin returns true if the user has admin rights
func (u *User) IsAdmin() bool {
	return u.Admin
}

// FullName joins first and last name, falling back to Name.
func (u *User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Name
	}
	return full
}
