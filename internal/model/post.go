package model

// Post is a blog post with an author association.
type Post struct {
	ID       string `json:"id" factory:"id"`
	Name     string `json:"name" factory:"name"`
	Author   *User  `json:"author,omitempty" factory:"author"`
	AuthorID int    `json:"author_id,omitempty" factory:"author_id"`
}
