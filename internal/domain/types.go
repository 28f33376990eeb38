package domain

import "time"

// User is an author or reader known to the blog.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// Group is a themed collection of posts.
type Group struct {
	ID          uint
	Title       string
	Slug        string
	Description string
}

// Post is a post together with the denormalised author and group
// references the presentation layer needs.
type Post struct {
	ID             uint
	Text           string
	CreatedAt      time.Time
	AuthorID       string
	AuthorUsername string
	GroupID        *uint
	GroupSlug      string
	GroupTitle     string
	Image          string // storage object key, empty when none
}

// Comment is a reader comment attached to a post.
type Comment struct {
	ID             uint
	PostID         uint
	AuthorID       string
	AuthorUsername string
	Text           string
	CreatedAt      time.Time
}

// ProfileCounts holds the counters shown on a profile page.
type ProfileCounts struct {
	Posts     int64
	Followers int64
	Following int64
}
