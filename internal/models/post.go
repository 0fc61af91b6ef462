package models

import "time"

// Post is a blog article. ID is a human chosen key such as "comparison-2025".
type Post struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Image    string    `json:"image"`
	Excerpt  string    `json:"excerpt"`
	Content  string    `json:"content"`
}
