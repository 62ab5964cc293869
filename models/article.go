package models

// Article is one published post as returned by the content store.
// The audit engine treats it as read-only input.
type Article struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	HTML  string `json:"html"`
}
