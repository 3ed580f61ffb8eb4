package dto

// NoteRequest is the payload for creating or updating a note.
type NoteRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	ImageURL   string   `json:"image_url"`
	IsPublic   bool     `json:"is_public"`
	IsFavorite bool     `json:"is_favorite"`
}
