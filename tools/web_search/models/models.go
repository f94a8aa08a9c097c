package models

// Result is one candidate web result returned by a search backend. Rank is
// the position in the backend's ordering, starting at 0.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Rank    int    `json:"rank"`
}
