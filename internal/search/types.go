// Package search finds resumes by text, with Meilisearch in front of a
// plain Postgres fallback.
package search

// ResumeRecord is the flattened, indexable projection of a resume.
type ResumeRecord struct {
	ID        string   `json:"id"`
	OwnerID   string   `json:"ownerId"`
	Title     string   `json:"title"`
	FullName  string   `json:"fullName"`
	Objective string   `json:"objective"`
	Skills    []string `json:"skills"`
	UpdatedAt int64    `json:"updatedAt"`
}

// Query is always owner-scoped; there is no cross-user search surface.
type Query struct {
	OwnerID string
	Text    string
	Limit   int
}

type Response struct {
	Results []ResumeRecord `json:"results"`
	Total   int            `json:"total"`
	Query   string         `json:"query"`
}
