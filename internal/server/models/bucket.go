package models

// BucketItem is a provisional, not yet scheduled entry for a target month.
// Save may convert one into a real event and then removes it.
type BucketItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	TargetMonth  string `json:"targetMonth"` // YYYY-MM
	DepartmentID string `json:"departmentId,omitempty"`
	Priority     string `json:"priority"` // high | medium | low
	CreatedAt    string `json:"createdAt"`
	AuthorID     string `json:"authorId,omitempty"`
	AuthorName   string `json:"authorName,omitempty"`
}
