package types

// Report summarises complaints for administrators.
type Report struct {
	Total          int                       `json:"total"`
	StatusCounts   map[ComplaintStatus]int   `json:"statusCounts"`
	CategoryCounts map[ComplaintCategory]int `json:"categoryCounts"`
}
