package types

import "time"

type ComplaintCategory string

const (
	CategoryRoads             ComplaintCategory = "Roads"
	CategoryGarbageCollection ComplaintCategory = "Garbage Collection"
	CategoryNoise             ComplaintCategory = "Noise/Disturbance"
	CategoryDrainage          ComplaintCategory = "Drainage"
	CategorySecurity          ComplaintCategory = "Security"
	CategoryLighting          ComplaintCategory = "Lighting"
	CategoryOther             ComplaintCategory = "Other"
)

var ComplaintCategories = []ComplaintCategory{
	CategoryRoads,
	CategoryGarbageCollection,
	CategoryNoise,
	CategoryDrainage,
	CategorySecurity,
	CategoryLighting,
	CategoryOther,
}

func (c ComplaintCategory) Valid() bool {
	for _, known := range ComplaintCategories {
		if c == known {
			return true
		}
	}
	return false
}

type ComplaintStatus string

const (
	StatusSubmitted   ComplaintStatus = "submitted"
	StatusUnderReview ComplaintStatus = "under_review"
	StatusAssigned    ComplaintStatus = "assigned"
	StatusInProgress  ComplaintStatus = "in_progress"
	StatusResolved    ComplaintStatus = "resolved"
)

// ComplaintStatuses is in workflow order. Admins may still move a complaint
// to any status at any time.
var ComplaintStatuses = []ComplaintStatus{
	StatusSubmitted,
	StatusUnderReview,
	StatusAssigned,
	StatusInProgress,
	StatusResolved,
}

var statusLabels = map[ComplaintStatus]string{
	StatusSubmitted:   "Submitted",
	StatusUnderReview: "Under Review",
	StatusAssigned:    "Assigned",
	StatusInProgress:  "In Progress",
	StatusResolved:    "Resolved",
}

func (s ComplaintStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s ComplaintStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

type Complaint struct {
	Envelope
	ID           string            `json:"__complaint_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Category     ComplaintCategory `json:"category"`
	Status       ComplaintStatus   `json:"status"`
	Upvotes      Count             `json:"upvotes"`
	ImageURL     string            `json:"image_url"`
	ResidentName string            `json:"resident_name"`
	UserID       string            `json:"user_id"`
	Location     string            `json:"location"`
}

func (c *Complaint) Sheet() SheetType { return SheetComplaints }
func (c *Complaint) RecordID() string { return c.ID }
func (c *Complaint) SetRecordID(id string) { c.ID = id }

func (c *Complaint) applyDefaults(time.Time) {
	if c.Category == "" {
		c.Category = CategoryOther
	}
	if c.Status == "" {
		c.Status = StatusSubmitted
	}
}

func (c *Complaint) Validate() error {
	if err := required("title", c.Title); err != nil {
		return err
	}
	if !c.Category.Valid() {
		return NewValidationError("category", "unknown category")
	}
	if !c.Status.Valid() {
		return NewValidationError("status", "unknown status")
	}
	return nil
}
