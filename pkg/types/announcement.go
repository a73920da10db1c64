package types

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityHigh || p == PriorityEmergency
}

type Announcement struct {
	Envelope
	ID       string   `json:"__announcement_id"`
	Title    string   `json:"announcement_title"`
	Content  string   `json:"content"`
	Priority Priority `json:"priority"`
	Date     string   `json:"date"`
}

func (a *Announcement) Sheet() SheetType { return SheetAnnouncements }
func (a *Announcement) RecordID() string { return a.ID }
func (a *Announcement) SetRecordID(id string) { a.ID = id }

// AnnouncementDateLayout is the layout of dates written by the portal.
const AnnouncementDateLayout = "2006-01-02"

func (a *Announcement) applyDefaults(now time.Time) {
	if a.Priority == "" {
		a.Priority = PriorityNormal
	}
	if strings.TrimSpace(a.Date) == "" {
		a.Date = now.UTC().Format(AnnouncementDateLayout)
	}
}

func (a *Announcement) Validate() error {
	if err := required("announcement_title", a.Title); err != nil {
		return err
	}
	if err := required("content", a.Content); err != nil {
		return err
	}
	if !a.Priority.Valid() {
		return NewValidationError("priority", "must be normal, high or emergency")
	}
	return nil
}

var announcementDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	AnnouncementDateLayout,
	"01/02/2006",
}

// ParsedDate interprets Date. ok is false when no known layout matches.
func (a *Announcement) ParsedDate() (t time.Time, ok bool) {
	raw := strings.TrimSpace(a.Date)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range announcementDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}
