// Package events publishes complaint lifecycle events for other systems
// (SMS relays, dashboards). Publishing is best effort: a failure is logged by
// the caller and never undoes the action that produced the event.
package events

import (
	"context"
	"time"

	"barangay/pkg/types"
)

type Type string

const (
	ComplaintSubmitted     Type = "complaint.submitted"
	ComplaintUpvoted       Type = "complaint.upvoted"
	ComplaintStatusChanged Type = "complaint.status_changed"
	ComplaintReconciled    Type = "complaint.reconciled"
)

type Event struct {
	Type        Type                    `json:"type"`
	ComplaintID string                  `json:"complaintId"`
	UserID      string                  `json:"userId,omitempty"`
	Category    types.ComplaintCategory `json:"category,omitempty"`
	Status      types.ComplaintStatus   `json:"status,omitempty"`
	Upvotes     types.Count             `json:"upvotes"`
	OccurredAt  time.Time               `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
