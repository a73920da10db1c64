// Package complaint runs the complaint lifecycle: submission, upvotes and
// status changes.
package complaint

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"barangay/internal/events"
	"barangay/internal/guard"
	"barangay/internal/utils"
	"barangay/pkg/types"

	"github.com/sirupsen/logrus"
)

type Gateway interface {
	Create(ctx context.Context, record types.Record) error
	Update(ctx context.Context, record types.Record) error
}

type ImageUploader interface {
	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
}

type RecordCreator interface {
	Create(ctx context.Context, record types.Record) (types.Record, error)
}

type Store interface {
	Reload(ctx context.Context) error
	Generation() uint64
	Complaint(id string) (*types.Complaint, error)
	HasVoted(complaintID, userID string) bool
	VoteCount(complaintID string) int
}

type voteKey struct {
	complaintID string
	userID      string
}

type Manager struct {
	gateway  Gateway
	records  RecordCreator
	uploader ImageUploader
	store    Store
	guard    *guard.Guard
	events   events.Publisher
	logger   *logrus.Logger

	now func() time.Time

	mu sync.Mutex
	// votes created by this manager, keyed to the store generation that was
	// current when they were written
	recorded map[voteKey]uint64
	// complaints whose upvote counter may not match their votes
	pending map[string]struct{}
}

func NewManager(
	gateway Gateway,
	records RecordCreator,
	uploader ImageUploader,
	store Store,
	g *guard.Guard,
	logger *logrus.Logger,
) *Manager {
	return &Manager{
		gateway:  gateway,
		records:  records,
		uploader: uploader,
		store:    store,
		guard:    g,
		events:   events.Discard{},
		logger:   logger,
		now:      time.Now,
		recorded: make(map[voteKey]uint64),
		pending:  make(map[string]struct{}),
	}
}

// PublishTo sends lifecycle events to p.
func (m *Manager) PublishTo(p events.Publisher) *Manager {
	m.events = p
	return m
}

func (m *Manager) publish(ctx context.Context, event events.Event) {
	event.OccurredAt = m.now().UTC()
	if err := m.events.Publish(ctx, event); err != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{
			"type":         event.Type,
			"complaint_id": event.ComplaintID,
		}).Warn("failed to publish event")
	}
}

type Attachment struct {
	Filename string
	Data     []byte
}

type Input struct {
	Title       string      `form:"title"`
	Description string      `form:"description"`
	Category    string      `form:"category"`
	Location    string      `form:"location"`
	Evidence    *Attachment `form:"-"`
}

type SubmitResult struct {
	Complaint *types.Complaint
	// UploadErr is set when the evidence image could not be stored. The
	// complaint was still created, without an image.
	UploadErr error
}

// Submit creates a complaint owned by session. Evidence, when attached, is
// uploaded first; a failed upload does not stop the submission.
func (m *Manager) Submit(ctx context.Context, in Input, session *types.Account) (*SubmitResult, error) {
	if session == nil {
		return nil, types.ErrNotAuthenticated
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, types.NewValidationError("title", "is required")
	}

	category := types.ComplaintCategory(strings.TrimSpace(in.Category))
	if category == "" {
		category = types.CategoryOther
	}
	if !category.Valid() {
		return nil, types.NewValidationError("category", "unknown category")
	}

	release, err := m.guard.Acquire(ctx, guard.Key("submit", session.ID))
	if err != nil {
		return nil, err
	}
	defer release()

	result := new(SubmitResult)

	var imageURL string
	if in.Evidence != nil && len(in.Evidence.Data) > 0 {
		filename := m.evidenceFilename(in.Evidence.Filename)
		imageURL, err = m.uploader.UploadImage(ctx, filename, in.Evidence.Data)
		if err != nil {
			m.logger.WithError(err).WithField("filename", filename).Warn("evidence upload failed, submitting without image")
			result.UploadErr = err
			imageURL = ""
		}
	}

	complaint := &types.Complaint{
		Title:        title,
		Description:  in.Description,
		Category:     category,
		Status:       types.StatusSubmitted,
		Upvotes:      0,
		ImageURL:     imageURL,
		ResidentName: session.DisplayName(),
		UserID:       session.ID,
		Location:     in.Location,
	}

	created, err := m.records.Create(ctx, complaint)
	if created == nil {
		return nil, err
	}

	result.Complaint = created.(*types.Complaint)

	m.publish(ctx, events.Event{
		Type:        events.ComplaintSubmitted,
		ComplaintID: result.Complaint.ID,
		UserID:      session.ID,
		Category:    result.Complaint.Category,
		Status:      result.Complaint.Status,
	})

	return result, err
}

func (m *Manager) evidenceFilename(original string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(original), "."))
	// A name without a dot gets png rather than the whole name as extension.
	if ext == "" {
		ext = "png"
	}
	return utils.RecordIDAt("evidence", m.now()) + "." + ext
}

// Upvote records session's vote on a complaint and bumps its counter.
//
// The vote is written first; the counter update only runs once the vote is
// stored. If the update fails the complaint is flagged for Reconcile and the
// error wraps types.ErrUpvoteIncomplete. On success the returned count is the
// value written; the reload that follows is authoritative.
func (m *Manager) Upvote(ctx context.Context, complaintID string, session *types.Account) (types.Count, error) {
	if session == nil {
		return 0, types.ErrNotAuthenticated
	}

	release, err := m.guard.Acquire(ctx, guard.Key("upvote", complaintID, session.ID))
	if err != nil {
		return 0, err
	}
	defer release()

	// The counter is read from the store and written back, so only one
	// upvote per complaint may be between the read and the reload.
	releaseCounter, err := m.guard.Acquire(ctx, guard.Key("upvote", complaintID))
	if err != nil {
		return 0, err
	}
	defer releaseCounter()

	if m.HasVoted(complaintID, session.ID) {
		return 0, types.ErrAlreadyVoted
	}

	complaint, err := m.store.Complaint(complaintID)
	if err != nil {
		return 0, err
	}

	now := m.now()
	vote := &types.Vote{
		ID:          utils.RecordIDAt(types.SheetVotes.IDPrefix(), now),
		ComplaintID: complaintID,
		UserID:      session.ID,
	}
	vote.SetCreatedAt(utils.Timestamp(now))

	if err := m.gateway.Create(ctx, vote); err != nil {
		return 0, fmt.Errorf("failed to record vote: %w", err)
	}
	m.remember(complaintID, session.ID)

	next := complaint.Upvotes + 1
	updated := *complaint
	updated.Upvotes = next

	entry := m.logger.WithFields(logrus.Fields{
		"complaint_id": complaintID,
		"user_id":      session.ID,
		"upvotes":      next,
	})

	if err := m.gateway.Update(ctx, &updated); err != nil {
		m.flag(complaintID)
		entry.WithError(err).Error("vote recorded but upvote count not updated, flagged for reconciliation")
		if rerr := m.store.Reload(ctx); rerr != nil {
			entry.WithError(rerr).Warn("reload after failed upvote update failed")
		}
		return 0, fmt.Errorf("%w: %w", types.ErrUpvoteIncomplete, err)
	}

	entry.Info("complaint upvoted")

	m.publish(ctx, events.Event{
		Type:        events.ComplaintUpvoted,
		ComplaintID: complaintID,
		UserID:      session.ID,
		Upvotes:     next,
	})

	if err := m.store.Reload(ctx); err != nil {
		return next, fmt.Errorf("%w: %w", types.ErrRefreshFailed, err)
	}

	return next, nil
}

// HasVoted reports whether userID has voted on complaintID, counting votes
// this manager wrote that the store has not reloaded yet.
func (m *Manager) HasVoted(complaintID, userID string) bool {
	if m.store.HasVoted(complaintID, userID) {
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := voteKey{complaintID: complaintID, userID: userID}
	generation, ok := m.recorded[key]
	if !ok {
		return false
	}
	if generation < m.store.Generation() {
		delete(m.recorded, key)
		return false
	}
	return true
}

func (m *Manager) remember(complaintID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded[voteKey{complaintID: complaintID, userID: userID}] = m.store.Generation()
}

// SetStatus moves a complaint to any status. Only admins may do this; there
// is no ordering between statuses.
func (m *Manager) SetStatus(ctx context.Context, complaintID string, status types.ComplaintStatus, session *types.Account) (*types.Complaint, error) {
	if session == nil {
		return nil, types.ErrNotAuthenticated
	}
	if !session.IsAdmin() {
		return nil, types.ErrAdminRequired
	}
	if !status.Valid() {
		return nil, types.NewValidationError("status", "unknown status")
	}

	release, err := m.guard.Acquire(ctx, guard.Key("status", complaintID))
	if err != nil {
		return nil, err
	}
	defer release()

	complaint, err := m.store.Complaint(complaintID)
	if err != nil {
		return nil, err
	}

	previous := complaint.Status
	complaint.Status = status

	if err := m.gateway.Update(ctx, complaint); err != nil {
		return nil, fmt.Errorf("failed to update complaint status: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"complaint_id": complaintID,
		"from":         previous,
		"to":           status,
		"admin_id":     session.ID,
	}).Info("complaint status updated")

	m.publish(ctx, events.Event{
		Type:        events.ComplaintStatusChanged,
		ComplaintID: complaintID,
		UserID:      session.ID,
		Status:      status,
		Upvotes:     complaint.Upvotes,
	})

	if err := m.store.Reload(ctx); err != nil {
		return complaint, fmt.Errorf("%w: %w", types.ErrRefreshFailed, err)
	}

	return complaint, nil
}

func (m *Manager) flag(complaintID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[complaintID] = struct{}{}
}

// Pending lists complaints flagged for reconciliation.
func (m *Manager) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.pending))
	for id := range m.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type Adjustment struct {
	ComplaintID string      `json:"complaintId"`
	From        types.Count `json:"from"`
	To          types.Count `json:"to"`
}

// Reconcile sets each complaint's upvote counter to the number of votes
// recorded for it. With no ids it works through the flagged complaints.
// Only admins may reconcile.
func (m *Manager) Reconcile(ctx context.Context, session *types.Account, complaintIDs ...string) ([]Adjustment, error) {
	if session == nil {
		return nil, types.ErrNotAuthenticated
	}
	if !session.IsAdmin() {
		return nil, types.ErrAdminRequired
	}

	if len(complaintIDs) == 0 {
		complaintIDs = m.Pending()
	}
	if len(complaintIDs) == 0 {
		return nil, nil
	}

	if err := m.store.Reload(ctx); err != nil {
		return nil, err
	}

	var (
		adjustments []Adjustment
		errs        []error
	)

	for _, id := range complaintIDs {
		complaint, err := m.store.Complaint(id)
		if err != nil {
			if errors.Is(err, types.ErrComplaintNotFound) {
				m.clear(id)
			}
			errs = append(errs, err)
			continue
		}

		votes := types.Count(m.store.VoteCount(id))
		if complaint.Upvotes == votes {
			m.clear(id)
			continue
		}

		from := complaint.Upvotes
		complaint.Upvotes = votes
		if err := m.gateway.Update(ctx, complaint); err != nil {
			errs = append(errs, fmt.Errorf("failed to reconcile complaint %s: %w", id, err))
			continue
		}

		m.clear(id)
		adjustments = append(adjustments, Adjustment{ComplaintID: id, From: from, To: votes})

		m.logger.WithFields(logrus.Fields{
			"complaint_id": id,
			"from":         from,
			"to":           votes,
		}).Info("complaint upvotes reconciled")

		m.publish(ctx, events.Event{
			Type:        events.ComplaintReconciled,
			ComplaintID: id,
			Upvotes:     votes,
		})
	}

	if len(adjustments) > 0 {
		if err := m.store.Reload(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", types.ErrRefreshFailed, err))
		}
	}

	return adjustments, errors.Join(errs...)
}

func (m *Manager) clear(complaintID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, complaintID)
}
