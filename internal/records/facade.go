// Package records is the generic create/update/remove path for portal
// records. Every successful write is followed by a full reload of the store.
package records

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"barangay/internal/guard"
	"barangay/internal/utils"
	"barangay/pkg/types"

	"github.com/sirupsen/logrus"
)

type Gateway interface {
	Create(ctx context.Context, record types.Record) error
	Update(ctx context.Context, record types.Record) error
	Delete(ctx context.Context, idValue string) error
}

type Reloader interface {
	Reload(ctx context.Context) error
}

type Facade struct {
	gateway Gateway
	store   Reloader
	guard   *guard.Guard
	logger  *logrus.Logger

	now func() time.Time
}

func New(gateway Gateway, store Reloader, g *guard.Guard, logger *logrus.Logger) *Facade {
	return &Facade{
		gateway: gateway,
		store:   store,
		guard:   g,
		logger:  logger,
		now:     time.Now,
	}
}

// Create validates record, stamps a fresh id and created_at, sends it and
// reloads. The stamped record is returned.
//
// If the write succeeds but the reload does not, the record is returned
// together with an error wrapping types.ErrRefreshFailed.
func (f *Facade) Create(ctx context.Context, record types.Record) (types.Record, error) {
	now := f.now()

	types.Tag(record)
	types.ApplyDefaults(record, now)
	if err := record.Validate(); err != nil {
		return nil, err
	}

	release, err := f.guard.Acquire(ctx, guard.Key("create", string(record.Sheet()), fingerprint(record)))
	if err != nil {
		return nil, err
	}
	defer release()

	record.SetRecordID(utils.RecordIDAt(record.Sheet().IDPrefix(), now))
	record.SetCreatedAt(utils.Timestamp(now))

	if err := f.gateway.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", record.Sheet(), err)
	}

	f.logger.WithFields(logrus.Fields{
		"sheet": record.Sheet(),
		"id":    record.RecordID(),
	}).Info("record created")

	return record, f.refresh(ctx)
}

// Update merges patch (wire field name to value) into a copy of existing and
// sends the full merged record. Identity fields cannot be patched.
func (f *Facade) Update(ctx context.Context, existing types.Record, patch map[string]string) (types.Record, error) {
	base, err := types.RecordFields(existing)
	if err != nil {
		return nil, err
	}

	merged, err := utils.MergeFields(base, patch,
		types.FieldSheetType,
		types.FieldCreatedAt,
		existing.Sheet().KeyField(),
	)
	if err != nil {
		return nil, err
	}

	record, err := types.DecodeRecord(merged)
	if err != nil {
		return nil, types.NewValidationError("", err.Error())
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	release, err := f.guard.Acquire(ctx, guard.Key("update", record.RecordID()))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := f.gateway.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", record.Sheet(), record.RecordID(), err)
	}

	f.logger.WithFields(logrus.Fields{
		"sheet":  record.Sheet(),
		"id":     record.RecordID(),
		"fields": len(patch),
	}).Info("record updated")

	return record, f.refresh(ctx)
}

// Remove deletes the record whose key equals idValue and reloads.
func (f *Facade) Remove(ctx context.Context, idValue string) error {
	if idValue == "" {
		return types.NewValidationError(types.FieldIDValue, "is required")
	}

	release, err := f.guard.Acquire(ctx, guard.Key("remove", idValue))
	if err != nil {
		return err
	}
	defer release()

	if err := f.gateway.Delete(ctx, idValue); err != nil {
		return fmt.Errorf("failed to delete %s: %w", idValue, err)
	}

	f.logger.WithField("id", idValue).Info("record deleted")

	return f.refresh(ctx)
}

func (f *Facade) refresh(ctx context.Context) error {
	if err := f.store.Reload(ctx); err != nil {
		return fmt.Errorf("%w: %w", types.ErrRefreshFailed, err)
	}
	return nil
}

// fingerprint identifies a record by its content, ignoring identity fields,
// so that two submissions of the same form share an in-flight token.
func fingerprint(record types.Record) string {
	fields, err := types.RecordFields(record)
	if err != nil {
		return record.RecordID()
	}

	delete(fields, record.Sheet().KeyField())
	delete(fields, types.FieldCreatedAt)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s\x00", k, fields[k])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
