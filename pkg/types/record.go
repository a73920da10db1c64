package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// SheetType is the __sheet_type tag that tells the logical table a record
// belongs to in the gateway's flat collection.
type SheetType string

const (
	SheetAccounts      SheetType = "accounts"
	SheetComplaints    SheetType = "complaints"
	SheetVotes         SheetType = "votes"
	SheetAnnouncements SheetType = "announcements"
	SheetOfficials     SheetType = "officials"
	SheetHotlines      SheetType = "hotlines"
	SheetHouseholds    SheetType = "households"
)

const (
	FieldSheetType = "__sheet_type"
	FieldCreatedAt = "created_at"
	FieldIDValue   = "__id_value"
)

var sheetKeys = map[SheetType]string{
	SheetAccounts:      "__user_id",
	SheetComplaints:    "__complaint_id",
	SheetVotes:         "__vote_id",
	SheetAnnouncements: "__announcement_id",
	SheetOfficials:     "__official_id",
	SheetHotlines:      "__hotline_id",
	SheetHouseholds:    "__household_id",
}

var sheetPrefixes = map[SheetType]string{
	SheetAccounts:      "user",
	SheetComplaints:    "complaint",
	SheetVotes:         "vote",
	SheetAnnouncements: "announcement",
	SheetOfficials:     "official",
	SheetHotlines:      "hotline",
	SheetHouseholds:    "household",
}

// KeyField returns the wire name of the primary key field for the sheet.
func (s SheetType) KeyField() string {
	return sheetKeys[s]
}

// IDPrefix returns the prefix used when generating identifiers for the sheet.
func (s SheetType) IDPrefix() string {
	return sheetPrefixes[s]
}

func (s SheetType) Valid() bool {
	_, ok := sheetKeys[s]
	return ok
}

// Record is one entry of the flat collection. The set of implementations is
// closed: Account, Complaint, Vote, Announcement, Official, Hotline and
// Household.
type Record interface {
	Sheet() SheetType
	RecordID() string
	SetRecordID(id string)
	CreatedAt() string
	SetCreatedAt(ts string)
	Validate() error

	envelope() *Envelope
}

// Envelope carries the fields every record has regardless of sheet.
type Envelope struct {
	SheetType SheetType `json:"__sheet_type"`
	Created   string    `json:"created_at"`
}

func (e *Envelope) CreatedAt() string { return e.Created }
func (e *Envelope) SetCreatedAt(ts string) { e.Created = ts }
func (e *Envelope) envelope() *Envelope { return e }

// NewRecord returns an empty record for the sheet with its tag set.
func NewRecord(sheet SheetType) (Record, error) {
	var r Record
	switch sheet {
	case SheetAccounts:
		r = new(Account)
	case SheetComplaints:
		r = new(Complaint)
	case SheetVotes:
		r = new(Vote)
	case SheetAnnouncements:
		r = new(Announcement)
	case SheetOfficials:
		r = new(Official)
	case SheetHotlines:
		r = new(Hotline)
	case SheetHouseholds:
		r = new(Household)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSheet, sheet)
	}

	r.envelope().SheetType = sheet
	return r, nil
}

// DecodeRecord builds a typed record from normalised wire fields.
func DecodeRecord(fields map[string]string) (Record, error) {
	r, err := NewRecord(SheetType(fields[FieldSheetType]))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s fields: %w", r.Sheet(), err)
	}

	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", r.Sheet(), err)
	}

	return r, nil
}

// RecordFields flattens a record into its wire fields.
func RecordFields(r Record) (map[string]string, error) {
	Tag(r)

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s record: %w", r.Sheet(), err)
	}

	fields := make(map[string]string)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten %s record: %w", r.Sheet(), err)
	}

	return fields, nil
}

// Tag makes sure the record's __sheet_type matches its concrete type.
func Tag(r Record) Record {
	r.envelope().SheetType = r.Sheet()
	return r
}

// CloneRecord returns a deep copy of r.
func CloneRecord(r Record) (Record, error) {
	fields, err := RecordFields(r)
	if err != nil {
		return nil, err
	}

	return DecodeRecord(fields)
}

type defaulter interface {
	applyDefaults(now time.Time)
}

// ApplyDefaults fills optional fields left empty on a new record, such as an
// announcement's priority and date. now is the creation time.
func ApplyDefaults(r Record, now time.Time) Record {
	if d, ok := r.(defaulter); ok {
		d.applyDefaults(now)
	}
	return r
}
