package types

// Vote records that a user upvoted a complaint. At most one exists per
// (ComplaintID, UserID); the store does not enforce it, callers must.
type Vote struct {
	Envelope
	ID          string `json:"__vote_id"`
	ComplaintID string `json:"complaint_id"`
	UserID      string `json:"user_id"`
}

func (v *Vote) Sheet() SheetType { return SheetVotes }
func (v *Vote) RecordID() string { return v.ID }
func (v *Vote) SetRecordID(id string) { v.ID = id }

func (v *Vote) Validate() error {
	if err := required("complaint_id", v.ComplaintID); err != nil {
		return err
	}
	return required("user_id", v.UserID)
}
