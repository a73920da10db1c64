package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord(t *testing.T) {
	t.Run("complaint with text upvotes", func(t *testing.T) {
		r, err := DecodeRecord(map[string]string{
			"__sheet_type":   "complaints",
			"__complaint_id": "complaint_1700000000000_abc1234",
			"title":          "Broken streetlight",
			"category":       "Lighting",
			"status":         "under_review",
			"upvotes":        "3",
			"created_at":     "2024-05-01T08:00:00.000Z",
		})
		require.NoError(t, err)

		c, ok := r.(*Complaint)
		require.True(t, ok)
		assert.Equal(t, SheetComplaints, c.Sheet())
		assert.Equal(t, "complaint_1700000000000_abc1234", c.RecordID())
		assert.Equal(t, Count(3), c.Upvotes)
		assert.Equal(t, StatusUnderReview, c.Status)
		assert.Equal(t, "2024-05-01T08:00:00.000Z", c.CreatedAt())
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := DecodeRecord(map[string]string{"__sheet_type": "payments"})
		assert.ErrorIs(t, err, ErrUnknownSheet)
	})

	t.Run("missing sheet", func(t *testing.T) {
		_, err := DecodeRecord(map[string]string{"title": "x"})
		assert.ErrorIs(t, err, ErrUnknownSheet)
	})
}

func TestRecordFields(t *testing.T) {
	a := &Announcement{
		ID:       "announcement_1_aaaaaaa",
		Title:    "Clean-up drive",
		Content:  "Saturday 7am",
		Priority: PriorityHigh,
		Date:     "2024-06-01",
	}

	fields, err := RecordFields(a)
	require.NoError(t, err)

	assert.Equal(t, "announcements", fields[FieldSheetType])
	assert.Equal(t, "announcement_1_aaaaaaa", fields["__announcement_id"])
	assert.Equal(t, "Clean-up drive", fields["announcement_title"])
	assert.Equal(t, "high", fields["priority"])
	assert.Contains(t, fields, FieldCreatedAt)
}

func TestCloneRecordIsIndependent(t *testing.T) {
	original := &Complaint{ID: "c1", Title: "Pothole", Category: CategoryRoads, Status: StatusSubmitted, Upvotes: 2}

	clone, err := CloneRecord(original)
	require.NoError(t, err)

	clone.(*Complaint).Upvotes = 9
	assert.Equal(t, Count(2), original.Upvotes)
}

func TestApplyDefaults(t *testing.T) {
	// 07:30 in Manila is still the previous day in UTC
	now := time.Date(2024, 6, 2, 7, 30, 0, 0, time.FixedZone("PST", 8*60*60))

	a := &Announcement{Title: "t", Content: "c"}
	ApplyDefaults(a, now)
	assert.Equal(t, PriorityNormal, a.Priority)
	assert.Equal(t, "2024-06-01", a.Date)
	assert.NoError(t, a.Validate())

	dated := &Announcement{Title: "t", Content: "c", Priority: PriorityHigh, Date: "2023-12-25"}
	ApplyDefaults(dated, now)
	assert.Equal(t, PriorityHigh, dated.Priority)
	assert.Equal(t, "2023-12-25", dated.Date)

	c := &Complaint{Title: "t"}
	ApplyDefaults(c, now)
	assert.Equal(t, CategoryOther, c.Category)
	assert.Equal(t, StatusSubmitted, c.Status)

	// records without defaults are left alone
	v := &Vote{ComplaintID: "c1"}
	assert.Same(t, Record(v), ApplyDefaults(v, now))
}

func TestSheetType(t *testing.T) {
	assert.Equal(t, "__user_id", SheetAccounts.KeyField())
	assert.Equal(t, "vote", SheetVotes.IDPrefix())
	assert.True(t, SheetHouseholds.Valid())
	assert.False(t, SheetType("payments").Valid())
}

func TestCount(t *testing.T) {
	tests := []struct {
		in   string
		want Count
	}{
		{"4", 4},
		{" 12 ", 12},
		{"", 0},
		{"abc", 0},
		{"-3", 0},
		{"2.0", 2},
		{"NaN", 0},
		{"Inf", 0},
		{"1e30", MaxCount},
		{"9223372036854775808", MaxCount},
		{"2147483647", MaxCount},
		{"2147483646", MaxCount - 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCount(tt.in), "ParseCount(%q)", tt.in)
	}

	t.Run("json accepts text, numbers and null", func(t *testing.T) {
		var v struct {
			A Count `json:"a"`
			B Count `json:"b"`
			C Count `json:"c"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"a":"5","b":7,"c":null}`), &v))
		assert.Equal(t, Count(5), v.A)
		assert.Equal(t, Count(7), v.B)
		assert.Equal(t, Count(0), v.C)

		require.NoError(t, json.Unmarshal([]byte(`{"a":1e30,"b":"-1e30"}`), &v))
		assert.Equal(t, MaxCount, v.A)
		assert.Equal(t, Count(0), v.B)
	})

	t.Run("json writes text", func(t *testing.T) {
		data, err := json.Marshal(Count(4))
		require.NoError(t, err)
		assert.Equal(t, `"4"`, string(data))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		field  string
	}{
		{"account without password", &Account{Username: "maria", UserType: UserTypeResident}, "password"},
		{"account with bad type", &Account{Username: "maria", Password: "x", UserType: "mayor"}, "user_type"},
		{"complaint without title", &Complaint{Category: CategoryRoads, Status: StatusSubmitted}, "title"},
		{"complaint with unknown status", &Complaint{Title: "t", Category: CategoryRoads, Status: "closed"}, "status"},
		{"announcement with bad priority", &Announcement{Title: "t", Content: "c", Priority: "low"}, "priority"},
		{"official without position", &Official{Name: "Juan"}, "position"},
		{"hotline without phone", &Hotline{ServiceName: "Police"}, "phone_number"},
		{"household without address", &Household{HeadOfHousehold: "Ana"}, "address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestAnnouncementParsedDate(t *testing.T) {
	for _, raw := range []string{"2024-06-01", "2024-06-01T09:30:00", "2024-06-01 09:30:00", "2024-06-01T09:30:00.000Z", "06/01/2024"} {
		a := &Announcement{Date: raw}
		parsed, ok := a.ParsedDate()
		require.True(t, ok, raw)
		assert.Equal(t, 2024, parsed.Year(), raw)
		assert.Equal(t, 6, int(parsed.Month()), raw)
	}

	_, ok := (&Announcement{Date: "next week"}).ParsedDate()
	assert.False(t, ok)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsGatewayError(NewGatewayError("getAll", assert.AnError)))
	assert.ErrorIs(t, NewGatewayError("getAll", assert.AnError), assert.AnError)
	assert.False(t, IsGatewayError(ErrAlreadyVoted))

	assert.True(t, IsValidationError(NewValidationError("title", "is required")))
	assert.Equal(t, "title: is required", NewValidationError("title", "is required").Error())
	assert.Equal(t, "provide username", NewValidationError("", "provide username").Error())
}
