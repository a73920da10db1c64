package store

import (
	"cmp"
	"fmt"
	"slices"

	"barangay/pkg/types"
)

func (s *Store) Accounts() []types.Account {
	return collect[types.Account](s)
}

func (s *Store) Complaints() []types.Complaint {
	return collect[types.Complaint](s)
}

func (s *Store) Votes() []types.Vote {
	return collect[types.Vote](s)
}

func (s *Store) Officials() []types.Official {
	return collect[types.Official](s)
}

func (s *Store) Hotlines() []types.Hotline {
	return collect[types.Hotline](s)
}

func (s *Store) Households() []types.Household {
	return collect[types.Household](s)
}

// Announcements are ordered by date, most recent first. Announcements whose
// date cannot be read come last. Ties keep fetch order.
func (s *Store) Announcements() []types.Announcement {
	list := collect[types.Announcement](s)

	slices.SortStableFunc(list, func(a, b types.Announcement) int {
		da, okA := a.ParsedDate()
		db, okB := b.ParsedDate()
		switch {
		case okA && okB:
			return db.Compare(da)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})

	return list
}

// ComplaintsByUpvotes is the public feed: most upvoted first, ties in fetch
// order.
func (s *Store) ComplaintsByUpvotes() []types.Complaint {
	list := collect[types.Complaint](s)
	sortByUpvotes(list)
	return list
}

// ComplaintsByCategory is the feed narrowed to one category. An empty
// category or "all" returns the whole feed.
func (s *Store) ComplaintsByCategory(category string) []types.Complaint {
	list := s.ComplaintsByUpvotes()
	if category == "" || category == "all" {
		return list
	}

	return slices.DeleteFunc(list, func(c types.Complaint) bool {
		return string(c.Category) != category
	})
}

func sortByUpvotes(list []types.Complaint) {
	slices.SortStableFunc(list, func(a, b types.Complaint) int {
		return cmp.Compare(b.Upvotes, a.Upvotes)
	})
}

func (s *Store) HasVoted(complaintID, userID string) bool {
	_, ok := find(s, func(v *types.Vote) bool {
		return v.ComplaintID == complaintID && v.UserID == userID
	})
	return ok
}

// VoteCount is the number of vote records for a complaint.
func (s *Store) VoteCount(complaintID string) int {
	count := 0
	for _, v := range s.Votes() {
		if v.ComplaintID == complaintID {
			count++
		}
	}
	return count
}

func (s *Store) Account(id string) (*types.Account, error) {
	account, ok := find(s, func(a *types.Account) bool { return a.ID == id })
	if !ok {
		return nil, fmt.Errorf("%w: account %s", types.ErrRecordNotFound, id)
	}
	return account, nil
}

// AccountByUsername matches the username exactly, case included.
func (s *Store) AccountByUsername(username string) (*types.Account, bool) {
	return find(s, func(a *types.Account) bool { return a.Username == username })
}

func (s *Store) Complaint(id string) (*types.Complaint, error) {
	complaint, ok := find(s, func(c *types.Complaint) bool { return c.ID == id })
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrComplaintNotFound, id)
	}
	return complaint, nil
}

func (s *Store) Announcement(id string) (*types.Announcement, error) {
	return lookup[types.Announcement](s, id)
}

func (s *Store) Official(id string) (*types.Official, error) {
	return lookup[types.Official](s, id)
}

func (s *Store) Hotline(id string) (*types.Hotline, error) {
	return lookup[types.Hotline](s, id)
}

func (s *Store) Household(id string) (*types.Household, error) {
	return lookup[types.Household](s, id)
}

func lookup[T any, P interface {
	*T
	types.Record
}](s *Store, id string) (*T, error) {
	v, ok := find[T, P](s, func(p P) bool { return p.RecordID() == id })
	if !ok {
		var zero P
		return nil, fmt.Errorf("%w: %s %s", types.ErrRecordNotFound, zero.Sheet(), id)
	}
	return v, nil
}
