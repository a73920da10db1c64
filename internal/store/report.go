package store

import "barangay/pkg/types"

// Report counts complaints per status and per category. Every known status
// is present in StatusCounts, zero when unused; complaints with a status
// outside the known set only count toward Total.
func (s *Store) Report() types.Report {
	complaints := s.Complaints()

	report := types.Report{
		Total:          len(complaints),
		StatusCounts:   make(map[types.ComplaintStatus]int, len(types.ComplaintStatuses)),
		CategoryCounts: make(map[types.ComplaintCategory]int),
	}

	for _, status := range types.ComplaintStatuses {
		report.StatusCounts[status] = 0
	}

	for _, c := range complaints {
		if _, ok := report.StatusCounts[c.Status]; ok {
			report.StatusCounts[c.Status]++
		}

		category := c.Category
		if category == "" {
			category = types.CategoryOther
		}
		report.CategoryCounts[category]++
	}

	return report
}
