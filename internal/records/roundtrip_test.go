package records

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"barangay/internal/gateway"
	"barangay/internal/guard"
	"barangay/internal/store"
	"barangay/internal/testutil"
	"barangay/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populated returns one record of every kind with each field set.
func populated() []types.Record {
	return []types.Record{
		&types.Complaint{
			Title:        "Clogged canal",
			Description:  "Water rises to the knee after rain",
			Category:     types.CategoryDrainage,
			Status:       types.StatusInProgress,
			Upvotes:      7,
			ImageURL:     "https://images.example.test/evidence_1717200000000_abc1234.jpg",
			ResidentName: "Maria Santos",
			UserID:       "user_1717100000000_xyz7890",
			Location:     "Purok 3, near the chapel",
		},
		&types.Announcement{
			Title:    "Clean-up drive",
			Content:  "Saturday 6AM, bring gloves & sacks",
			Priority: types.PriorityHigh,
			Date:     "2024-06-08",
		},
		&types.Official{Name: "Juan Dela Cruz", Position: "Punong Barangay", Contact: "0917 555 0101"},
		&types.Hotline{ServiceName: "Barangay Tanod", PhoneNumber: "0917 555 0100", Description: "Night patrol", AvailableHours: "6PM-6AM"},
		&types.Household{HeadOfHousehold: "Pedro Reyes", Address: "12 Mabini St", Phone: "(02) 8123-4567"},
		&types.Account{Username: "kap", Password: "$2a$10$abcdefghijklmnopqrstuv", FullName: "Kapitan", UserType: types.UserTypeAdmin, AdminID: "ADM-1"},
	}
}

type recordGateway interface {
	Gateway
	store.Fetcher
}

func TestCreateThenReloadKeepsFields(t *testing.T) {
	ctx := context.Background()

	transports := map[string]func(t *testing.T) recordGateway{
		"in memory": func(t *testing.T) recordGateway {
			return testutil.NewFakeGateway()
		},
		"over http": func(t *testing.T) recordGateway {
			srv := httptest.NewServer(testutil.NewFakeGateway().Handler())
			t.Cleanup(srv.Close)
			return gateway.NewClient(srv.URL, 5*time.Second, testutil.Logger())
		},
	}

	for name, transport := range transports {
		t.Run(name, func(t *testing.T) {
			gw := transport(t)
			logger := testutil.Logger()
			st := store.New(gw, logger)
			f := New(gw, st, guard.New(), logger)
			f.now = func() time.Time { return time.UnixMilli(1717200000000) }

			for _, record := range populated() {
				created, err := f.Create(ctx, record)
				require.NoError(t, err, "%s", record.Sheet())

				stored, err := st.Record(created.Sheet(), created.RecordID())
				require.NoError(t, err, "%s", record.Sheet())
				assert.Equal(t, created, stored)
			}

			require.NoError(t, st.Reload(ctx))
			complaints := st.Complaints()
			require.Len(t, complaints, 1)
			assert.Equal(t, types.Count(7), complaints[0].Upvotes)
			assert.Equal(t, "2024-06-01T00:00:00.000Z", complaints[0].CreatedAt())
		})
	}
}
