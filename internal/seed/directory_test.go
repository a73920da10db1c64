package seed

import (
	"context"
	"strings"
	"testing"

	"barangay/internal/guard"
	"barangay/internal/records"
	"barangay/internal/store"
	"barangay/internal/testutil"
	"barangay/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDirectory(t *testing.T) {
	ctx := context.Background()
	logger := testutil.Logger()

	fake := testutil.NewFakeGateway(
		&types.Hotline{ID: "h1", ServiceName: "philippine red cross ", PhoneNumber: "143"},
		&types.Official{ID: "o1", Name: "Juan Dela Cruz", Position: "Punong Barangay"},
	)
	st := store.New(fake, logger)
	require.NoError(t, st.Reload(ctx))
	facade := records.New(fake, st, guard.New(), logger)

	result, err := SeedDirectory(ctx, st, facade, DefaultDirectory, logger)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 7, Skipped: 2}, result)
	assert.Equal(t, 4, fake.Count(types.SheetHotlines))
	assert.Equal(t, 5, fake.Count(types.SheetOfficials))

	for _, o := range st.Officials() {
		if o.Position == "Punong Barangay" {
			assert.Equal(t, "Juan Dela Cruz", o.Name)
			continue
		}
		assert.Equal(t, "Vacant", o.Name)
		assert.True(t, strings.HasPrefix(o.ID, "official_"), o.ID)
	}

	result, err = SeedDirectory(ctx, st, facade, DefaultDirectory, logger)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 0, Skipped: 9}, result)
	assert.Equal(t, 7, fake.Calls("create"), "second run creates nothing")
}

func TestSeedDirectoryGatewayFailure(t *testing.T) {
	ctx := context.Background()
	logger := testutil.Logger()

	fake := testutil.NewFakeGateway()
	st := store.New(fake, logger)
	facade := records.New(fake, st, guard.New(), logger)
	fake.Fail("create", assert.AnError)

	result, err := SeedDirectory(ctx, st, facade, DefaultDirectory, logger)
	require.Error(t, err)
	assert.True(t, types.IsGatewayError(err))
	assert.Contains(t, err.Error(), "National Emergency Hotline")
	assert.Equal(t, Result{}, result)
}

func TestLoadDefaults(t *testing.T) {
	doc := `
hotlines:
  - service_name: Barangay Tanod
    phone_number: "0917 555 0100"
    available_hours: 6PM-6AM
positions:
  - Punong Barangay
  - Barangay Health Worker
`
	d, err := LoadDefaults(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, d.Hotlines, 1)
	assert.Equal(t, Hotline{ServiceName: "Barangay Tanod", PhoneNumber: "0917 555 0100", AvailableHours: "6PM-6AM"}, d.Hotlines[0])
	assert.Equal(t, []string{"Punong Barangay", "Barangay Health Worker"}, d.Positions)

	_, err = LoadDefaults(strings.NewReader("hotlines: [unclosed"))
	assert.Error(t, err)
}
