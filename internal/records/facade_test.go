package records

import (
	"context"
	"regexp"
	"testing"
	"time"

	"barangay/internal/guard"
	"barangay/internal/store"
	"barangay/internal/testutil"
	"barangay/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	gateway *testutil.FakeGateway
	store   *store.Store
	guard   *guard.Guard
	facade  *Facade
}

func newFixture(t *testing.T, seed ...types.Record) *fixture {
	t.Helper()

	fake := testutil.NewFakeGateway(seed...)
	logger := testutil.Logger()
	st := store.New(fake, logger)
	require.NoError(t, st.Reload(context.Background()))

	g := guard.New()
	f := New(fake, st, g, logger)
	f.now = func() time.Time { return time.UnixMilli(1717200000000) }

	return &fixture{gateway: fake, store: st, guard: g, facade: f}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps identity and reloads", func(t *testing.T) {
		fx := newFixture(t)

		created, err := fx.facade.Create(ctx, &types.Hotline{ServiceName: "Police", PhoneNumber: "117"})
		require.NoError(t, err)

		assert.Regexp(t, regexp.MustCompile(`^hotline_1717200000000_[0-9a-z]{7}$`), created.RecordID())
		assert.Equal(t, "2024-06-01T00:00:00.000Z", created.CreatedAt())
		assert.Equal(t, 1, fx.gateway.Calls("create"))
		assert.Equal(t, uint64(2), fx.store.Generation())

		hotlines := fx.store.Hotlines()
		require.Len(t, hotlines, 1)
		assert.Equal(t, created.RecordID(), hotlines[0].ID)
	})

	t.Run("announcement priority defaults to normal", func(t *testing.T) {
		fx := newFixture(t)

		created, err := fx.facade.Create(ctx, &types.Announcement{Title: "Clean-up", Content: "Saturday"})
		require.NoError(t, err)
		assert.Equal(t, types.PriorityNormal, created.(*types.Announcement).Priority)
		assert.Equal(t, "2024-06-01", created.(*types.Announcement).Date, "empty date is the creation day")

		announcements := fx.store.Announcements()
		require.Len(t, announcements, 1)
		assert.Equal(t, "2024-06-01", announcements[0].Date)
	})

	t.Run("invalid record makes no call", func(t *testing.T) {
		fx := newFixture(t)

		_, err := fx.facade.Create(ctx, &types.Official{Name: "Juan"})
		require.Error(t, err)
		assert.True(t, types.IsValidationError(err))
		assert.Equal(t, 0, fx.gateway.Calls("create"))
	})

	t.Run("gateway failure skips reload", func(t *testing.T) {
		fx := newFixture(t)
		fx.gateway.Fail("create", assert.AnError)

		created, err := fx.facade.Create(ctx, &types.Hotline{ServiceName: "Police", PhoneNumber: "117"})
		require.Error(t, err)
		assert.Nil(t, created)
		assert.True(t, types.IsGatewayError(err))
		assert.Equal(t, uint64(1), fx.store.Generation())
	})

	t.Run("reload failure after a successful write", func(t *testing.T) {
		fx := newFixture(t)
		fx.gateway.Fail("getAll", assert.AnError)

		created, err := fx.facade.Create(ctx, &types.Hotline{ServiceName: "Police", PhoneNumber: "117"})
		require.NotNil(t, created)
		assert.ErrorIs(t, err, types.ErrRefreshFailed)
		assert.Equal(t, 1, fx.gateway.Count(types.SheetHotlines))
	})

	t.Run("duplicate submission in flight", func(t *testing.T) {
		fx := newFixture(t)
		hotline := &types.Hotline{ServiceName: "Police", PhoneNumber: "117"}

		release, err := fx.guard.Acquire(ctx, guard.Key("create", string(types.SheetHotlines), fingerprint(types.Tag(hotline))))
		require.NoError(t, err)
		defer release()

		_, err = fx.facade.Create(ctx, &types.Hotline{ServiceName: "Police", PhoneNumber: "117"})
		assert.ErrorIs(t, err, types.ErrInFlight)
		assert.Equal(t, 0, fx.gateway.Calls("create"))
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	official := &types.Official{ID: "official_1_aaaaaaa", Name: "Juan", Position: "Kagawad", Contact: "0917"}
	official.SetCreatedAt("2024-01-01T00:00:00.000Z")

	t.Run("partial patch keeps the rest", func(t *testing.T) {
		fx := newFixture(t, official)

		existing, err := fx.store.Record(types.SheetOfficials, official.ID)
		require.NoError(t, err)

		updated, err := fx.facade.Update(ctx, existing, map[string]string{"contact": "0918"})
		require.NoError(t, err)

		o := updated.(*types.Official)
		assert.Equal(t, "0918", o.Contact)
		assert.Equal(t, "Juan", o.Name)
		assert.Equal(t, "Kagawad", o.Position)
		assert.Equal(t, "2024-01-01T00:00:00.000Z", o.CreatedAt())

		stored, ok := fx.gateway.Fields(types.SheetOfficials, official.ID)
		require.True(t, ok)
		assert.Equal(t, "0918", stored["contact"])
		assert.Equal(t, "Juan", stored["official_name"])

		fromStore, err := fx.store.Official(official.ID)
		require.NoError(t, err)
		assert.Equal(t, "0918", fromStore.Contact)
	})

	t.Run("identity fields are locked", func(t *testing.T) {
		fx := newFixture(t, official)

		for _, field := range []string{"__official_id", "__sheet_type", "created_at"} {
			_, err := fx.facade.Update(ctx, official, map[string]string{field: "x"})
			assert.True(t, types.IsValidationError(err), field)
		}
		assert.Equal(t, 0, fx.gateway.Calls("update"))
	})

	t.Run("unknown field", func(t *testing.T) {
		fx := newFixture(t, official)

		_, err := fx.facade.Update(ctx, official, map[string]string{"nickname": "J"})
		assert.True(t, types.IsValidationError(err))
	})

	t.Run("merged record is validated", func(t *testing.T) {
		fx := newFixture(t, official)

		_, err := fx.facade.Update(ctx, official, map[string]string{"position": ""})
		assert.True(t, types.IsValidationError(err))
		assert.Equal(t, 0, fx.gateway.Calls("update"))
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	household := &types.Household{ID: "household_1_aaaaaaa", HeadOfHousehold: "Ana", Address: "Purok 1"}

	t.Run("deletes and reloads", func(t *testing.T) {
		fx := newFixture(t, household)

		require.NoError(t, fx.facade.Remove(ctx, household.ID))
		assert.Empty(t, fx.store.Households())
		assert.Equal(t, 0, fx.gateway.Count(types.SheetHouseholds))
	})

	t.Run("empty id", func(t *testing.T) {
		fx := newFixture(t, household)

		err := fx.facade.Remove(ctx, "")
		assert.True(t, types.IsValidationError(err))
		assert.Equal(t, 0, fx.gateway.Calls("delete"))
	})

	t.Run("gateway failure", func(t *testing.T) {
		fx := newFixture(t, household)
		fx.gateway.Fail("delete", assert.AnError)

		err := fx.facade.Remove(ctx, household.ID)
		assert.True(t, types.IsGatewayError(err))
		assert.Len(t, fx.store.Households(), 1)
	})
}
