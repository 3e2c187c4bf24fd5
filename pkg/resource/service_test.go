package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store/file"
)

// memoryCollection is an in-memory store.Collection that counts writes
type memoryCollection[T any] struct {
	mu      sync.Mutex
	name    string
	records []T
	saves   int
}

func (c *memoryCollection[T]) Name() string { return c.name }

func (c *memoryCollection[T]) LoadAll(_ context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.records))
	copy(out, c.records)
	return out, nil
}

func (c *memoryCollection[T]) SaveAll(_ context.Context, records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make([]T, len(records))
	copy(c.records, records)
	c.saves++
	return nil
}

// mockCollection is a testify mock of store.Collection for failure paths
type mockCollection[T any] struct {
	mock.Mock
}

func (m *mockCollection[T]) Name() string { return "organizations" }

func (m *mockCollection[T]) LoadAll(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *mockCollection[T]) SaveAll(ctx context.Context, records []T) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// fakeClock returns start and advances by one second per call
func fakeClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := current
		current = current.Add(time.Second)
		return t
	}
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

var epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func newOrgService(t *testing.T) (*Service[model.Organization, *model.Organization], *memoryCollection[model.Organization]) {
	t.Helper()
	col := &memoryCollection[model.Organization]{name: "organizations"}
	svc := NewService[model.Organization](col, WithClock(fakeClock(epoch)), WithIDGenerator(sequentialIDs("org")))
	return svc, col
}

func strPtr(s string) *string { return &s }

func TestService_CreateThenGet(t *testing.T) {
	svc, col := newOrgService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.Organization{Name: "Acme", Audit: model.Audit{CreatedBy: "alice"}})
	require.NoError(t, err)

	assert.Equal(t, "org-1", created.ID)
	assert.Equal(t, "Acme", created.Name)
	assert.Equal(t, "alice", created.CreatedBy)
	assert.Equal(t, epoch, created.CreatedOn.Time)
	assert.Equal(t, created.CreatedOn, created.UpdatedOn)
	assert.Equal(t, 1, col.saves)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestService_Create_OverwritesServerFields(t *testing.T) {
	svc, _ := newOrgService(t)

	supplied := model.Organization{
		ID:   "client-chosen",
		Name: "Acme",
		Audit: model.Audit{
			CreatedOn: model.NewTimestamp(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)),
			UpdatedOn: model.NewTimestamp(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
	created, err := svc.Create(context.Background(), supplied)
	require.NoError(t, err)

	assert.NotEqual(t, "client-chosen", created.ID)
	assert.Equal(t, epoch, created.CreatedOn.Time)
	assert.Equal(t, epoch, created.UpdatedOn.Time)
}

func TestService_Create_DefaultIDsAreUUIDs(t *testing.T) {
	col := &memoryCollection[model.Group]{name: "groups"}
	svc := NewService[model.Group](col)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		g, err := svc.Create(ctx, model.Group{Name: fmt.Sprintf("g%d", i)})
		require.NoError(t, err)
		assert.Len(t, g.ID, 36)
		assert.False(t, seen[g.ID], "duplicate id %s", g.ID)
		seen[g.ID] = true
	}
}

func TestService_Create_RegeneratesCollidingID(t *testing.T) {
	col := &memoryCollection[model.Organization]{
		name:    "organizations",
		records: []model.Organization{{ID: "dup"}},
	}
	ids := []string{"dup", "fresh"}
	svc := NewService[model.Organization](col, WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	created, err := svc.Create(context.Background(), model.Organization{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", created.ID)
}

func TestService_Create_TimestampsAreUTCMillis(t *testing.T) {
	col := &memoryCollection[model.Location]{name: "locations"}
	local := time.Date(2025, 6, 1, 10, 30, 0, 123456789, time.FixedZone("X", 3600))
	svc := NewService[model.Location](col, WithClock(func() time.Time { return local }))

	created, err := svc.Create(context.Background(), model.Location{Name: "HQ"})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, created.CreatedOn.Location())
	assert.Equal(t, 123000000, created.CreatedOn.Nanosecond())
	assert.True(t, created.CreatedOn.Equal(local.Truncate(time.Millisecond)))
}

func TestService_List_IsIdempotent(t *testing.T) {
	svc, col := newOrgService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, model.Organization{Name: name})
		require.NoError(t, err)
	}
	saves := col.saves

	first, err := svc.List(ctx)
	require.NoError(t, err)
	second, err := svc.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{first[0].Name, first[1].Name, first[2].Name})
	assert.Equal(t, saves, col.saves, "list must not write")
}

func TestService_Update(t *testing.T) {
	svc, col := newOrgService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, model.Organization{Name: "first"})
	require.NoError(t, err)
	target, err := svc.Create(ctx, model.Organization{Name: "Acme", Audit: model.Audit{CreatedBy: "alice"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.Organization{Name: "last"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, target.ID, model.OrganizationPatch{Name: strPtr("Acme Corp"), UpdatedBy: strPtr("bob")})
	require.NoError(t, err)

	assert.Equal(t, target.ID, updated.ID)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "alice", updated.CreatedBy)
	assert.Equal(t, "bob", updated.UpdatedBy)
	assert.Equal(t, target.CreatedOn, updated.CreatedOn)
	assert.True(t, updated.UpdatedOn.After(target.UpdatedOn.Time))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first, all[0])
	assert.Equal(t, updated, all[1], "update keeps position")
	assert.Equal(t, 4, col.saves)
}

func TestService_Update_EmptyPatchOnlyTouchesUpdatedOn(t *testing.T) {
	svc, _ := newOrgService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.Organization{Name: "Acme", Audit: model.Audit{UpdatedBy: "alice"}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, model.OrganizationPatch{})
	require.NoError(t, err)

	expected := created
	expected.UpdatedOn = updated.UpdatedOn
	assert.Equal(t, expected, updated)
	assert.True(t, updated.UpdatedOn.After(created.UpdatedOn.Time))
}

// rogueOrganizationPatch tries to rewrite fields no patch may change
type rogueOrganizationPatch struct{}

func (rogueOrganizationPatch) Apply(o *model.Organization) {
	o.ID = "hijacked"
	o.CreatedBy = "mallory"
	o.CreatedOn = model.Timestamp{}
	o.Name = "renamed"
}

func TestService_Update_ProtectsIdentity(t *testing.T) {
	svc, _ := newOrgService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.Organization{Name: "Acme", Audit: model.Audit{CreatedBy: "alice"}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, rogueOrganizationPatch{})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "alice", updated.CreatedBy)
	assert.Equal(t, created.CreatedOn, updated.CreatedOn)
	assert.Equal(t, "renamed", updated.Name)
}

func TestService_Delete_PreservesOrder(t *testing.T) {
	svc, _ := newOrgService(t)
	ctx := context.Background()

	var created []model.Organization
	for _, name := range []string{"a", "b", "c", "d"} {
		o, err := svc.Create(ctx, model.Organization{Name: name})
		require.NoError(t, err)
		created = append(created, o)
	}

	removed, err := svc.Delete(ctx, created[1].ID)
	require.NoError(t, err)
	assert.Equal(t, created[1], removed)

	remaining, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Organization{created[0], created[2], created[3]}, remaining)

	_, err = svc.Get(ctx, created[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_NotFound_DoesNotWrite(t *testing.T) {
	svc, col := newOrgService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.Organization{Name: "Acme"})
	require.NoError(t, err)
	before, err := svc.List(ctx)
	require.NoError(t, err)
	saves := col.saves

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, "missing", model.OrganizationPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Delete(ctx, "missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "organizations", notFound.Collection)
	assert.Equal(t, "missing", notFound.ID)

	after, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, saves, col.saves)
}

func TestService_AcmeScenario(t *testing.T) {
	ctx := context.Background()
	col := file.NewCollection[model.Organization](t.TempDir(), "organizations")
	require.NoError(t, col.Ensure(ctx))
	svc := NewService[model.Organization](col)

	created, err := svc.Create(ctx, model.Organization{Name: "Acme", Audit: model.Audit{CreatedBy: "alice"}})
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Organization{created}, all)

	updated, err := svc.Update(ctx, created.ID, model.OrganizationPatch{Name: strPtr("Acme Corp"), UpdatedBy: strPtr("bob")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "alice", updated.CreatedBy)
	assert.Equal(t, "bob", updated.UpdatedBy)
	assert.Equal(t, created.CreatedOn, updated.CreatedOn)

	removed, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, removed)

	all, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	col := file.NewCollection[model.Member](t.TempDir(), "members")
	require.NoError(t, col.Ensure(ctx))
	svc := NewService[model.Member](col)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(ctx, model.Member{OrganizationID: "o", LocationID: fmt.Sprintf("l%d", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n, "no create may be lost")
}

func TestService_StorageErrors(t *testing.T) {
	ctx := context.Background()
	readErr := &store.ReadError{Collection: "organizations", Err: errors.New("boom")}
	writeErr := &store.WriteError{Collection: "organizations", Err: errors.New("disk full")}

	t.Run("list propagates read error", func(t *testing.T) {
		col := &mockCollection[model.Organization]{}
		col.On("LoadAll", ctx).Return(nil, readErr)
		svc := NewService[model.Organization](col)

		_, err := svc.List(ctx)
		assert.ErrorIs(t, err, store.ErrStorageRead)
		col.AssertExpectations(t)
	})

	t.Run("create does not write after a read error", func(t *testing.T) {
		col := &mockCollection[model.Organization]{}
		col.On("LoadAll", ctx).Return(nil, readErr)
		svc := NewService[model.Organization](col)

		_, err := svc.Create(ctx, model.Organization{Name: "x"})
		assert.ErrorIs(t, err, store.ErrStorageRead)
		col.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("create propagates write error", func(t *testing.T) {
		col := &mockCollection[model.Organization]{}
		col.On("LoadAll", ctx).Return([]model.Organization{}, nil)
		col.On("SaveAll", ctx, mock.AnythingOfType("[]model.Organization")).Return(writeErr)
		svc := NewService[model.Organization](col)

		_, err := svc.Create(ctx, model.Organization{Name: "x"})
		assert.ErrorIs(t, err, store.ErrStorageWrite)
		col.AssertExpectations(t)
	})

	t.Run("delete propagates write error", func(t *testing.T) {
		col := &mockCollection[model.Organization]{}
		col.On("LoadAll", ctx).Return([]model.Organization{{ID: "a"}}, nil)
		col.On("SaveAll", ctx, []model.Organization{}).Return(writeErr)
		svc := NewService[model.Organization](col)

		_, err := svc.Delete(ctx, "a")
		assert.ErrorIs(t, err, store.ErrStorageWrite)
		col.AssertExpectations(t)
	})
}
