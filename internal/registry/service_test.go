package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routedesk/routedesk/internal/platform/httpx"
)

type fakeRegistryRepo struct {
	routes     map[int64]*Route
	nextID     int64
	customers  int64
	orders     int64
	updated    bool
	deleted    []int64
	listCalls  int
	activeOnly bool
}

func newFakeRegistryRepo() *fakeRegistryRepo {
	return &fakeRegistryRepo{routes: map[int64]*Route{}, nextID: 10}
}

func (f *fakeRegistryRepo) GetRoute(_ context.Context, id int64) (*Route, error) {
	r, ok := f.routes[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRegistryRepo) FindRouteByName(_ context.Context, name string) (*Route, error) {
	normalized := NormalizeRouteName(name)
	for _, r := range f.routes {
		if r.Name == normalized {
			copied := *r
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRegistryRepo) ListRoutes(_ context.Context, activeOnly bool) ([]Route, error) {
	f.listCalls++
	f.activeOnly = activeOnly
	var routes []Route
	for _, r := range f.routes {
		if activeOnly && !r.IsActive {
			continue
		}
		routes = append(routes, *r)
	}
	return routes, nil
}

func (f *fakeRegistryRepo) CreateRoute(_ context.Context, name string, isActive bool) (int64, error) {
	f.nextID++
	f.routes[f.nextID] = &Route{ID: f.nextID, Name: name, IsActive: isActive}
	return f.nextID, nil
}

func (f *fakeRegistryRepo) UpdateRoute(_ context.Context, id int64, name *string, isActive *bool) error {
	r, ok := f.routes[id]
	if !ok {
		return ErrNotFound
	}
	f.updated = true
	if name != nil {
		r.Name = *name
	}
	if isActive != nil {
		r.IsActive = *isActive
	}
	return nil
}

func (f *fakeRegistryRepo) DeleteRoute(_ context.Context, id int64) error {
	if _, ok := f.routes[id]; !ok {
		return ErrNotFound
	}
	delete(f.routes, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRegistryRepo) CountRouteDependents(_ context.Context, _ int64) (int64, int64, error) {
	return f.customers, f.orders, nil
}

func (f *fakeRegistryRepo) FindSalesExecutiveByDisplayName(_ context.Context, _ string) (*SalesExecutive, error) {
	return nil, ErrNotFound
}

func (f *fakeRegistryRepo) FindSalesExecutiveByUsername(_ context.Context, _ string) (*SalesExecutive, error) {
	return nil, ErrNotFound
}

func (f *fakeRegistryRepo) ListSalesExecutives(_ context.Context) ([]SalesExecutive, error) {
	return nil, nil
}

func TestCreateRouteNormalizesName(t *testing.T) {
	repo := newFakeRegistryRepo()
	svc := NewService(repo, nil)

	route, err := svc.CreateRoute(context.Background(), "  north loop ")
	require.NoError(t, err)
	require.Equal(t, "NORTH LOOP", route.Name)
	require.True(t, route.IsActive)
}

func TestCreateRouteDuplicateCaseInsensitive(t *testing.T) {
	repo := newFakeRegistryRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateRoute(context.Background(), "North Loop")
	require.NoError(t, err)

	_, err = svc.CreateRoute(context.Background(), "NORTH loop")
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCreateRouteEmptyName(t *testing.T) {
	svc := NewService(newFakeRegistryRepo(), nil)
	_, err := svc.CreateRoute(context.Background(), "   ")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateRouteRenameConflict(t *testing.T) {
	repo := newFakeRegistryRepo()
	svc := NewService(repo, nil)

	a, err := svc.CreateRoute(context.Background(), "North Loop")
	require.NoError(t, err)
	_, err = svc.CreateRoute(context.Background(), "Old Mill")
	require.NoError(t, err)

	taken := "old mill"
	_, err = svc.UpdateRoute(context.Background(), a.ID, &taken, nil)
	require.ErrorIs(t, err, httpx.ErrConflict)

	// Renaming to its own name (different case) is allowed.
	same := "north LOOP"
	updated, err := svc.UpdateRoute(context.Background(), a.ID, &same, nil)
	require.NoError(t, err)
	require.Equal(t, "NORTH LOOP", updated.Name)
}

func TestDeleteRouteRefusedWhileReferenced(t *testing.T) {
	repo := newFakeRegistryRepo()
	svc := NewService(repo, nil)

	route, err := svc.CreateRoute(context.Background(), "North Loop")
	require.NoError(t, err)

	repo.customers = 4
	repo.orders = 9
	err = svc.DeleteRoute(context.Background(), route.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "4 customer(s)")
	require.Contains(t, err.Error(), "9 order(s)")
	require.Empty(t, repo.deleted)

	repo.customers, repo.orders = 0, 0
	require.NoError(t, svc.DeleteRoute(context.Background(), route.ID))
	require.Equal(t, []int64{route.ID}, repo.deleted)
}

func TestNormalizeRouteName(t *testing.T) {
	require.Equal(t, "NORTH LOOP", NormalizeRouteName(" north loop "))
	require.Equal(t, "", NormalizeRouteName("   "))
}
