package customers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routedesk/routedesk/internal/auth"
	"github.com/routedesk/routedesk/internal/platform/httpx"
	"github.com/routedesk/routedesk/internal/registry"
)

type fakeCustomerRepo struct {
	customers  map[int64]*Customer
	nextID     int64
	created    []Customer
	updates    map[string]interface{}
	updatedID  int64
	orderCount int64
	listReq    ListCustomersRequest
	listRows   []Customer
	listTotal  int
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: map[int64]*Customer{}, nextID: 10}
}

func (f *fakeCustomerRepo) Get(_ context.Context, id int64) (*Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCustomerRepo) FindByName(_ context.Context, name string) (*Customer, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, c := range f.customers {
		if strings.ToLower(c.Name) == needle {
			copied := *c
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeCustomerRepo) List(_ context.Context, req ListCustomersRequest, _, _ int) ([]Customer, int, error) {
	f.listReq = req
	return f.listRows, f.listTotal, nil
}

func (f *fakeCustomerRepo) Create(_ context.Context, customer Customer) (int64, error) {
	f.nextID++
	customer.ID = f.nextID
	f.created = append(f.created, customer)
	f.customers[customer.ID] = &customer
	return customer.ID, nil
}

func (f *fakeCustomerRepo) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	if _, ok := f.customers[id]; !ok {
		return ErrNotFound
	}
	f.updatedID = id
	f.updates = updates
	if name, ok := updates["name"].(string); ok {
		f.customers[id].Name = name
	}
	return nil
}

func (f *fakeCustomerRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.customers[id]; !ok {
		return ErrNotFound
	}
	delete(f.customers, id)
	return nil
}

func (f *fakeCustomerRepo) CountOrders(_ context.Context, _ int64) (int64, error) {
	return f.orderCount, nil
}

type fakeRegistry struct {
	routes map[int64]*registry.Route
	execs  map[string]*registry.SalesExecutive
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		routes: map[int64]*registry.Route{
			3: {ID: 3, Name: "NORTH LOOP", IsActive: true},
			4: {ID: 4, Name: "OLD MILL", IsActive: false},
		},
		execs: map[string]*registry.SalesExecutive{
			"ravi": {ID: 2, Username: "ravi", DisplayName: "Ravi Kumar", IsActive: true},
		},
	}
}

func (f *fakeRegistry) GetRoute(_ context.Context, id int64) (*registry.Route, error) {
	r, ok := f.routes[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return r, nil
}

func (f *fakeRegistry) FindRouteByName(_ context.Context, name string) (*registry.Route, error) {
	normalized := registry.NormalizeRouteName(name)
	for _, r := range f.routes {
		if r.Name == normalized {
			return r, nil
		}
	}
	return nil, registry.ErrNotFound
}

func (f *fakeRegistry) FindSalesExecutiveByDisplayName(_ context.Context, displayName string) (*registry.SalesExecutive, error) {
	needle := strings.ToLower(strings.TrimSpace(displayName))
	for _, e := range f.execs {
		if strings.ToLower(e.DisplayName) == needle {
			return e, nil
		}
	}
	return nil, registry.ErrNotFound
}

func (f *fakeRegistry) FindSalesExecutiveByUsername(_ context.Context, username string) (*registry.SalesExecutive, error) {
	e, ok := f.execs[username]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return e, nil
}

type fakePropagator struct {
	calls     int
	lastID    int64
	lastRoute *int64
	lastExec  *string
	err       error
}

func (f *fakePropagator) EnqueueCustomerFieldSync(_ context.Context, customerID int64, routeID *int64, salesExecutive *string) error {
	f.calls++
	f.lastID = customerID
	f.lastRoute = routeID
	f.lastExec = salesExecutive
	return f.err
}

func newCustomerService(repo *fakeCustomerRepo, tasks *fakePropagator) *Service {
	return NewService(repo, newFakeRegistry(), tasks, slog.Default())
}

func seedCustomer(repo *fakeCustomerRepo) *Customer {
	c := &Customer{ID: 7, Name: "Acme Traders", RouteID: 3, SalesExecutive: "ravi", StandardPrice: 40, PremiumPrice: 55}
	repo.customers[7] = c
	return c
}

func TestCreateCustomerDuplicateNameCaseInsensitive(t *testing.T) {
	repo := newFakeCustomerRepo()
	seedCustomer(repo)
	svc := newCustomerService(repo, &fakePropagator{})

	_, err := svc.Create(context.Background(), CreateCustomerRequest{
		Name: "  ACME traders ", RouteID: 3, SalesExecutive: "ravi",
	})
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Empty(t, repo.created)
}

func TestCreateCustomerUnknownRoute(t *testing.T) {
	svc := newCustomerService(newFakeCustomerRepo(), &fakePropagator{})

	_, err := svc.Create(context.Background(), CreateCustomerRequest{
		Name: "Fresh Mart", RouteID: 99, SalesExecutive: "ravi",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateCustomerInactiveRoute(t *testing.T) {
	svc := newCustomerService(newFakeCustomerRepo(), &fakePropagator{})

	_, err := svc.Create(context.Background(), CreateCustomerRequest{
		Name: "Fresh Mart", RouteID: 4, SalesExecutive: "ravi",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateCustomerUnknownExecutive(t *testing.T) {
	svc := newCustomerService(newFakeCustomerRepo(), &fakePropagator{})

	_, err := svc.Create(context.Background(), CreateCustomerRequest{
		Name: "Fresh Mart", RouteID: 3, SalesExecutive: "ghost",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateCustomerOK(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newCustomerService(repo, &fakePropagator{})

	c, err := svc.Create(context.Background(), CreateCustomerRequest{
		Name: " Fresh Mart ", RouteID: 3, SalesExecutive: "ravi", StandardPrice: 35,
	})
	require.NoError(t, err)
	require.Equal(t, "Fresh Mart", c.Name)
}

func TestUpdateCustomerExecutiveChangeEnqueuesPropagation(t *testing.T) {
	repo := newFakeCustomerRepo()
	seedCustomer(repo)
	tasks := &fakePropagator{}
	svc := newCustomerService(repo, tasks)

	exec := "ravi"
	repo.customers[7].SalesExecutive = "old-exec"
	_, err := svc.Update(context.Background(), 7, UpdateCustomerRequest{SalesExecutive: &exec})
	require.NoError(t, err)
	require.Equal(t, 1, tasks.calls)
	require.Equal(t, int64(7), tasks.lastID)
	require.Nil(t, tasks.lastRoute)
	require.NotNil(t, tasks.lastExec)
	require.Equal(t, "ravi", *tasks.lastExec)
}

func TestUpdateCustomerPriceChangeSkipsPropagation(t *testing.T) {
	repo := newFakeCustomerRepo()
	seedCustomer(repo)
	tasks := &fakePropagator{}
	svc := newCustomerService(repo, tasks)

	price := 42.5
	_, err := svc.Update(context.Background(), 7, UpdateCustomerRequest{StandardPrice: &price})
	require.NoError(t, err)
	require.Zero(t, tasks.calls)
}

func TestUpdateCustomerEnqueueFailureDoesNotFailUpdate(t *testing.T) {
	repo := newFakeCustomerRepo()
	seedCustomer(repo)
	repo.customers[7].SalesExecutive = "old-exec"
	tasks := &fakePropagator{err: errors.New("redis down")}
	svc := newCustomerService(repo, tasks)

	exec := "ravi"
	_, err := svc.Update(context.Background(), 7, UpdateCustomerRequest{SalesExecutive: &exec})
	require.NoError(t, err)
	require.Equal(t, 1, tasks.calls)
}

func TestUpdateCustomerDuplicateNameExcludesSelf(t *testing.T) {
	repo := newFakeCustomerRepo()
	seedCustomer(repo)
	svc := newCustomerService(repo, &fakePropagator{})

	same := "acme TRADERS"
	_, err := svc.Update(context.Background(), 7, UpdateCustomerRequest{Name: &same})
	require.NoError(t, err)

	repo.customers[8] = &Customer{ID: 8, Name: "Fresh Mart", RouteID: 3, SalesExecutive: "ravi"}
	taken := "fresh mart"
	_, err = svc.Update(context.Background(), 7, UpdateCustomerRequest{Name: &taken})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestDeleteCustomerWithOrdersRefused(t *testing.T) {
	repo := newFakeCustomerRepo()
	seedCustomer(repo)
	repo.orderCount = 12
	svc := newCustomerService(repo, &fakePropagator{})

	err := svc.Delete(context.Background(), 7)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "12")
}

func TestDeleteCustomerWithoutOrders(t *testing.T) {
	repo := newFakeCustomerRepo()
	seedCustomer(repo)
	svc := newCustomerService(repo, &fakePropagator{})

	require.NoError(t, svc.Delete(context.Background(), 7))
	require.NotContains(t, repo.customers, int64(7))
}

func TestListScopesNonAdmin(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newCustomerService(repo, &fakePropagator{})

	other := "someone-else"
	identity := auth.Identity{UserID: 2, Username: "ravi", Role: auth.RoleUser}
	_, err := svc.List(context.Background(), identity, ListCustomersRequest{SalesExecutive: &other})
	require.NoError(t, err)
	require.NotNil(t, repo.listReq.SalesExecutive)
	require.Equal(t, "ravi", *repo.listReq.SalesExecutive)
}
