package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeOrderStore struct {
	syncedCustomer int64
	syncedRoute    *int64
	syncedExec     *string
	syncErr        error

	purgedDays int
	purgeErr   error
}

func (f *fakeOrderStore) SyncCustomerFields(_ context.Context, customerID int64, routeID *int64, salesExecutive *string) (int64, error) {
	f.syncedCustomer = customerID
	f.syncedRoute = routeID
	f.syncedExec = salesExecutive
	return 3, f.syncErr
}

func (f *fakeOrderStore) DeleteOlderThan(_ context.Context, days int) (int64, error) {
	f.purgedDays = days
	return 12, f.purgeErr
}

func TestCustomerFieldSyncHandler(t *testing.T) {
	store := &fakeOrderStore{}
	handler := NewCustomerFieldSyncHandler(store, slog.Default())

	exec := "ravi"
	task, err := NewCustomerFieldSyncTask(CustomerFieldSyncPayload{CustomerID: 7, SalesExecutive: &exec})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, int64(7), store.syncedCustomer)
	require.Nil(t, store.syncedRoute)
	require.Equal(t, "ravi", *store.syncedExec)
}

func TestCustomerFieldSyncHandlerNeverRetries(t *testing.T) {
	store := &fakeOrderStore{syncErr: errors.New("db down")}
	handler := NewCustomerFieldSyncHandler(store, slog.Default())

	task, err := NewCustomerFieldSyncTask(CustomerFieldSyncPayload{CustomerID: 7})
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCustomerFieldSyncHandlerBadPayload(t *testing.T) {
	handler := NewCustomerFieldSyncHandler(&fakeOrderStore{}, slog.Default())
	err := handler(context.Background(), asynq.NewTask(TaskTypeCustomerFieldSync, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestOrderPurgeHandler(t *testing.T) {
	store := &fakeOrderStore{}
	handler := NewOrderPurgeHandler(store, slog.Default())

	task, err := NewOrderPurgeTask(OrderPurgePayload{OlderThanDays: 90})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, 90, store.purgedDays)
}

func TestOrderPurgeHandlerRejectsNonPositiveWindow(t *testing.T) {
	store := &fakeOrderStore{}
	handler := NewOrderPurgeHandler(store, slog.Default())

	task, err := NewOrderPurgeTask(OrderPurgePayload{})
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, store.purgedDays)
}
