package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeCustomerFieldSync propagates a customer's route or sales
	// executive change onto the customer's existing orders.
	TaskTypeCustomerFieldSync = "orders:sync_customer_fields"
	// TaskTypeOrderPurge deletes orders older than a retention window.
	TaskTypeOrderPurge = "orders:purge_stale"
)

// CustomerFieldSyncPayload carries the denormalized fields to push onto orders.
// Nil fields are left untouched.
type CustomerFieldSyncPayload struct {
	CustomerID     int64   `json:"customer_id"`
	RouteID        *int64  `json:"route_id,omitempty"`
	SalesExecutive *string `json:"sales_executive,omitempty"`
}

// OrderPurgePayload configures the retention purge.
type OrderPurgePayload struct {
	OlderThanDays int `json:"older_than_days"`
}

// OrderStore is the slice of order persistence the job handlers need.
type OrderStore interface {
	SyncCustomerFields(ctx context.Context, customerID int64, routeID *int64, salesExecutive *string) (int64, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// NewCustomerFieldSyncTask constructs the propagation task.
func NewCustomerFieldSyncTask(payload CustomerFieldSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCustomerFieldSync, data), nil
}

// NewOrderPurgeTask constructs the retention purge task.
func NewOrderPurgeTask(payload OrderPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeOrderPurge, data), nil
}

// NewCustomerFieldSyncHandler returns the asynq handler for field propagation.
// Failures are logged and the task is not retried: propagation is best-effort
// with an at-most-one-attempt contract.
func NewCustomerFieldSyncHandler(store OrderStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload CustomerFieldSyncPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		updated, err := store.SyncCustomerFields(ctx, payload.CustomerID, payload.RouteID, payload.SalesExecutive)
		if err != nil {
			logger.Error("customer field sync failed",
				"customer_id", payload.CustomerID, "error", err)
			return asynq.SkipRetry
		}
		logger.Info("customer field sync applied",
			"customer_id", payload.CustomerID, "orders_updated", updated)
		return nil
	}
}

// NewOrderPurgeHandler returns the asynq handler for the retention purge.
func NewOrderPurgeHandler(store OrderStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload OrderPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.OlderThanDays <= 0 {
			return asynq.SkipRetry
		}
		deleted, err := store.DeleteOlderThan(ctx, payload.OlderThanDays)
		if err != nil {
			logger.Error("order purge failed", "error", err)
			return err
		}
		logger.Info("order purge completed",
			"older_than_days", payload.OlderThanDays, "orders_deleted", deleted)
		return nil
	}
}
