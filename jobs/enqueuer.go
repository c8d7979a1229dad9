package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// Enqueuer submits fire-and-forget tasks. Propagation tasks are enqueued with
// MaxRetry(0): a failed attempt is logged by the worker, never retried.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer constructs an Enqueuer.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueCustomerFieldSync submits a field propagation task.
func (e *Enqueuer) EnqueueCustomerFieldSync(ctx context.Context, customerID int64, routeID *int64, salesExecutive *string) error {
	task, err := NewCustomerFieldSyncTask(CustomerFieldSyncPayload{
		CustomerID:     customerID,
		RouteID:        routeID,
		SalesExecutive: salesExecutive,
	})
	if err != nil {
		return fmt.Errorf("build task: %w", err)
	}
	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskTypeCustomerFieldSync, err)
	}
	return nil
}

// Close releases the underlying client.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
