package worker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const (
	QueueNotifications = "jobs:notifications"
	QueueEmail         = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// StatusChangedPayload is enqueued after a committed status transition. The
// notification worker turns it into durable notifications (and optional
// email fan-out) outside the write transaction.
type StatusChangedPayload struct {
	OrderID       string `json:"order_id"`
	OrderNo       string `json:"order_no"`
	CustomerName  string `json:"customer_name"`
	FromStatus    string `json:"from_status"`
	ToStatus      string `json:"to_status"`
	TotalPlanned  int    `json:"total_planned"`
	TotalProduced int    `json:"total_produced"`
	TotalShipped  int    `json:"total_shipped"`
}

// EmailPayload is the job envelope sent to QueueEmail.
type EmailPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueStatusChanged pushes a status-transition notification job.
func (d *Dispatcher) EnqueueStatusChanged(ctx context.Context, payload StatusChangedPayload) error {
	return d.enqueue(ctx, QueueNotifications, "status_changed", payload)
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}
