package worker

import (
	"context"
	"testing"

	"github.com/tokogaya/backend/internal/queue"

	"github.com/hibiken/asynq"
)

func TestHandleOrderTimeoutCancelMalformedPayload(t *testing.T) {
	c := NewConsumer(nil)
	task := asynq.NewTask(queue.TaskOrderTimeoutCancel, []byte("not-json"))
	if err := c.handleOrderTimeoutCancel(context.Background(), task); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestHandleOrderTimeoutCancelZeroOrderID(t *testing.T) {
	c := NewConsumer(nil)
	task := asynq.NewTask(queue.TaskOrderTimeoutCancel, []byte(`{"order_id":0}`))
	if err := c.handleOrderTimeoutCancel(context.Background(), task); err != nil {
		t.Fatalf("expected zero order id to be skipped, got %v", err)
	}
}

func TestHandleOrderStatusEmailMalformedPayload(t *testing.T) {
	c := NewConsumer(nil)
	task := asynq.NewTask(queue.TaskOrderStatusEmail, []byte("{"))
	if err := c.handleOrderStatusEmail(context.Background(), task); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestHandleOrderStatusEmailZeroOrderID(t *testing.T) {
	c := NewConsumer(nil)
	task := asynq.NewTask(queue.TaskOrderStatusEmail, []byte(`{"order_id":0,"status":"pending"}`))
	if err := c.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("expected zero order id to be skipped, got %v", err)
	}
}
