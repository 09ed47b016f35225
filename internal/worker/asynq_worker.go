package worker

import (
	"context"
	"encoding/json"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/logger"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/provider"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer handles queued background tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer builds a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register binds task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPayoutAccessLog, c.handleAccessLog)
}

func (c *Consumer) handleAccessLog(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_access_log_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.AccessLogPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_access_log_unmarshal_failed", "error", err)
		return err
	}
	if payload.Action == "" {
		logger.Debugw("worker_access_log_skip_invalid_payload")
		return nil
	}
	record := &models.AccessAuditLog{
		ActorUserID:  payload.ActorUserID,
		ActorEmail:   payload.ActorEmail,
		Action:       payload.Action,
		ResourceType: payload.ResourceType,
		ResourceID:   payload.ResourceID,
		RequestID:    payload.RequestID,
	}
	if len(payload.Detail) > 0 {
		record.DetailJSON = models.JSON(payload.Detail)
	}
	if err := c.AuditLogRepo.Create(record); err != nil {
		logger.Warnw("worker_access_log_persist_failed", "action", payload.Action, "error", err)
		return err
	}
	return nil
}
