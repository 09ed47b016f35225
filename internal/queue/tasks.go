package queue

import (
	"encoding/json"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPayoutAccessLog records a read of financially sensitive data.
	TaskPayoutAccessLog = constants.TaskPayoutAccessLog
)

// AccessLogPayload is the audit access log task payload.
type AccessLogPayload struct {
	ActorUserID  uint                   `json:"actor_user_id"`
	ActorEmail   string                 `json:"actor_email"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	RequestID    string                 `json:"request_id"`
	Detail       map[string]interface{} `json:"detail,omitempty"`
}

// NewAccessLogTask builds the audit access log task.
func NewAccessLogTask(payload AccessLogPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayoutAccessLog, body), nil
}
