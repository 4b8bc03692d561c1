package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskPushDeliver sends one device push stored in the notification outbox.
const TaskPushDeliver = "push.deliver"

type PushDeliverPayload struct {
	OutboxID string `json:"outboxId"`
}

func NewPushDeliverTask(payload PushDeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPushDeliver, data), nil
}

func ParsePushDeliverPayload(task *asynq.Task) (PushDeliverPayload, error) {
	var payload PushDeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PushDeliverPayload{}, err
	}
	return payload, nil
}
