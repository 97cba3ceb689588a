// Package jobs schedules and processes background tasks over asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// TaskTypeDigestBroadcast fans the daily digest out to every subscriber.
	TaskTypeDigestBroadcast = "digest:broadcast"
	// TaskTypeDigestDeliver builds and sends the digest for one subscriber.
	TaskTypeDigestDeliver = "digest:deliver"
	// TaskTypeSessionsCleanup evicts abandoned conversation sessions.
	TaskTypeSessionsCleanup = "sessions:cleanup"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// DigestBroadcastPayload triggers the daily fan-out.
type DigestBroadcastPayload struct {
	Trigger string `json:"trigger"`
}

// DigestDeliverPayload identifies the subscriber to deliver to.
type DigestDeliverPayload struct {
	SubscriberID int64 `json:"subscriber_id"`
}

// NewDigestBroadcastTask creates the fan-out task enqueued by the scheduler.
func NewDigestBroadcastTask(trigger string) (*asynq.Task, error) {
	payload, err := json.Marshal(DigestBroadcastPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeDigestBroadcast, payload, asynq.Queue(QueueDefault)), nil
}

// NewDigestDeliverTask creates a per-subscriber delivery task.
func NewDigestDeliverTask(subscriberID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(DigestDeliverPayload{SubscriberID: subscriberID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeDigestDeliver, payload, asynq.Queue(QueueDefault)), nil
}

// NewSessionsCleanupTask creates the periodic session eviction task.
func NewSessionsCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionsCleanup, nil, asynq.Queue(QueueLow))
}
