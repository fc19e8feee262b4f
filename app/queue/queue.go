// Package queue hands generation job ids from the API process to worker processes
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by Dequeue once the queue has been closed
var ErrQueueClosed = errors.New("queue closed")

// Message is the only thing a worker receives: the id of a job that exists in
// the job store. Everything else is read from the job row.
type Message struct {
	MessageID  string    `json:"message_id"`
	JobID      uuid.UUID `json:"job_id"`
	JobType    string    `json:"job_type"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	// Redelivery is set when the reconciler re-enqueues a stale pending job
	Redelivery bool `json:"redelivery,omitempty"`
}

// NewMessage creates a message for a job
func NewMessage(jobID uuid.UUID, jobType string) Message {
	return Message{
		MessageID:  uuid.NewString(),
		JobID:      jobID,
		JobType:    jobType,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Encode serializes the message for the wire
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage parses a wire message
func DecodeMessage(raw []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("decode queue message: %w", err)
	}
	if m.JobID == uuid.Nil {
		return Message{}, errors.New("decode queue message: missing job_id")
	}
	return m, nil
}

// Dispatcher enqueues work and returns without waiting for it
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// Consumer blocks for up to timeout waiting for the next message. It returns
// (nil, nil) when the timeout passes with nothing to do.
type Consumer interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Message, error)
}

// Queue is both ends of a job queue
type Queue interface {
	Dispatcher
	Consumer
	Len(ctx context.Context) (int64, error)
	Close() error
}
