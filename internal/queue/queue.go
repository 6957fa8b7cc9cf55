// Package queue dispatches deferred work to a pool of worker processes
// over a redis list. Dispatch is fire and forget: the only feedback a
// task gives is the notifications it chooses to write.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the redis list jobs are pushed onto.
const DefaultKey = "microblog:queue"

// A Job is one unit of deferred work: a task name and its serialised
// arguments. Jobs have no persisted terminal state; they are consumed
// exactly once by a worker.
type Job struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Args       json.RawMessage `json:"args"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// A DispatchError means the queue transport would not accept the job.
// The enqueue was not silently dropped; the caller must decide whether
// to retry, degrade, or surface the failure.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch: %s", e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Open connects to the redis instance at the given URL and verifies it
// is reachable.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

type Queue struct {
	rdb *redis.Client
	key string
}

func New(rdb *redis.Client, key string) *Queue {
	if key == "" {
		key = DefaultKey
	}
	return &Queue{rdb: rdb, key: key}
}

// Enqueue submits a named task with the given arguments and returns
// the assigned job id. It never blocks on task execution. A
// DispatchError is returned if the transport is unreachable.
func (q *Queue) Enqueue(ctx context.Context, name string, args any) (string, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	job := Job{
		ID:         uuid.NewString(),
		Name:       name,
		Args:       raw,
		EnqueuedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return "", &DispatchError{Err: err}
	}
	return job.ID, nil
}

// Dequeue blocks for up to a few seconds waiting for a job. It returns
// (nil, nil) when the wait times out so callers can re-check their
// context and loop.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	res, err := q.rdb.BRPop(ctx, 5*time.Second, q.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// BRPOP returns [key, value]
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}
