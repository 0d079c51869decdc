// Package grading runs the asynchronous AI grading pipeline: an unbounded FIFO queue fed by request
// handlers and drained by a single rate-limited worker.
package grading

import (
	"context"
	"sync"

	"github.com/noah-isme/codelab-grader/internal/catalog"
)

// Job is an in-memory unit of grading work. Jobs are lost if the process restarts.
type Job struct {
	SubmissionID uint
	Problem      catalog.Problem
	Code         string
}

// Queue is an unbounded FIFO safe for many producers and a single consumer.
type Queue struct {
	mu     sync.Mutex
	items  []Job
	notify chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Enqueue appends a job. It never blocks on the consumer.
func (q *Queue) Enqueue(job Job) {
	q.mu.Lock()
	q.items = append(q.items, job)
	depth := len(q.items)
	q.mu.Unlock()

	queueDepth.Set(float64(depth))

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue removes the oldest job, waiting until one is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (Job, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			job := q.items[0]
			q.items[0] = Job{}
			q.items = q.items[1:]
			depth := len(q.items)
			q.mu.Unlock()

			queueDepth.Set(float64(depth))
			return job, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Job{}, ctx.Err()
		case <-q.notify:
		}
	}
}

// Len reports the number of queued jobs, excluding the one being processed.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
