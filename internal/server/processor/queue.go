package processor

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"khalistra/internal/server/core"
)

const (
	defaultWorkers = 4
	laneDepth      = 64
	taskTimeout    = 5 * time.Second
)

// Task is one unit of work bound to a match
type Task struct {
	MatchID  string
	Run      func() ProcessorResponse
	Response chan ProcessorResponse
}

// MatchQueue runs tasks on a fixed pool of workers. Every match id hashes to
// one worker, so tasks of the same match run one at a time in submission
// order while different matches proceed in parallel.
type MatchQueue struct {
	lanes  []chan Task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewMatchQueue creates a queue with the given worker count
func NewMatchQueue(workerCount int) *MatchQueue {
	if workerCount < 1 {
		workerCount = defaultWorkers
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &MatchQueue{
		lanes:  make([]chan Task, workerCount),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := range q.lanes {
		q.lanes[i] = make(chan Task, laneDepth)
	}

	q.start()
	return q
}

func (q *MatchQueue) start() {
	for i, lane := range q.lanes {
		q.wg.Add(1)
		go q.worker(i, lane)
	}
}

func (q *MatchQueue) worker(id int, lane <-chan Task) {
	defer q.wg.Done()

	for {
		select {
		case task := <-lane:
			task.Response <- q.run(id, task)
		case <-q.ctx.Done():
			return
		}
	}
}

// run executes a task, turning a panic into an internal error response
func (q *MatchQueue) run(worker int, task Task) (resp ProcessorResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker %d recovered panic on match %s: %v", worker, task.MatchID, r)
			resp = ProcessorResponse{
				Error: &core.ErrorResponse{
					Error: "internal error",
					Code:  core.ErrInternalError,
				},
			}
		}
	}()
	return task.Run()
}

// lane picks the worker of a match
func (q *MatchQueue) lane(matchID string) chan Task {
	h := fnv.New32a()
	h.Write([]byte(matchID))
	return q.lanes[h.Sum32()%uint32(len(q.lanes))]
}

// Submit adds a task to its match's lane without blocking
func (q *MatchQueue) Submit(task Task) error {
	select {
	case <-q.ctx.Done():
		return fmt.Errorf("queue is shutting down")
	default:
	}

	select {
	case q.lane(task.MatchID) <- task:
		return nil
	default:
		return fmt.Errorf("queue is full")
	}
}

// Do runs fn on the worker of matchID and waits for its response
func (q *MatchQueue) Do(matchID string, fn func() ProcessorResponse) (ProcessorResponse, error) {
	respChan := make(chan ProcessorResponse, 1)
	task := Task{
		MatchID:  matchID,
		Run:      fn,
		Response: respChan,
	}

	if err := q.Submit(task); err != nil {
		return ProcessorResponse{}, err
	}

	select {
	case resp := <-respChan:
		return resp, nil
	case <-q.ctx.Done():
		return ProcessorResponse{}, fmt.Errorf("queue is shutting down")
	case <-time.After(taskTimeout):
		return ProcessorResponse{}, fmt.Errorf("task timeout")
	}
}

// Shutdown stops the workers
func (q *MatchQueue) Shutdown(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
