package query

import (
	"runtime"
	"sync"
)

// Task is a query submitted to the worker pool
type Task struct {
	Query  Query
	TaskID int // For deterministic ordering
}

// WorkerPool evaluates queries in parallel
type WorkerPool struct {
	taskQueue   chan Task
	resultQueue chan Result
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker evaluates individual query tasks
type Worker struct {
	ID          int
	taskQueue   chan Task
	resultQueue chan Result
}

// NewWorkerPool creates a worker pool sized for capacity queued tasks
func NewWorkerPool(numWorkers, capacity int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if capacity < 1 {
		capacity = 1
	}

	wp := &WorkerPool{
		taskQueue:   make(chan Task, capacity),
		resultQueue: make(chan Result, capacity),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop waits for queued tasks to finish and closes the result queue
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a query task to the worker pool
func (wp *WorkerPool) SubmitTask(task Task) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed result; false once the pool is stopped and drained
func (wp *WorkerPool) GetResult() (Result, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		result := task.Query.Evaluate()
		result.Index = task.TaskID
		w.resultQueue <- result
	}
}
