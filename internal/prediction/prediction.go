// Package prediction owns the single job slot of the worker: one prediction
// lifecycle at a time, raced against out-of-band cancellation and process
// shutdown, with the terminal response handed to every waiter.
package prediction

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"inferd/internal/runner"
	"inferd/internal/shutdown"
	"inferd/internal/types"
	"inferd/log"
	"inferd/pkg/errors"
)

// Prediction is the job slot state machine. A single instance is created at
// worker startup and reused for every prediction; all mutation goes through
// its lock. Concurrency comes from independent callers (submitter, poller,
// canceler, shutdown watcher) acting on the one live job, never from
// parallel jobs.
type Prediction struct {
	mu sync.RWMutex

	runner   *runner.Runner
	shutdown *shutdown.Shutdown

	status   types.Status
	id       string
	request  *types.Request
	response *types.Response

	// cancel carries at most one cancellation signal to the engine and is
	// recreated on reset so a stale cancel cannot leak into the next job.
	cancel chan struct{}

	// complete is the single-slot completion channel, created per run.
	complete chan types.Response

	// generation increments on every reset. A drive function that outlives a
	// reset (abandoned submit) must not write into the next job's slot.
	generation uint64
}

type runResult struct {
	output      any
	predictTime time.Duration
	err         error
}

// Setup binds the slot to an execution engine and the process shutdown
// signal. Called once at worker startup.
func Setup(predictor types.Predictor, sd *shutdown.Shutdown) *Prediction {
	return &Prediction{
		runner:   runner.New(predictor, sd),
		shutdown: sd,
		status:   types.StatusIdle,
		cancel:   make(chan struct{}, 1),
	}
}

// Init claims the slot for a new prediction. Only legal while the slot is
// idle; everything else answers ErrAlreadyRunning.
func (p *Prediction) Init(id string, req types.Request) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != types.StatusIdle {
		return errors.ErrAlreadyRunning
	}

	p.id = id
	p.request = &req
	p.status = types.StatusStarting

	return nil
}

// Run is the submitter's composition: start processing, drive it to
// completion, and consume the result. The caller both starts the job and is
// the first consumer of its outcome.
func (p *Prediction) Run(ctx context.Context) (types.Response, error) {
	drive, err := p.Process()
	if err != nil {
		return types.Response{}, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		drive()
	}()

	select {
	case <-ctx.Done():
		// Submit abandoned; the drive keeps running and the guard cleans up.
		return types.Response{}, fmt.Errorf("%w: %v", errors.ErrReceiver, ctx.Err())
	case <-done:
	}

	return p.Result()
}

// Process validates the stored request and starts the race between the
// engine and process shutdown. The returned drive function must be run to
// completion (or abandoned, in which case the guard resets the slot).
//
// A validation failure leaves the slot in Starting: the submit path always
// runs under a SyncGuard whose teardown resets abandoned slots, so recovery
// is the guard's job, not this method's.
func (p *Prediction) Process() (func(), error) {
	p.mu.Lock()

	if p.status != types.StatusStarting {
		p.mu.Unlock()
		return nil, errors.ErrAlreadyRunning
	}

	req := *p.request
	if vset := p.runner.Validate(req.Input); vset != nil {
		p.mu.Unlock()
		return nil, vset.FillLoc("body", "input")
	}

	p.status = types.StatusProcessing
	complete := make(chan types.Response, 1)
	p.complete = complete

	id := p.id
	cancel := p.cancel
	gen := p.generation

	p.mu.Unlock()

	drive := func() {
		done := make(chan runResult, 1)
		go func() {
			output, predictTime, err := p.runner.Run(req.Input, cancel)
			done <- runResult{output: output, predictTime: predictTime, err: err}
		}()

		select {
		case <-p.shutdown.Done():
			// The process is terminating: abandon the run without a terminal
			// transition, leaving the job dangling.
			return
		case res := <-done:
			p.publish(gen, id, req, complete, res)
		}
	}

	return drive, nil
}

// publish stores the terminal state and broadcasts the response exactly once
// on the run's own completion channel. The state write is skipped when the
// slot has been reset underneath an abandoned drive, so a late result can
// never land in a later job's slot, but waiters of that run still get their
// response.
func (p *Prediction) publish(gen uint64, id string, req types.Request, complete chan<- types.Response, res runResult) {
	var resp types.Response
	var status types.Status

	switch {
	case res.err == nil:
		status = types.StatusSucceeded
		resp = types.NewSuccessResponse(id, req, res.output, res.predictTime)
	case stderrors.Is(res.err, runner.ErrCanceled):
		status = types.StatusCanceled
		resp = types.NewCanceledResponse(id, req)
	default:
		status = types.StatusFailed
		resp = types.NewErrorResponse(id, req, res.err)
	}

	p.mu.Lock()
	if p.generation == gen {
		p.status = status
		stored := resp
		p.response = &stored
	}
	p.mu.Unlock()

	log.GetLogger().Info("prediction finished",
		zap.String("id", id),
		zap.String("status", status.String()))

	// Capacity one, single producer: never blocks, never skipped.
	complete <- resp
}

// WaitFor lets a caller that did not submit the job observe its outcome.
// A cached terminal response is returned immediately and never consumed;
// otherwise the call suspends on the completion channel.
func (p *Prediction) WaitFor(ctx context.Context, id string) (types.Response, error) {
	p.mu.RLock()

	if p.id != id {
		p.mu.RUnlock()
		return types.Response{}, errors.ErrUnknown
	}

	if p.response != nil {
		resp := *p.response
		p.mu.RUnlock()
		return resp, nil
	}

	if p.status != types.StatusProcessing {
		p.mu.RUnlock()
		return types.Response{}, errors.ErrAlreadyRunning
	}

	complete := p.complete
	p.mu.RUnlock()

	// No producer means the run vanished without a value.
	if complete == nil {
		return types.Response{}, errors.ErrUnknown
	}

	select {
	case <-ctx.Done():
		return types.Response{}, fmt.Errorf("%w: %v", errors.ErrReceiver, ctx.Err())
	case resp, ok := <-complete:
		if !ok {
			return types.Response{}, errors.ErrUnknown
		}
		// Hand the value on so every concurrent waiter wakes with the same
		// response.
		select {
		case complete <- resp:
		default:
		}
		return resp, nil
	}
}

// Result consumes the cached terminal response and resets the slot to idle,
// making it ready for the next submission.
func (p *Prediction) Result() (types.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.status.IsTerminal() {
		return types.Response{}, errors.ErrNotComplete
	}
	if p.response == nil {
		return types.Response{}, errors.ErrNotComplete
	}

	resp := *p.response
	p.resetLocked()

	return resp, nil
}

// Cancel requests that the running prediction stop. The status flips to
// canceled eagerly, ahead of the engine observing the signal; if the engine
// still completes, its terminal write wins under the same lock.
func (p *Prediction) Cancel(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.id != id {
		return errors.ErrUnknown
	}

	if p.status != types.StatusProcessing {
		return errors.ErrAlreadyRunning
	}

	select {
	case p.cancel <- struct{}{}:
	default:
	}
	p.status = types.StatusCanceled

	log.GetLogger().Info("prediction cancel requested", zap.String("id", id))

	return nil
}

// Status returns the slot's current lifecycle state.
func (p *Prediction) Status() types.Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// ID returns the id of the current or most recent prediction, or "".
func (p *Prediction) ID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.id
}

// abort force-cancels and resets the slot. Reserved for SyncGuard teardown:
// the only reset path outside Result.
func (p *Prediction) abort() {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case p.cancel <- struct{}{}:
	default:
	}
	p.resetLocked()
}

func (p *Prediction) resetLocked() {
	p.id = ""
	p.request = nil
	p.response = nil
	p.complete = nil
	p.status = types.StatusIdle
	p.cancel = make(chan struct{}, 1)
	p.generation++
}
