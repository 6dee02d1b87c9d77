// Package task runs compute and verify calls in the background.
//
// A Task owns its progress counter and channel, so any number of tasks can
// run side by side without observing each other's progress.
package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spacemeshos/sloth/config"
	"github.com/spacemeshos/sloth/proving"
	"github.com/spacemeshos/sloth/shared"
	"github.com/spacemeshos/sloth/verifying"
)

type Kind string

const (
	KindCompute Kind = "compute"
	KindVerify  Kind = "verify"
)

type option struct {
	logger *zap.Logger
}

type OptionFunc func(*option)

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) {
		o.logger = logger
	}
}

func applyOpts(opts ...OptionFunc) *option {
	o := &option{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

type Task struct {
	kind  Kind
	total uint64

	completed    atomic.Uint64
	progressChan chan uint64

	mtx   sync.RWMutex
	proof *shared.Proof
	meta  *shared.ProofMetadata
	err   error

	doneChan chan struct{}
	logger   *zap.Logger
}

// newTask prepares a task; a nil meta yields a zero total and is rejected by the engine.
func newTask(kind Kind, meta *shared.ProofMetadata, logger *zap.Logger) *Task {
	var total uint64
	if meta != nil {
		total = meta.Iterations
	}
	return &Task{
		kind:         kind,
		total:        total,
		meta:         meta,
		progressChan: make(chan uint64),
		doneChan:     make(chan struct{}),
		logger:       logger.With(zap.String("task", string(kind))),
	}
}

// Compute starts generating a proof for input and returns immediately.
func Compute(input []byte, cfg config.Config, opts ...OptionFunc) *Task {
	options := applyOpts(opts...)
	meta := &shared.ProofMetadata{
		Input:      append([]byte(nil), input...),
		Bits:       cfg.Bits,
		Iterations: cfg.Iterations,
		Scheme:     cfg.Scheme,
	}
	t := newTask(KindCompute, meta, options.logger)

	go t.run(func() (*shared.Proof, error) {
		proof, _, err := proving.Generate(meta.Input, cfg,
			proving.WithLogger(t.logger),
			proving.WithProgress(t.update),
		)
		return proof, err
	})
	return t
}

// Verify starts verifying proof against meta and returns immediately.
func Verify(proof *shared.Proof, meta *shared.ProofMetadata, opts ...OptionFunc) *Task {
	options := applyOpts(opts...)
	t := newTask(KindVerify, meta, options.logger)

	go t.run(func() (*shared.Proof, error) {
		err := verifying.Verify(proof, meta,
			verifying.WithLogger(t.logger),
			verifying.WithProgress(t.update),
		)
		return proof, err
	})
	return t
}

func (t *Task) run(f func() (*shared.Proof, error)) {
	defer func() {
		close(t.doneChan)
		close(t.progressChan)
	}()

	t.logger.Debug("task: started", zap.Uint64("total", t.total))
	proof, err := f()

	t.mtx.Lock()
	t.proof = proof
	t.err = err
	t.mtx.Unlock()

	if err != nil {
		t.logger.Info("task: finished with error", zap.Error(err))
		return
	}
	t.logger.Debug("task: finished")
}

func (t *Task) update(delta uint64) {
	completed := t.completed.Add(delta)

	select {
	case t.progressChan <- completed:
	default:
		// nobody is listening; the counter still holds the value
	}
}

func (t *Task) Kind() Kind {
	return t.kind
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.doneChan
}

// Wait blocks until the task finishes or ctx is done, and returns the task's
// error or ctx.Err(). The task keeps running after ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.doneChan:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Progress returns the number of rounds completed so far.
func (t *Task) Progress() uint64 {
	return t.completed.Load()
}

// ProgressChan delivers the running count of completed rounds. Updates are
// dropped while nobody receives. The channel is closed when the task is done.
func (t *Task) ProgressChan() <-chan uint64 {
	return t.progressChan
}

// Total returns the number of rounds the task will run.
func (t *Task) Total() uint64 {
	return t.total
}

func (t *Task) finished() bool {
	select {
	case <-t.doneChan:
		return true
	default:
		return false
	}
}

// Err returns the task's error, or shared.ErrNotCompleted while it is running.
func (t *Task) Err() error {
	if !t.finished() {
		return shared.ErrNotCompleted
	}
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.err
}

// Proof returns the computed proof, or the proof under verification.
func (t *Task) Proof() (*shared.Proof, error) {
	if err := t.Err(); err != nil {
		return nil, err
	}
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.proof, nil
}

// Metadata returns the parameters the task runs with.
func (t *Task) Metadata() *shared.ProofMetadata {
	return t.meta
}

// Valid reports the outcome of a verify task. Rejected proofs are reported as
// false with a nil error; invalid parameters are returned as errors.
func (t *Task) Valid() (bool, error) {
	if !t.finished() {
		return false, shared.ErrNotCompleted
	}

	err := t.Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, shared.ErrInvalidParameter):
		return false, err
	default:
		return false, nil
	}
}
