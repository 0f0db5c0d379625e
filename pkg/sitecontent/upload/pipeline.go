package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
)

// State is the lifecycle state of an upload task. Exactly one terminal
// state (succeeded, failed, canceled) is reached from uploading.
type State string

const (
	StatePending   State = "pending"
	StateUploading State = "uploading"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCanceled  State = "canceled"
)

// ProgressFunc receives transfer progress. Successive calls always carry
// non-decreasing transferred values; total is 0 when the size is unknown.
type ProgressFunc func(transferred, total int64)

// Request describes one binary transfer.
type Request struct {
	Folder      string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader

	// UploaderID attributes the stored object to the authenticated user.
	UploaderID string

	// OnProgress, if set, is invoked during transfer. Observing progress
	// has no effect on the outcome.
	OnProgress ProgressFunc
}

// Result is the outcome of a succeeded transfer.
type Result struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Task represents one in-flight or completed transfer.
type Task struct {
	key  string
	size int64

	transferred atomic.Int64

	mu     sync.Mutex
	state  State
	result *Result
	err    error

	cancel context.CancelFunc
	done   chan struct{}
}

// Key returns the storage key minted for this transfer.
func (t *Task) Key() string {
	return t.key
}

// State returns the task's current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// TransferredBytes reports how many bytes have been read from the source
// so far. The value never decreases.
func (t *Task) TransferredBytes() int64 {
	return t.transferred.Load()
}

// Cancel requests cooperative cancellation. Bytes already transferred are
// not rolled back server-side; orphan cleanup is the Sweeper's job.
func (t *Task) Cancel() {
	t.cancel()
}

// Wait blocks until the task reaches a terminal state or ctx is done.
// A ctx expiry only stops the caller waiting; the transfer itself keeps
// running unless Cancel is called.
func (t *Task) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateSucceeded {
		return t.result, nil
	}
	return nil, t.err
}

func (t *Task) finish(state State, result *Result, err error) {
	t.mu.Lock()
	t.state = state
	t.result = result
	t.err = err
	t.mu.Unlock()
	close(t.done)
}

// Pipeline uploads binaries to a blob store, minting collision-resistant
// keys and reporting progress. It never retries: a failed task carries a
// Retriable classification and the caller decides.
type Pipeline struct {
	store   sitecontent.BlobStore
	logger  *slog.Logger
	sweeper *Sweeper
	now     func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSweeper registers an orphan sweeper that will clean up keys of
// failed or canceled transfers.
func WithSweeper(sweeper *Sweeper) PipelineOption {
	return func(p *Pipeline) {
		p.sweeper = sweeper
	}
}

// WithClock overrides the timestamp source for key generation. Used by
// tests.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPipeline creates an upload pipeline over a blob store.
func NewPipeline(store sitecontent.BlobStore, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit starts an asynchronous transfer and returns its task. The
// returned task moves from pending through uploading to exactly one
// terminal state.
func (p *Pipeline) Submit(ctx context.Context, req Request) *Task {
	ctx, cancel := context.WithCancel(ctx)
	task := &Task{
		key:    ObjectKey(req.Folder, req.FileName, p.now()),
		size:   req.Size,
		state:  StatePending,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if p.sweeper != nil {
		p.sweeper.track(task.key)
	}

	go p.run(ctx, req, task)
	return task
}

// Upload is the synchronous form of Submit.
func (p *Pipeline) Upload(ctx context.Context, req Request) (*Result, error) {
	return p.Submit(ctx, req).Wait(context.Background())
}

func (p *Pipeline) run(ctx context.Context, req Request, task *Task) {
	task.mu.Lock()
	task.state = StateUploading
	task.mu.Unlock()

	reader := &progressReader{
		r:          req.Body,
		task:       task,
		total:      req.Size,
		onProgress: req.OnProgress,
	}

	metadata := map[string]string{}
	if req.UploaderID != "" {
		metadata["uploaded_by"] = req.UploaderID
	}
	if req.FileName != "" {
		metadata["original_name"] = req.FileName
	}

	err := p.store.Upload(ctx, reader, sitecontent.UploadParams{
		ObjectKey:   task.key,
		ContentType: req.ContentType,
		Metadata:    metadata,
	})
	if err == nil {
		var url string
		url, err = p.store.GetURL(ctx, task.key)
		if err == nil {
			if p.sweeper != nil {
				p.sweeper.settle(task.key, false)
			}
			task.finish(StateSucceeded, &Result{
				URL:         url,
				Key:         task.key,
				Size:        task.TransferredBytes(),
				ContentType: req.ContentType,
			}, nil)
			return
		}
	}

	if p.sweeper != nil {
		p.sweeper.settle(task.key, true)
	}

	if errors.Is(err, context.Canceled) {
		p.logger.Info("upload canceled", "key", task.key, "transferred", task.TransferredBytes())
		task.finish(StateCanceled, nil, context.Canceled)
		return
	}

	uerr := &UploadError{Key: task.key, Retriable: classify(err), Err: err}
	p.logger.Error("upload failed", "key", task.key, "retriable", uerr.Retriable, "error", err)
	task.finish(StateFailed, nil, uerr)
}

// progressReader counts bytes as the backend consumes them and reports
// non-decreasing progress. Reported values never exceed the declared
// total, so a source that yields more bytes than the request announced
// caps out at total instead of overshooting it.
type progressReader struct {
	r          io.Reader
	task       *Task
	total      int64
	onProgress ProgressFunc
	reported   int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		transferred := pr.task.transferred.Add(int64(n))
		if pr.total > 0 && transferred > pr.total {
			transferred = pr.total
		}
		if pr.onProgress != nil && transferred > pr.reported {
			pr.reported = transferred
			pr.onProgress(transferred, pr.total)
		}
	}
	return n, err
}
