package sync

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/overleg-dev/overleg/pkg/adapter"
	"github.com/overleg-dev/overleg/pkg/model"
	"github.com/overleg-dev/overleg/pkg/repository"
	"github.com/overleg-dev/overleg/pkg/utils/logging"
)

var ErrSyncFailed = goerr.New("sync failed")

// DefaultDocumentName is the well-known name of the remote document.
const DefaultDocumentName = "overleg-data.json"

// Scheduler is the reminder collaborator the engine notifies after each
// mutation. It only ever receives snapshots, never the shared collection.
type Scheduler interface {
	Schedule(m *model.Meeting)
	Cancel(id model.MeetingID)
	RearmAll(meetings []*model.Meeting)
}

// StatusFunc receives sync status transitions. Presentation only; the
// engine never waits on it.
type StatusFunc func(model.Status)

// Engine owns the authoritative in-memory meeting collection and keeps
// the remote document eventually consistent with it, degrading to the
// local store when the remote is unreachable or unconfigured. The remote
// document and the local snapshot are projections of memory, never
// authoritative once memory has been mutated.
type Engine struct {
	store     repository.Store
	remote    adapter.DocumentStore
	scheduler Scheduler
	status    StatusFunc
	docName   string
	now       func() time.Time

	mu       sync.Mutex
	meetings []*model.Meeting
	fileID   string
	pushing  bool

	wg sync.WaitGroup
}

// Option is a functional option for Engine
type Option func(*Engine)

// WithRemote wires the remote document store. Without it every mutation
// persists to the local store only.
func WithRemote(remote adapter.DocumentStore) Option {
	return func(e *Engine) {
		e.remote = remote
	}
}

// WithScheduler wires the reminder scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithStatusFunc wires the status stream callback.
func WithStatusFunc(fn StatusFunc) Option {
	return func(e *Engine) {
		e.status = fn
	}
}

// WithDocumentName overrides the remote document name.
func WithDocumentName(name string) Option {
	return func(e *Engine) {
		e.docName = name
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine persisting through the given local store.
func New(store repository.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		docName: DefaultDocumentName,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start performs the initial pull-or-load and arms reminders for every
// future meeting. It must complete before any listing is rendered.
func (e *Engine) Start(ctx context.Context) error {
	if e.remote != nil {
		if err := e.Pull(ctx); err != nil {
			logging.From(ctx).Warn("initial pull failed, falling back to local store", "error", err)
			e.LoadLocal(ctx)
		}
	} else {
		e.LoadLocal(ctx)
	}

	if e.scheduler != nil {
		e.scheduler.RearmAll(e.List())
	}
	return nil
}

// Wait blocks until all in-flight asynchronous persists are done. Used
// by one-shot commands before exiting and by tests.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// List returns a snapshot of the collection in insertion order.
func (e *Engine) List() []*model.Meeting {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Get returns a snapshot of a single meeting.
func (e *Engine) Get(id model.MeetingID) (*model.Meeting, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, m := range e.meetings {
		if m.ID == id {
			return m.Clone(), nil
		}
	}
	return nil, goerr.Wrap(model.ErrNotFound, "no such meeting", goerr.V("id", id))
}

// Grouped returns the display grouping: scheduled meetings by date,
// unscheduled ones by name.
func (e *Engine) Grouped() model.Grouped {
	return model.Group(e.List())
}

func (e *Engine) snapshotLocked() []*model.Meeting {
	out := make([]*model.Meeting, len(e.meetings))
	for i, m := range e.meetings {
		out[i] = m.Clone()
	}
	return out
}

func (e *Engine) emit(st model.Status) {
	if e.status != nil {
		e.status(st)
	}
}
