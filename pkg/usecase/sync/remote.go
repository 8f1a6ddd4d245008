package sync

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/overleg-dev/overleg/pkg/model"
	"github.com/overleg-dev/overleg/pkg/repository"
	"github.com/overleg-dev/overleg/pkg/utils/logging"
)

// Pull looks up the remote document and replaces the in-memory
// collection with its content. A missing document is a first run: the
// collection becomes empty and that counts as success. On any transport
// or decode failure the caller must fall back to LoadLocal.
func (e *Engine) Pull(ctx context.Context) error {
	if e.remote == nil {
		return goerr.Wrap(ErrSyncFailed, "no remote store configured")
	}

	e.emit(model.StatusSyncing)

	fileID, err := e.remote.Find(ctx, e.docName)
	if err != nil {
		e.emit(model.StatusError)
		return goerr.Wrap(ErrSyncFailed, "failed to find remote document", goerr.V("cause", err))
	}

	if fileID == "" {
		e.mu.Lock()
		e.meetings = []*model.Meeting{}
		e.mu.Unlock()
		e.emit(model.StatusSuccess)
		logging.From(ctx).Info("no remote document yet, starting fresh", "name", e.docName)
		return nil
	}

	data, err := e.remote.Read(ctx, fileID)
	if err != nil {
		e.emit(model.StatusError)
		return goerr.Wrap(ErrSyncFailed, "failed to read remote document", goerr.V("cause", err))
	}

	doc, err := model.DecodeDocument(data)
	if err != nil {
		e.emit(model.StatusError)
		return goerr.Wrap(ErrSyncFailed, "failed to decode remote document", goerr.V("cause", err))
	}

	e.mu.Lock()
	e.meetings = doc.Meetings
	e.fileID = fileID
	e.mu.Unlock()

	e.emit(model.StatusSuccess)
	logging.From(ctx).Info("pulled remote document", "meetings", len(doc.Meetings), "last_modified", doc.LastModified)
	return nil
}

// Push overwrites the remote document with the current in-memory
// snapshot. At most one push runs at a time: a push started while
// another is in flight is dropped silently, the remote catches up on the
// next successful push. Failures downgrade to a status event and a local
// fallback write, so no mutation is ever lost to a transient error.
func (e *Engine) Push(ctx context.Context) error {
	if e.remote == nil {
		e.SaveLocal(ctx)
		return nil
	}

	e.mu.Lock()
	if e.pushing {
		e.mu.Unlock()
		return nil
	}
	e.pushing = true
	snapshot := e.snapshotLocked()
	fileID := e.fileID
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.pushing = false
		e.mu.Unlock()
	}()

	e.emit(model.StatusSyncing)

	data, err := model.EncodeDocument(snapshot, e.now())
	if err != nil {
		e.SaveLocal(ctx)
		e.emit(model.StatusError)
		return goerr.Wrap(ErrSyncFailed, "failed to encode document", goerr.V("cause", err))
	}

	if fileID == "" {
		id, err := e.remote.Create(ctx, e.docName, data)
		if err != nil {
			e.SaveLocal(ctx)
			e.emit(model.StatusError)
			return goerr.Wrap(ErrSyncFailed, "failed to create remote document", goerr.V("cause", err))
		}
		e.mu.Lock()
		e.fileID = id
		e.mu.Unlock()
	} else {
		if err := e.remote.Update(ctx, fileID, data); err != nil {
			e.SaveLocal(ctx)
			e.emit(model.StatusError)
			return goerr.Wrap(ErrSyncFailed, "failed to overwrite remote document", goerr.V("cause", err))
		}
	}

	// Local snapshot doubles as an offline backup of what was pushed.
	e.SaveLocal(ctx)
	e.emit(model.StatusSuccess)
	return nil
}

// LoadLocal replaces the in-memory collection from the local store. A
// broken or absent snapshot yields an empty collection; local store
// trouble is a defect to log, never a user-facing error.
func (e *Engine) LoadLocal(ctx context.Context) {
	raw, ok := e.store.Get(repository.KeyMeetings)
	if !ok {
		e.mu.Lock()
		e.meetings = []*model.Meeting{}
		e.mu.Unlock()
		return
	}

	doc, err := model.DecodeDocument([]byte(raw))
	if err != nil {
		logging.From(ctx).Error("local snapshot is corrupt, starting empty", "error", err)
		e.mu.Lock()
		e.meetings = []*model.Meeting{}
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	e.meetings = doc.Meetings
	e.mu.Unlock()
}

// SaveLocal writes the current collection to the local store.
func (e *Engine) SaveLocal(ctx context.Context) {
	e.mu.Lock()
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	data, err := model.EncodeDocument(snapshot, e.now())
	if err != nil {
		logging.From(ctx).Error("failed to encode local snapshot", "error", err)
		return
	}
	if err := e.store.Set(repository.KeyMeetings, string(data)); err != nil {
		logging.From(ctx).Error("failed to write local snapshot", "error", err)
	}
}

// persistAsync runs the post-mutation persistence without blocking the
// caller: the in-memory mutation already succeeded, persistence is best
// effort.
func (e *Engine) persistAsync(ctx context.Context) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.Push(ctx); err != nil {
			logging.From(ctx).Warn("persist failed, local snapshot kept", "error", err)
		}
	}()
}
