package sync

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/overleg-dev/overleg/pkg/model"
)

// CreateInput describes a new meeting. Item texts become agenda items
// with freshly generated IDs.
type CreateInput struct {
	Name  string
	Date  *time.Time
	Items []string
}

// Create validates the input, appends a new meeting to the collection,
// kicks off persistence and arms its reminder. The mutation is applied
// optimistically; persistence never blocks the caller.
func (e *Engine) Create(ctx context.Context, input CreateInput) (*model.Meeting, error) {
	m := &model.Meeting{
		ID:   model.NewMeetingID(),
		Name: input.Name,
	}
	if input.Date != nil {
		d := *input.Date
		m.Date = &d
	}
	for _, text := range input.Items {
		m.AgendaItems = append(m.AgendaItems, &model.AgendaItem{
			ID:   model.NewAgendaItemID(),
			Text: text,
		})
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.meetings = append(e.meetings, m)
	snapshot := m.Clone()
	e.mu.Unlock()

	e.persistAsync(ctx)
	if e.scheduler != nil {
		e.scheduler.Schedule(snapshot)
	}
	return snapshot, nil
}

// Update applies a partial update by field replacement. AgendaItems, if
// present in the patch, replace the existing list wholesale; items are
// never merged by ID.
func (e *Engine) Update(ctx context.Context, id model.MeetingID, patch *model.Patch) (*model.Meeting, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	var target *model.Meeting
	for _, m := range e.meetings {
		if m.ID == id {
			target = m
			break
		}
	}
	if target == nil {
		e.mu.Unlock()
		return nil, goerr.Wrap(model.ErrNotFound, "no such meeting", goerr.V("id", id))
	}
	patch.Apply(target)
	snapshot := target.Clone()
	e.mu.Unlock()

	e.persistAsync(ctx)
	if e.scheduler != nil {
		e.scheduler.Schedule(snapshot)
	}
	return snapshot, nil
}

// Delete removes exactly one meeting and cancels its reminder. Deletion
// is immediate and unrecoverable.
func (e *Engine) Delete(ctx context.Context, id model.MeetingID) error {
	e.mu.Lock()
	idx := -1
	for i, m := range e.meetings {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return goerr.Wrap(model.ErrNotFound, "no such meeting", goerr.V("id", id))
	}
	e.meetings = append(e.meetings[:idx], e.meetings[idx+1:]...)
	e.mu.Unlock()

	e.persistAsync(ctx)
	if e.scheduler != nil {
		e.scheduler.Cancel(id)
	}
	return nil
}

// SetChecked flips an agenda item's checked flag. It routes through
// Update so the item list is replaced wholesale, same as any edit.
func (e *Engine) SetChecked(ctx context.Context, id model.MeetingID, itemID model.AgendaItemID, checked bool) (*model.Meeting, error) {
	current, err := e.Get(id)
	if err != nil {
		return nil, err
	}

	item := current.Item(itemID)
	if item == nil {
		return nil, goerr.Wrap(model.ErrNotFound, "no such agenda item", goerr.V("id", id), goerr.V("item_id", itemID))
	}
	item.Checked = checked

	return e.Update(ctx, id, &model.Patch{AgendaItems: current.AgendaItems})
}
