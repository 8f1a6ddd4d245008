package sync_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/overleg-dev/overleg/pkg/model"
	"github.com/overleg-dev/overleg/pkg/repository"
	syncengine "github.com/overleg-dev/overleg/pkg/usecase/sync"
)

// Mock DocumentStore
type mockRemote struct {
	mu      sync.Mutex
	files   map[string][]byte
	names   map[string]string // name -> fileID
	nextID  int
	findErr error
	readErr error
	pushErr error
	creates int
	updates int
	block   chan struct{} // when set, Create/Update wait on it
	started chan struct{} // when set, Create/Update signal before waiting
}

func newMockRemote() *mockRemote {
	return &mockRemote{
		files: map[string][]byte{},
		names: map[string]string{},
	}
}

func (r *mockRemote) Find(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return "", r.findErr
	}
	return r.names[name], nil
}

func (r *mockRemote) Create(ctx context.Context, name string, data []byte) (string, error) {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.pushErr != nil {
		return "", r.pushErr
	}
	r.nextID++
	id := string(rune('a' + r.nextID))
	r.names[name] = id
	r.files[id] = data
	return id, nil
}

func (r *mockRemote) Update(ctx context.Context, fileID string, data []byte) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.pushErr != nil {
		return r.pushErr
	}
	r.files[fileID] = data
	return nil
}

func (r *mockRemote) Read(ctx context.Context, fileID string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	return r.files[fileID], nil
}

// Mock Scheduler
type mockScheduler struct {
	mu        sync.Mutex
	scheduled []model.MeetingID
	cancelled []model.MeetingID
	rearmed   int
}

func (s *mockScheduler) Schedule(m *model.Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, m.ID)
}

func (s *mockScheduler) Cancel(id model.MeetingID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, id)
}

func (s *mockScheduler) RearmAll(meetings []*model.Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rearmed = len(meetings)
}

// Status recorder
type statusRecorder struct {
	mu       sync.Mutex
	observed []model.Status
}

func (r *statusRecorder) record(st model.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed = append(r.observed, st)
}

func (r *statusRecorder) has(st model.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.observed {
		if v == st {
			return true
		}
	}
	return false
}

func TestMutationSequence(t *testing.T) {
	ctx := context.Background()
	engine := syncengine.New(repository.NewMemory())

	standup, err := engine.Create(ctx, syncengine.CreateInput{
		Name:  "Standup",
		Items: []string{"Discuss roadmap"},
	})
	gt.NoError(t, err)

	retro, err := engine.Create(ctx, syncengine.CreateInput{
		Name:  "Retro",
		Items: []string{"What went well", "What to improve"},
	})
	gt.NoError(t, err)
	gt.True(t, standup.ID != retro.ID)

	// Update only changes specified fields.
	name := "Daily standup"
	updated, err := engine.Update(ctx, standup.ID, &model.Patch{Name: &name})
	gt.NoError(t, err)
	gt.Equal(t, updated.Name, "Daily standup")
	gt.A(t, updated.AgendaItems).Length(1)
	gt.Equal(t, updated.AgendaItems[0].Text, "Discuss roadmap")

	// Delete removes exactly one.
	gt.NoError(t, engine.Delete(ctx, retro.ID))
	gt.A(t, engine.List()).Length(1)
	gt.Equal(t, engine.List()[0].ID, standup.ID)

	_, err = engine.Get(retro.ID)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrNotFound))

	engine.Wait()
}

func TestValidationRejectedBeforeMutation(t *testing.T) {
	ctx := context.Background()
	engine := syncengine.New(repository.NewMemory())

	_, err := engine.Create(ctx, syncengine.CreateInput{Name: "No items"})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidMeeting))

	_, err = engine.Create(ctx, syncengine.CreateInput{Items: []string{"x"}})
	gt.Error(t, err)

	gt.A(t, engine.List()).Length(0)

	// Invalid patch leaves the record untouched.
	m, err := engine.Create(ctx, syncengine.CreateInput{Name: "Standup", Items: []string{"a"}})
	gt.NoError(t, err)

	empty := ""
	_, err = engine.Update(ctx, m.ID, &model.Patch{Name: &empty})
	gt.Error(t, err)

	current, err := engine.Get(m.ID)
	gt.NoError(t, err)
	gt.Equal(t, current.Name, "Standup")

	engine.Wait()
}

func TestCreateScheduledMeeting(t *testing.T) {
	ctx := context.Background()
	remote := newMockRemote()
	scheduler := &mockScheduler{}
	engine := syncengine.New(repository.NewMemory(),
		syncengine.WithRemote(remote),
		syncengine.WithScheduler(scheduler),
	)

	date := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	m, err := engine.Create(ctx, syncengine.CreateInput{
		Name:  "Standup",
		Date:  &date,
		Items: []string{"Discuss roadmap"},
	})
	gt.NoError(t, err)
	engine.Wait()

	g := engine.Grouped()
	gt.A(t, g.Scheduled).Length(1)
	gt.A(t, g.Unscheduled).Length(0)
	gt.Equal(t, g.Scheduled[0].ID, m.ID)

	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	gt.A(t, scheduler.scheduled).Length(1)
	gt.Equal(t, scheduler.scheduled[0], m.ID)
}

func TestUnscheduledOrdering(t *testing.T) {
	ctx := context.Background()
	engine := syncengine.New(repository.NewMemory())

	_, err := engine.Create(ctx, syncengine.CreateInput{Name: "B-meeting", Items: []string{"x"}})
	gt.NoError(t, err)
	_, err = engine.Create(ctx, syncengine.CreateInput{Name: "A-meeting", Items: []string{"y"}})
	gt.NoError(t, err)
	engine.Wait()

	g := engine.Grouped()
	gt.A(t, g.Unscheduled).Length(2)
	gt.Equal(t, g.Unscheduled[0].Name, "A-meeting")
	gt.Equal(t, g.Unscheduled[1].Name, "B-meeting")
}

func TestDeleteCancelsReminder(t *testing.T) {
	ctx := context.Background()
	scheduler := &mockScheduler{}
	engine := syncengine.New(repository.NewMemory(), syncengine.WithScheduler(scheduler))

	date := time.Now().Add(72 * time.Hour)
	m, err := engine.Create(ctx, syncengine.CreateInput{
		Name:  "Standup",
		Date:  &date,
		Items: []string{"Discuss roadmap"},
	})
	gt.NoError(t, err)

	gt.NoError(t, engine.Delete(ctx, m.ID))
	engine.Wait()

	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	gt.A(t, scheduler.cancelled).Length(1)
	gt.Equal(t, scheduler.cancelled[0], m.ID)
}

func TestPushCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	remote := newMockRemote()
	engine := syncengine.New(repository.NewMemory(), syncengine.WithRemote(remote))

	_, err := engine.Create(ctx, syncengine.CreateInput{Name: "Standup", Items: []string{"a"}})
	gt.NoError(t, err)
	engine.Wait()

	// First push created the document; later pushes overwrite in place.
	gt.NoError(t, engine.Push(ctx))

	remote.mu.Lock()
	defer remote.mu.Unlock()
	gt.Equal(t, remote.creates, 1)
	gt.Equal(t, remote.updates, 1)
}

func TestPushOverlapDropped(t *testing.T) {
	ctx := context.Background()
	remote := newMockRemote()
	remote.block = make(chan struct{})
	remote.started = make(chan struct{}, 1)
	engine := syncengine.New(repository.NewMemory(), syncengine.WithRemote(remote))

	_, err := engine.Create(ctx, syncengine.CreateInput{Name: "Standup", Items: []string{"a"}})
	gt.NoError(t, err)

	// Wait for the async push to reach the blocked remote call.
	select {
	case <-remote.started:
	case <-time.After(2 * time.Second):
		t.Fatal("push never reached the remote")
	}

	// Overlapping pushes are dropped silently, not queued.
	gt.NoError(t, engine.Push(ctx))
	gt.NoError(t, engine.Push(ctx))

	close(remote.block)
	engine.Wait()
	remote.block = nil

	remote.mu.Lock()
	creates := remote.creates
	remote.mu.Unlock()
	gt.Equal(t, creates, 1)

	// The in-flight flag reset exactly once: a new push goes through.
	gt.NoError(t, engine.Push(ctx))
	remote.mu.Lock()
	defer remote.mu.Unlock()
	gt.Equal(t, remote.updates, 1)
}

func TestPushFailureFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	remote := newMockRemote()
	remote.pushErr = errors.New("network down")
	status := &statusRecorder{}
	store := repository.NewMemory()
	engine := syncengine.New(store,
		syncengine.WithRemote(remote),
		syncengine.WithStatusFunc(status.record),
	)

	// The mutation succeeds immediately regardless of remote outcome.
	m, err := engine.Create(ctx, syncengine.CreateInput{Name: "Standup", Items: []string{"a"}})
	gt.NoError(t, err)
	engine.Wait()

	gt.True(t, status.has(model.StatusError))

	// The snapshot landed in the local store.
	raw, ok := store.Get(repository.KeyMeetings)
	gt.True(t, ok)
	doc, err := model.DecodeDocument([]byte(raw))
	gt.NoError(t, err)
	gt.A(t, doc.Meetings).Length(1)
	gt.Equal(t, doc.Meetings[0].ID, m.ID)
}

func TestPullFirstRun(t *testing.T) {
	ctx := context.Background()
	remote := newMockRemote()
	status := &statusRecorder{}
	engine := syncengine.New(repository.NewMemory(),
		syncengine.WithRemote(remote),
		syncengine.WithStatusFunc(status.record),
	)

	gt.NoError(t, engine.Pull(ctx))
	gt.A(t, engine.List()).Length(0)
	gt.True(t, status.has(model.StatusSuccess))
}

func TestPullReplacesCollection(t *testing.T) {
	ctx := context.Background()
	remote := newMockRemote()

	date := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	data, err := model.EncodeDocument([]*model.Meeting{
		{
			ID:   "m1",
			Name: "Standup",
			Date: &date,
			AgendaItems: []*model.AgendaItem{
				{ID: "i1", Text: "Discuss roadmap"},
			},
		},
	}, time.Now())
	gt.NoError(t, err)
	remote.names[syncengine.DefaultDocumentName] = "file-1"
	remote.files["file-1"] = data

	engine := syncengine.New(repository.NewMemory(), syncengine.WithRemote(remote))
	gt.NoError(t, engine.Pull(ctx))

	meetings := engine.List()
	gt.A(t, meetings).Length(1)
	gt.Equal(t, meetings[0].Name, "Standup")
	gt.True(t, meetings[0].Date.Equal(date))
}

func TestStartFallsBackToLocalStore(t *testing.T) {
	ctx := context.Background()

	// Seed the local store with a snapshot.
	store := repository.NewMemory()
	data, err := model.EncodeDocument([]*model.Meeting{
		{
			ID:   "m1",
			Name: "Offline meeting",
			AgendaItems: []*model.AgendaItem{
				{ID: "i1", Text: "agenda"},
			},
		},
	}, time.Now())
	gt.NoError(t, err)
	gt.NoError(t, store.Set(repository.KeyMeetings, string(data)))

	remote := newMockRemote()
	remote.findErr = errors.New("transport error")
	status := &statusRecorder{}
	scheduler := &mockScheduler{}

	engine := syncengine.New(store,
		syncengine.WithRemote(remote),
		syncengine.WithStatusFunc(status.record),
		syncengine.WithScheduler(scheduler),
	)

	gt.NoError(t, engine.Start(ctx))

	gt.True(t, status.has(model.StatusError))
	meetings := engine.List()
	gt.A(t, meetings).Length(1)
	gt.Equal(t, meetings[0].Name, "Offline meeting")

	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	gt.Equal(t, scheduler.rearmed, 1)
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	engine := syncengine.New(store)

	date := time.Date(2025, 6, 10, 9, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	_, err := engine.Create(ctx, syncengine.CreateInput{
		Name:  "Standup",
		Date:  &date,
		Items: []string{"Discuss roadmap"},
	})
	gt.NoError(t, err)
	engine.Wait()

	reloaded := syncengine.New(store)
	reloaded.LoadLocal(ctx)

	meetings := reloaded.List()
	gt.A(t, meetings).Length(1)
	gt.Equal(t, meetings[0].Name, "Standup")
	gt.True(t, meetings[0].Date.Equal(date))
	gt.A(t, meetings[0].AgendaItems).Length(1)
}

func TestSetChecked(t *testing.T) {
	ctx := context.Background()
	engine := syncengine.New(repository.NewMemory())

	m, err := engine.Create(ctx, syncengine.CreateInput{
		Name:  "Standup",
		Items: []string{"Discuss roadmap", "Review actions"},
	})
	gt.NoError(t, err)

	itemID := m.AgendaItems[1].ID
	updated, err := engine.SetChecked(ctx, m.ID, itemID, true)
	gt.NoError(t, err)
	gt.True(t, updated.AgendaItems[1].Checked)
	gt.False(t, updated.AgendaItems[0].Checked)

	_, err = engine.SetChecked(ctx, m.ID, "no-such-item", true)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrNotFound))

	engine.Wait()
}
