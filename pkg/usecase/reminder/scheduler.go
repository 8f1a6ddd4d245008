package reminder

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/overleg-dev/overleg/pkg/adapter"
	"github.com/overleg-dev/overleg/pkg/model"
	"github.com/overleg-dev/overleg/pkg/repository"
	"github.com/overleg-dev/overleg/pkg/utils/logging"
)

// Scheduler arms one-shot reminders that fire the day before a meeting at
// 09:00 local time. At most one timer is armed per meeting at any moment.
type Scheduler struct {
	notifier adapter.Notifier
	store    repository.Store
	loc      *time.Location
	now      func() time.Time

	mu     sync.Mutex
	timers map[model.MeetingID]*time.Timer
	fireAt map[model.MeetingID]time.Time
}

// Option is a functional option for Scheduler
type Option func(*Scheduler)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithLocation sets the timezone the 09:00 fire time is computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		s.loc = loc
	}
}

// WithStore enables best-effort bookkeeping of armed timers in the local
// store. The bookkeeping is session-local: it is never read back at
// startup, RearmAll rebuilds everything from the collection instead.
func WithStore(store repository.Store) Option {
	return func(s *Scheduler) {
		s.store = store
	}
}

// New creates a Scheduler emitting through the given notifier.
func New(notifier adapter.Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		notifier: notifier,
		loc:      time.Local,
		now:      time.Now,
		timers:   map[model.MeetingID]*time.Timer{},
		fireAt:   map[model.MeetingID]time.Time{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FireTime computes the reminder instant for a meeting date: the day
// before, at 09:00 in the given location.
func FireTime(date time.Time, loc *time.Location) time.Time {
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, loc).AddDate(0, 0, -1)
}

// Schedule arms a reminder for the meeting. It is a no-op for meetings
// without a date and when notification permission is missing. Any timer
// already armed for this meeting is cancelled first, so calling twice
// leaves exactly one armed timer. Reminder instants that already passed
// never arm a timer.
func (s *Scheduler) Schedule(m *model.Meeting) {
	if m.Date == nil || !s.notifier.HasPermission() {
		return
	}

	s.Cancel(m.ID)

	fireAt := FireTime(*m.Date, s.loc)
	now := s.now()
	if !fireAt.After(now) {
		return
	}

	snapshot := m.Clone()

	s.mu.Lock()
	s.timers[m.ID] = time.AfterFunc(fireAt.Sub(now), func() {
		s.fire(snapshot)
	})
	s.fireAt[m.ID] = fireAt
	s.persistLocked()
	s.mu.Unlock()

	logging.Default().Debug("reminder armed", "meeting", m.Name, "fire_at", fireAt)
}

// Cancel disarms the reminder for the meeting if one is armed. Safe to
// call for meetings without one.
func (s *Scheduler) Cancel(id model.MeetingID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
		delete(s.fireAt, id)
		s.persistLocked()
	}
}

// RearmAll schedules reminders for every meeting whose date has not
// passed. Called once after the initial load; this is the sole recovery
// path after a restart, in-process timers do not survive one.
func (s *Scheduler) RearmAll(meetings []*model.Meeting) {
	now := s.now()
	for _, m := range meetings {
		if m.Date != nil && !m.Passed(now) {
			s.Schedule(m)
		}
	}
}

// Stop disarms every reminder. Used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
		delete(s.fireAt, id)
	}
	s.persistLocked()
}

// Armed reports the fire instant of the armed reminder for a meeting.
func (s *Scheduler) Armed(id model.MeetingID) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.fireAt[id]
	return at, ok
}

// ArmedCount returns the number of currently armed reminders.
func (s *Scheduler) ArmedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) fire(m *model.Meeting) {
	s.mu.Lock()
	delete(s.timers, m.ID)
	delete(s.fireAt, m.ID)
	s.persistLocked()
	s.mu.Unlock()

	var lines []string
	for _, item := range m.AgendaItems {
		lines = append(lines, fmt.Sprintf("• %s", item.Text))
	}
	title := fmt.Sprintf("Meeting tomorrow: %s", m.Name)
	body := fmt.Sprintf("Agenda:\n%s", strings.Join(lines, "\n"))

	if err := s.notifier.Emit(title, body, string(m.ID)); err != nil {
		logging.Default().Warn("failed to emit reminder", "meeting", m.Name, "error", err)
	}
}

// persistLocked writes the armed map to the local store. Failures are
// logged only; the bookkeeping has no recovery value across restarts.
func (s *Scheduler) persistLocked() {
	if s.store == nil {
		return
	}
	raw, err := json.Marshal(s.fireAt)
	if err != nil {
		logging.Default().Warn("failed to marshal reminder state", "error", err)
		return
	}
	if err := s.store.Set(repository.KeyReminderState, string(raw)); err != nil {
		logging.Default().Warn("failed to save reminder state", "error", err)
	}
}
