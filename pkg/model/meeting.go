package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidMeeting = goerr.New("invalid meeting")
	ErrNotFound       = goerr.New("meeting not found")
)

type MeetingID string

// NewMeetingID generates a new unique MeetingID
func NewMeetingID() MeetingID {
	return MeetingID(uuid.New().String())
}

type AgendaItemID string

// NewAgendaItemID generates a new unique AgendaItemID
func NewAgendaItemID() AgendaItemID {
	return AgendaItemID(uuid.New().String())
}

// Meeting is a named meeting with an optional scheduled date and an
// ordered list of agenda items. A nil Date means the meeting is not
// scheduled yet.
type Meeting struct {
	ID          MeetingID     `json:"id"`
	Name        string        `json:"name"`
	Date        *time.Time    `json:"date,omitempty"`
	AgendaItems []*AgendaItem `json:"agendaItems"`
}

type AgendaItem struct {
	ID      AgendaItemID `json:"id"`
	Text    string       `json:"text"`
	Checked bool         `json:"checked"`
}

// Validate checks if the agenda item is valid
func (a *AgendaItem) Validate() error {
	if a.Text == "" {
		return goerr.Wrap(ErrInvalidMeeting, "agenda item text is empty")
	}
	return nil
}

// Validate checks if the meeting is valid. A meeting needs a name and at
// least one agenda item.
func (m *Meeting) Validate() error {
	if m.Name == "" {
		return goerr.Wrap(ErrInvalidMeeting, "meeting name is empty")
	}
	if len(m.AgendaItems) == 0 {
		return goerr.Wrap(ErrInvalidMeeting, "meeting has no agenda items", goerr.V("name", m.Name))
	}
	for _, item := range m.AgendaItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Passed reports whether the meeting's date lies before now. An
// unscheduled meeting never counts as passed.
func (m *Meeting) Passed(now time.Time) bool {
	if m.Date == nil {
		return false
	}
	return m.Date.Before(now)
}

// Item returns the agenda item with the given ID, or nil.
func (m *Meeting) Item(id AgendaItemID) *AgendaItem {
	for _, item := range m.AgendaItems {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Clone returns a deep copy of the meeting. The sync engine hands clones
// to callers so the in-memory collection stays exclusively owned.
func (m *Meeting) Clone() *Meeting {
	c := &Meeting{
		ID:   m.ID,
		Name: m.Name,
	}
	if m.Date != nil {
		d := *m.Date
		c.Date = &d
	}
	if m.AgendaItems != nil {
		c.AgendaItems = make([]*AgendaItem, len(m.AgendaItems))
		for i, item := range m.AgendaItems {
			v := *item
			c.AgendaItems[i] = &v
		}
	}
	return c
}

// Patch is a partial update of a meeting. Set fields replace the
// corresponding meeting field wholesale; nil fields are left untouched.
// AgendaItems are never merged item by item.
type Patch struct {
	Name        *string
	Date        *time.Time
	ClearDate   bool
	AgendaItems []*AgendaItem
}

// Validate rejects patches that would make the meeting invalid.
func (p *Patch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return goerr.Wrap(ErrInvalidMeeting, "meeting name is empty")
	}
	if p.AgendaItems != nil {
		if len(p.AgendaItems) == 0 {
			return goerr.Wrap(ErrInvalidMeeting, "meeting has no agenda items")
		}
		for _, item := range p.AgendaItems {
			if err := item.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply merges the patch into the meeting by field replacement.
func (p *Patch) Apply(m *Meeting) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.ClearDate {
		m.Date = nil
	} else if p.Date != nil {
		d := *p.Date
		m.Date = &d
	}
	if p.AgendaItems != nil {
		m.AgendaItems = p.AgendaItems
	}
}
