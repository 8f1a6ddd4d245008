package model

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Document is the remote blob schema: the whole meeting collection plus a
// last-modified stamp. Every push overwrites the document as a unit.
type Document struct {
	Meetings     []*Meeting `json:"meetings"`
	LastModified time.Time  `json:"lastModified"`
}

// EncodeDocument serializes the collection into the wire form.
func EncodeDocument(meetings []*Meeting, modified time.Time) ([]byte, error) {
	doc := Document{Meetings: meetings, LastModified: modified}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode document")
	}
	return data, nil
}

// DecodeDocument parses the wire form back into a collection. Dates come
// back as the same absolute instants they were written with.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document")
	}
	if doc.Meetings == nil {
		doc.Meetings = []*Meeting{}
	}
	return &doc, nil
}

// Grouped splits a collection into the two display groups: scheduled
// meetings sorted by date ascending, unscheduled ones sorted by name.
type Grouped struct {
	Scheduled   []*Meeting
	Unscheduled []*Meeting
}

func Group(meetings []*Meeting) Grouped {
	var g Grouped
	for _, m := range meetings {
		if m.Date != nil {
			g.Scheduled = append(g.Scheduled, m)
		} else {
			g.Unscheduled = append(g.Unscheduled, m)
		}
	}
	sort.SliceStable(g.Scheduled, func(i, j int) bool {
		return g.Scheduled[i].Date.Before(*g.Scheduled[j].Date)
	})
	sort.SliceStable(g.Unscheduled, func(i, j int) bool {
		return g.Unscheduled[i].Name < g.Unscheduled[j].Name
	})
	return g
}
