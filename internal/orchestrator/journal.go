package orchestrator

import (
	"sync"
	"time"

	"github.com/abadojack/whatlanggo"

	"github.com/ynt-app/youtube-no-translation/internal/resolver"
)

// journalCapacity bounds the in-memory ring. Diagnostics only; nothing
// here is ever persisted.
const journalCapacity = 200

// Correction is one applied restoration, kept for the diagnostics stream.
type Correction struct {
	Feature   resolver.Feature `json:"feature"`
	SubjectID string           `json:"subjectId"`
	ElementID string           `json:"elementId,omitempty"`
	Value     string           `json:"value"`
	Language  string           `json:"language,omitempty"`
	AppliedAt time.Time        `json:"appliedAt"`
}

// Journal is a bounded ring of recent corrections with change
// notification for the control surface's event stream.
type Journal struct {
	mu      sync.Mutex
	entries []Correction
	subs    map[int]chan Correction
	nextSub int
}

func NewJournal() *Journal {
	return &Journal{subs: make(map[int]chan Correction)}
}

// Record appends a correction, tagging it with the detected language of
// the applied value.
func (j *Journal) Record(req resolver.Request, value string) {
	entry := Correction{
		Feature:   req.Feature,
		SubjectID: req.SubjectID,
		ElementID: req.Scope.ElementID,
		Value:     value,
		AppliedAt: time.Now(),
	}
	if value != "" {
		entry.Language = whatlanggo.DetectLang(value).Iso6391()
	}

	j.mu.Lock()
	j.entries = append(j.entries, entry)
	if len(j.entries) > journalCapacity {
		j.entries = j.entries[len(j.entries)-journalCapacity:]
	}
	subs := make([]chan Correction, 0, len(j.subs))
	for _, ch := range j.subs {
		subs = append(subs, ch)
	}
	j.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- entry:
		default:
			// Slow consumers miss entries rather than stall corrections.
		}
	}
}

// Snapshot returns the current entries, newest last.
func (j *Journal) Snapshot() []Correction {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Correction(nil), j.entries...)
}

// Subscribe returns a channel of future corrections plus a cancel func.
func (j *Journal) Subscribe() (<-chan Correction, func()) {
	ch := make(chan Correction, 16)

	j.mu.Lock()
	j.nextSub++
	id := j.nextSub
	j.subs[id] = ch
	j.mu.Unlock()

	return ch, func() {
		j.mu.Lock()
		delete(j.subs, id)
		j.mu.Unlock()
	}
}
