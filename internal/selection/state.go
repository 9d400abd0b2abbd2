// Package selection maintains the "selected Event, selected Edition,
// visible Articles" view of the catalog.
//
// State is a value: every transition returns a new State together with the
// Load it requires. Each list carries a generation counter that is bumped
// whenever a newer load supersedes older ones, and a load result is applied
// only if its generation is still current.
package selection

import (
	"errors"
	"slices"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

// Scope is the depth of the current selection.
type Scope int

const (
	NoEventSelected Scope = iota
	EventSelected
	EditionSelected
)

func (s Scope) String() string {
	switch s {
	case EventSelected:
		return "event-selected"
	case EditionSelected:
		return "edition-selected"
	default:
		return "no-event-selected"
	}
}

// ErrEditionNotInEvent is returned when selecting an Edition that is not
// owned by the selected Event.
var ErrEditionNotInEvent = errors.New("edition does not belong to the selected event")

// LoadKind names the list a Load fetches.
type LoadKind int

const (
	LoadNone LoadKind = iota
	LoadEvents
	LoadEditions
	LoadArticles
)

func (k LoadKind) String() string {
	switch k {
	case LoadEvents:
		return "events"
	case LoadEditions:
		return "editions"
	case LoadArticles:
		return "articles"
	default:
		return "none"
	}
}

// Load is a request to fetch one list. ID is the owning Event for
// LoadEditions and the owning Edition for LoadArticles. Cached loads read
// the local store instead of the remote service.
type Load struct {
	Kind   LoadKind
	ID     string
	Gen    uint64
	Cached bool
}

// State is the selection and the lists currently shown.
type State struct {
	Scope     Scope
	EventID   string
	EditionID string
	Events    []catalog.Event
	Editions  []catalog.Edition
	Articles  []catalog.Article

	eventsGen   uint64
	editionsGen uint64
	articlesGen uint64
}

// Clone returns a deep copy of the lists held by s.
func (s State) Clone() State {
	s.Events = slices.Clone(s.Events)
	s.Editions = slices.Clone(s.Editions)
	s.Articles = slices.Clone(s.Articles)
	return s
}

// Current reports whether l is the latest load issued for its list.
func (s State) Current(l Load) bool {
	switch l.Kind {
	case LoadEvents:
		return l.Gen == s.eventsGen
	case LoadEditions:
		return l.Gen == s.editionsGen && l.ID == s.EventID
	case LoadArticles:
		return l.Gen == s.articlesGen && l.ID == s.EditionID
	default:
		return false
	}
}

// =============================================================================
// Transitions
// =============================================================================

// ReloadEvents requests a fresh Event list.
func (s State) ReloadEvents() (State, Load) {
	s.eventsGen++
	return s, Load{Kind: LoadEvents, Gen: s.eventsGen}
}

// SelectEvent selects an Event, clearing the Edition selection and the
// Article list, and requests the Event's Editions. An empty id clears the
// whole selection.
func (s State) SelectEvent(id string) (State, Load) {
	s.editionsGen++
	s.articlesGen++
	s.EditionID = ""
	s.Editions = nil
	s.Articles = nil
	if id == "" {
		s.Scope = NoEventSelected
		s.EventID = ""
		return s, Load{}
	}
	s.Scope = EventSelected
	s.EventID = id
	return s, Load{Kind: LoadEditions, ID: id, Gen: s.editionsGen}
}

// SelectEdition selects one of the selected Event's Editions and requests
// its Articles.
func (s State) SelectEdition(id string) (State, Load, error) {
	if s.EventID == "" || !slices.ContainsFunc(s.Editions, func(ed catalog.Edition) bool { return ed.ID == id }) {
		return s, Load{}, ErrEditionNotInEvent
	}
	s.articlesGen++
	s.Scope = EditionSelected
	s.EditionID = id
	s.Articles = nil
	return s, Load{Kind: LoadArticles, ID: id, Gen: s.articlesGen}, nil
}

// ReloadEditions requests the selected Event's Editions again, keeping the
// Edition selection if it survives the reload.
func (s State) ReloadEditions() (State, Load) {
	if s.EventID == "" {
		return s, Load{}
	}
	s.editionsGen++
	return s, Load{Kind: LoadEditions, ID: s.EventID, Gen: s.editionsGen}
}

// ReloadArticles requests the selected Edition's Articles again.
func (s State) ReloadArticles() (State, Load) {
	if s.EditionID == "" {
		return s, Load{}
	}
	s.articlesGen++
	return s, Load{Kind: LoadArticles, ID: s.EditionID, Gen: s.articlesGen}
}

// =============================================================================
// Load results
// =============================================================================

// ApplyEvents installs a loaded Event list. If the selected Event is gone,
// the selection is cleared. Stale results return ok == false.
func (s State) ApplyEvents(l Load, events []catalog.Event) (next State, ok bool) {
	if l.Kind != LoadEvents || !s.Current(l) {
		return s, false
	}
	s.Events = slices.Clone(events)
	if s.EventID != "" && !slices.ContainsFunc(events, func(ev catalog.Event) bool { return ev.ID == s.EventID }) {
		s, _ = s.SelectEvent("")
	}
	return s, true
}

// ApplyEditions installs a loaded Edition list, keeping only Editions
// owned by the selected Event. The current Edition stays selected if it is
// still listed; otherwise the first Edition is selected, and with no
// Editions the Article list becomes empty. The returned Load fetches the
// Articles when the Edition selection changed. Stale results return
// ok == false.
func (s State) ApplyEditions(l Load, editions []catalog.Edition) (next State, follow Load, ok bool) {
	if l.Kind != LoadEditions || !s.Current(l) {
		return s, Load{}, false
	}
	owned := make([]catalog.Edition, 0, len(editions))
	for _, ed := range editions {
		if ed.EventID == s.EventID {
			owned = append(owned, ed)
		}
	}
	s.Editions = owned

	if s.EditionID != "" && slices.ContainsFunc(owned, func(ed catalog.Edition) bool { return ed.ID == s.EditionID }) {
		return s, Load{}, true
	}
	if len(owned) == 0 {
		s.articlesGen++
		s.Scope = EventSelected
		s.EditionID = ""
		s.Articles = []catalog.Article{}
		return s, Load{}, true
	}
	s, follow, _ = s.SelectEdition(owned[0].ID)
	return s, follow, true
}

// ApplyArticles replaces the Article list. Stale results return ok == false.
func (s State) ApplyArticles(l Load, articles []catalog.Article) (next State, ok bool) {
	if l.Kind != LoadArticles || !s.Current(l) {
		return s, false
	}
	s.Articles = slices.Clone(articles)
	if s.Articles == nil {
		s.Articles = []catalog.Article{}
	}
	return s, true
}
