package player

import "github.com/mkm418/padel-intelligence/internal/domain/match"

// Table accumulates players for one reconciliation run. It is owned by a
// single goroutine and is not safe for concurrent use.
type Table struct {
	byID  map[string]*Player
	order []string
}

func NewTable() *Table {
	return &Table{byID: make(map[string]*Player)}
}

// Fold applies one participant sighting. Participants without an id are
// ignored.
func (t *Table) Fold(p match.Participant, mc MatchContext) {
	if p.ID == "" {
		return
	}
	existing, ok := t.byID[p.ID]
	if !ok {
		t.order = append(t.order, p.ID)
	}
	folded := Fold(existing, p, mc)
	t.byID[p.ID] = &folded
}

// FoldMatch folds every distinct participant of an eligible match.
func (t *Table) FoldMatch(m match.Match) {
	if !m.IsEligible() {
		return
	}
	for _, seat := range m.Seats() {
		t.Fold(seat.Participant, ContextFor(m, seat.Team))
	}
}

func (t *Table) Get(id string) (Player, bool) {
	p, ok := t.byID[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

func (t *Table) Len() int {
	return len(t.order)
}

// IDs returns player ids in first-sighting order.
func (t *Table) IDs() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Players returns a copy of every player in first-sighting order.
func (t *Table) Players() []Player {
	out := make([]Player, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.byID[id])
	}
	return out
}
