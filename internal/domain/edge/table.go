package edge

import "github.com/mkm418/padel-intelligence/internal/domain/match"

// Table accumulates edges for one reconciliation run, keyed by PairKey.
// Not safe for concurrent use.
type Table struct {
	byKey map[PairKey]*Edge
	order []PairKey
}

func NewTable() *Table {
	return &Table{byKey: make(map[PairKey]*Edge)}
}

func (t *Table) Fold(ev PairEvent) {
	if !ev.Key.Valid() {
		return
	}
	existing, ok := t.byKey[ev.Key]
	if !ok {
		t.order = append(t.order, ev.Key)
	}
	folded := Fold(existing, ev)
	t.byKey[ev.Key] = &folded
}

// FoldMatch extracts and folds every pair event of m, one event at a time.
func (t *Table) FoldMatch(m match.Match) int {
	events := ExtractPairEvents(m)
	for _, ev := range events {
		t.Fold(ev)
	}
	return len(events)
}

func (t *Table) Get(key PairKey) (Edge, bool) {
	e, ok := t.byKey[key]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

func (t *Table) Len() int {
	return len(t.order)
}

// Edges returns a copy of every edge in creation order.
func (t *Table) Edges() []Edge {
	out := make([]Edge, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, *t.byKey[key])
	}
	return out
}

// Counts returns the relationship breakdown of the table.
func (t *Table) Counts() map[Relation]int {
	out := map[Relation]int{
		RelationTeammate: 0,
		RelationOpponent: 0,
		RelationMixed:    0,
	}
	for _, e := range t.byKey {
		out[e.Relationship]++
	}
	return out
}

// Neighbors holds the distinct teammates and opponents of one player.
type Neighbors struct {
	Teammates map[string]struct{}
	Opponents map[string]struct{}
}

// Neighbors scans the table once. Mixed edges count on both sides.
func (t *Table) Neighbors() map[string]Neighbors {
	out := make(map[string]Neighbors)
	add := func(id, other string, rel Relation) {
		n, ok := out[id]
		if !ok {
			n = Neighbors{Teammates: make(map[string]struct{}), Opponents: make(map[string]struct{})}
			out[id] = n
		}
		if rel == RelationTeammate || rel == RelationMixed {
			n.Teammates[other] = struct{}{}
		}
		if rel == RelationOpponent || rel == RelationMixed {
			n.Opponents[other] = struct{}{}
		}
	}

	for _, key := range t.order {
		e := t.byKey[key]
		add(e.Source, e.Target, e.Relationship)
		add(e.Target, e.Source, e.Relationship)
	}
	return out
}
