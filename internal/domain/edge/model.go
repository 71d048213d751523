package edge

import (
	"fmt"
	"strings"
)

// PairKey identifies an unordered pair of player ids. A is always the
// smaller id, so (x, y) and (y, x) build the same comparable value.
type PairKey struct {
	A string
	B string
}

func NewPairKey(x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

func (k PairKey) Valid() bool {
	return k.A != "" && k.B != "" && k.A != k.B
}

func (k PairKey) Has(id string) bool {
	return k.A == id || k.B == id
}

func (k PairKey) String() string {
	return fmt.Sprintf("(%s, %s)", k.A, k.B)
}

type Relation string

const (
	RelationTeammate Relation = "teammate"
	RelationOpponent Relation = "opponent"
	RelationMixed    Relation = "mixed"
)

// Merge applies one incoming observation to the current classification.
// Observing the other relation promotes to mixed, and mixed never reverts.
func (r Relation) Merge(incoming Relation) Relation {
	switch {
	case r == "":
		return incoming
	case r == RelationMixed || incoming == RelationMixed:
		return RelationMixed
	case r == incoming:
		return r
	default:
		return RelationMixed
	}
}

func ParseRelation(raw string) (Relation, error) {
	switch Relation(strings.ToLower(strings.TrimSpace(raw))) {
	case RelationTeammate:
		return RelationTeammate, nil
	case RelationOpponent:
		return RelationOpponent, nil
	case RelationMixed:
		return RelationMixed, nil
	default:
		return "", fmt.Errorf("invalid relationship %q", raw)
	}
}

// PairEvent is one teammate or opponent observation from a single match.
type PairEvent struct {
	Key      PairKey
	Relation Relation
	Venue    string
	Date     string
}

// Edge is the aggregate of every pair event between two players.
type Edge struct {
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Weight       int      `json:"weight"`
	Clubs        []string `json:"clubs"`
	LastPlayed   string   `json:"last_played"`
	Relationship Relation `json:"relationship"`
}

func (e Edge) Key() PairKey {
	return PairKey{A: e.Source, B: e.Target}
}
