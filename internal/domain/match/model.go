package match

const (
	StatusPlayed   = "PLAYED"
	StatusCanceled = "CANCELED"
	StatusPending  = "PENDING"

	CompetitionCompetitive = "COMPETITIVE"
	CompetitionFriendly    = "FRIENDLY"

	GenderUnknown = "UNKNOWN"
)

// Outcome is a team-level result. The zero value means the result is not
// usable for win/loss purposes.
type Outcome string

const (
	OutcomeUnusable Outcome = ""
	OutcomeWon      Outcome = "WON"
	OutcomeLost     Outcome = "LOST"
)

// Match is the normalized, read-only form of a provider match.
type Match struct {
	ID                  string     `json:"match_id"`
	StartDate           string     `json:"start_date"`
	Status              string     `json:"status"`
	ResultsStatus       string     `json:"results_status,omitempty"`
	Competitive         bool       `json:"competitive"`
	Venue               string     `json:"venue"`
	TenantID            string     `json:"tenant_id,omitempty"`
	Teams               [2]Team    `json:"teams"`
	Sets                []SetScore `json:"sets,omitempty"`
	RejectedSets        int        `json:"rejected_sets,omitempty"`
	SkippedParticipants int        `json:"skipped_participants,omitempty"`
}

type Team struct {
	ID      string        `json:"team_id,omitempty"`
	Result  Outcome       `json:"result,omitempty"`
	Players []Participant `json:"players"`
}

// Participant is one identified player sighting inside a match.
type Participant struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	LevelValue      *float64 `json:"level_value,omitempty"`
	LevelConfidence *float64 `json:"level_confidence,omitempty"`
	Position        string   `json:"position,omitempty"`
	Premium         bool     `json:"is_premium"`
	Photo           string   `json:"photo,omitempty"`
	Gender          string   `json:"gender"`
}

// SetScore holds one fully scored set, games per team in roster order.
type SetScore struct {
	Name  string `json:"name,omitempty"`
	Team0 int    `json:"team0"`
	Team1 int    `json:"team1"`
}

// Seat is a participant together with the roster index it played for.
type Seat struct {
	Team        int
	Participant Participant
}

// Perspective is the per-match result seen from one team.
type Perspective struct {
	Outcome   Outcome
	SetsWon   int
	SetsLost  int
	GamesWon  int
	GamesLost int
}
