package match

// RawMatch mirrors one match document as returned by the upstream provider
// or stored in a venue checkpoint. Optional values are pointers; nothing in
// here is trusted until it goes through Normalize.
type RawMatch struct {
	MatchID         string         `json:"match_id" validate:"required"`
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date,omitempty"`
	Status          string         `json:"status"`
	ResultsStatus   *string        `json:"results_status,omitempty"`
	CompetitionMode string         `json:"competition_mode,omitempty"`
	Tenant          *RawTenant     `json:"tenant,omitempty"`
	Teams           []RawTeam      `json:"teams" validate:"len=2"`
	Results         []RawSetResult `json:"results,omitempty"`
}

type RawTenant struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
}

type RawTeam struct {
	TeamID     string           `json:"team_id"`
	TeamResult *string          `json:"team_result,omitempty"`
	Players    []RawParticipant `json:"players"`
}

type RawParticipant struct {
	UserID            string   `json:"user_id"`
	Name              string   `json:"name"`
	LevelValue        *float64 `json:"level_value,omitempty"`
	LevelConfidence   *float64 `json:"level_confidence,omitempty"`
	PreferredPosition *string  `json:"preferred_position,omitempty"`
	IsPremium         bool     `json:"is_premium"`
	Picture           *string  `json:"picture,omitempty"`
	Gender            string   `json:"gender,omitempty"`
}

type RawSetResult struct {
	Name   string        `json:"name"`
	Scores []RawSetScore `json:"scores"`
}

type RawSetScore struct {
	TeamID string   `json:"team_id"`
	Score  *float64 `json:"score"`
}
