package player

import (
	"regexp"
	"strings"
)

// SystemAccountRules decide which resolved names belong to placeholder or
// bot accounts. Matching is case-insensitive except for Patterns, which
// carry their own flags.
type SystemAccountRules struct {
	Phrases  []string
	Prefixes []string
	Exact    []string
	Patterns []*regexp.Regexp
}

func DefaultSystemAccountRules() SystemAccountRules {
	return SystemAccountRules{
		Phrases:  []string{"playtomic", "test account", "do not use"},
		Prefixes: []string{"bot_", "bot-", "[bot]", "system_"},
		Exact:    []string{"unknown", "unknown player", "n/a", "-"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^(player|jugador|user)\s*#?\s*\d+$`),
		},
	}
}

func (r SystemAccountRules) IsSystemAccount(name string) bool {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)

	for _, exact := range r.Exact {
		if lower == strings.ToLower(exact) {
			return true
		}
	}
	for _, prefix := range r.Prefixes {
		if prefix != "" && strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return true
		}
	}
	for _, phrase := range r.Phrases {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	for _, pattern := range r.Patterns {
		if pattern != nil && pattern.MatchString(trimmed) {
			return true
		}
	}

	return false
}
