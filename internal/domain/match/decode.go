package match

import (
	"bytes"
	"fmt"

	sonic "github.com/bytedance/sonic"
)

type rawEnvelope struct {
	Matches []RawMatch `json:"matches"`
}

// DecodeRawMatches accepts either a bare JSON array of match documents or an
// object carrying them under "matches".
func DecodeRawMatches(data []byte) ([]RawMatch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var out []RawMatch
		if err := sonic.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decode match array: %w", err)
		}
		return out, nil
	case '{':
		var env rawEnvelope
		if err := sonic.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode match envelope: %w", err)
		}
		return env.Matches, nil
	default:
		return nil, fmt.Errorf("decode matches: unexpected leading byte %q", trimmed[0])
	}
}
