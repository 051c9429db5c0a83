package dispatch

import (
	"bytes"
	"encoding/json"
)

// payload is a request payload decoded one level deep. A payload that is
// absent or not a JSON object decodes to nil, so every field lookup fails.
type payload map[string]json.RawMessage

func decodePayload(raw json.RawMessage) payload {
	if len(raw) == 0 {
		return nil
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return p
}

// str returns the named field if it is present and a JSON string.
func (p payload) str(name string) (string, bool) {
	raw, ok := p[name]
	if !ok {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
