package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Meta carries caller metadata attached to every request.
type Meta struct {
	Source string `json:"source"`
}

// Request is one command invocation sent by the UI layer.
// Payload is kept raw; each command decodes the fields it needs.
type Request struct {
	ID      string          `json:"id"`
	Command string          `json:"cmd"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Meta    Meta            `json:"meta"`
}

// UnmarshalJSON matches object keys exactly ("id", not "ID"). Unknown keys
// are ignored; a wrongly typed known key is an error.
func (m *Meta) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*m = Meta{}
	return decodeField(fields, "source", &m.Source)
}

// UnmarshalJSON matches object keys exactly, as Meta does.
func (r *Request) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*r = Request{}
	if err := decodeField(fields, "id", &r.ID); err != nil {
		return err
	}
	if err := decodeField(fields, "cmd", &r.Command); err != nil {
		return err
	}
	if err := decodeField(fields, "meta", &r.Meta); err != nil {
		return err
	}
	if raw, ok := fields["payload"]; ok {
		r.Payload = append(json.RawMessage(nil), raw...)
	}
	return nil
}

func objectFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func decodeField(fields map[string]json.RawMessage, name string, dst any) error {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return nil
}

// Valid reports whether id, cmd and meta.source are all non-blank.
func (r *Request) Valid() bool {
	return strings.TrimSpace(r.ID) != "" &&
		strings.TrimSpace(r.Command) != "" &&
		strings.TrimSpace(r.Meta.Source) != ""
}

// Error is the error body of a failed response.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Response answers exactly one Request. Data is set iff OK; Error is set
// iff not OK.
type Response struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}
