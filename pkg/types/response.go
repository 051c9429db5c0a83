package types

import "fmt"

// Code classifies a failed response.
type Code string

const (
	// CodeInvalidRequest covers malformed envelopes, bad payload fields and
	// an unavailable store.
	CodeInvalidRequest Code = "INVALID_REQUEST"
	// CodeFSError covers every filesystem failure except "not found" for exists.
	CodeFSError Code = "FS_ERROR"
	// CodeUnsupported is returned for command names outside the closed set.
	CodeUnsupported Code = "UNSUPPORTED"
)

// Messages shared by every transport.
const (
	MsgMissingFields    = "missing required fields"
	MsgUnsupported      = "unsupported command"
	MsgStoreUnavailable = "store unavailable"
	MsgFSError          = "fs error"
	MsgMalformed        = "malformed request"
	MsgInternal         = "internal error"
)

// OK builds a success response carrying data.
func OK(id string, data any) *Response {
	return &Response{ID: id, OK: true, Data: data}
}

// Fail builds an error response.
func Fail(id string, code Code, message string) *Response {
	return &Response{
		ID:    id,
		OK:    false,
		Error: &Error{Code: code, Message: message},
	}
}

// InvalidField builds the INVALID_REQUEST response for a missing or
// wrong-typed payload field.
func InvalidField(id, field string) *Response {
	return Fail(id, CodeInvalidRequest, fmt.Sprintf("missing or invalid field: %s", field))
}

// Outcome returns the metrics label for r: "ok" or its error code.
func (r *Response) Outcome() string {
	switch {
	case r.OK:
		return "ok"
	case r.Error == nil:
		return "unknown"
	default:
		return string(r.Error.Code)
	}
}
