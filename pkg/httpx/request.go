package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// maxPeekBytes caps how much body we buffer when peeking a field.
const maxPeekBytes = 1 << 16

// peekJSONField reads a top-level string field out of a JSON body and
// puts the body back so the handler can decode it normally.
func peekJSONField(r *http.Request, fieldName string) string {
	if r.Body == nil {
		return ""
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(buf))
	if err != nil {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(buf, &fields); err != nil {
		return ""
	}

	var val string
	if raw, ok := fields[fieldName]; ok {
		_ = json.Unmarshal(raw, &val)
	}
	return val
}

// DecodeJSON decodes a JSON request body into v, rejecting unknown
// fields and trailing garbage.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxPeekBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return io.ErrUnexpectedEOF
	}
	return nil
}
