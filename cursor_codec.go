package leandb

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

var _encoder = base64.RawURLEncoding

// TimeLayout is the wire form of timestamp cursor values: ISO-8601 in UTC.
// Fractional seconds are kept up to nanoseconds.
const TimeLayout = time.RFC3339Nano

// RawCursor is the plain-data form of a Cursor for transport boundaries.
// Limit accepts a number or a numeric string; a missing limit means
// DefaultLimit.
type RawCursor struct {
	Field string          `json:"field"`
	From  json.RawMessage `json:"from,omitempty"`
	Limit *Limit          `json:"limit,omitempty"`
}

// Encode converts the cursor to its transport form.
func (c *Cursor[T, V]) Encode() (RawCursor, error) {
	limit := Limit(c.limit)
	raw := RawCursor{
		Field: c.field.Name(),
		Limit: &limit,
	}

	if !c.hasFrom {
		return raw, nil
	}

	from, err := encodeValue(c.from)
	if err != nil {
		return RawCursor{}, fmt.Errorf("failed to encode cursor value: %w", err)
	}

	raw.From = from

	return raw, nil
}

// MarshalJSON implements json.Marshaler with the RawCursor shape.
func (c *Cursor[T, V]) MarshalJSON() ([]byte, error) {
	raw, err := c.Encode()
	if err != nil {
		return nil, err
	}

	return json.Marshal(raw)
}

// Token returns the cursor as an opaque base64url string.
func (c *Cursor[T, V]) Token() (string, error) {
	jTok, err := c.MarshalJSON()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err = json.Compact(&buf, jTok); err != nil {
		return "", fmt.Errorf("cannot compact cursor value: %w", err)
	}

	return _encoder.EncodeToString(buf.Bytes()), nil
}

// DecodeCursor rebuilds a cursor on field from its transport form. A raw
// cursor naming another field is a contract violation; an empty name is taken
// as field.
func DecodeCursor[T any, V any](raw RawCursor, field Field[T, V]) (*Cursor[T, V], error) {
	if raw.Field != "" && raw.Field != field.Name() {
		return nil, contractViolation("cursor is bound to field '%s', not '%s'", raw.Field, field.Name())
	}

	c := NewCursor(field)
	if raw.Limit != nil {
		c.limit = int(*raw.Limit)
	}

	if len(raw.From) == 0 || bytes.Equal(raw.From, []byte("null")) {
		return c, nil
	}

	from, err := decodeValue[V](raw.From)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cursor value: %w", err)
	}

	return c.WithFrom(from), nil
}

// DecodeCursorToken parses a token produced by Token. The empty token is the
// first page.
func DecodeCursorToken[T any, V any](token string, field Field[T, V]) (*Cursor[T, V], error) {
	if len(token) == 0 {
		return NewCursor(field), nil
	}

	raw, err := DecodeRawCursorToken(token)
	if err != nil {
		return nil, err
	}

	return DecodeCursor(raw, field)
}

// DecodeRawCursorToken parses a token without binding it to a field, e.g. to
// find out which field a session pages by.
func DecodeRawCursorToken(token string) (RawCursor, error) {
	jsonData, err := _encoder.DecodeString(token)
	if err != nil {
		return RawCursor{}, fmt.Errorf("failed to decode base64 encoded cursor: %w", err)
	}

	var raw RawCursor
	if err = json.Unmarshal(jsonData, &raw); err != nil {
		return RawCursor{}, fmt.Errorf("failed to unmarshal json encoded cursor: %w", err)
	}

	return raw, nil
}

func encodeValue[V any](value V) (json.RawMessage, error) {
	if t, ok := any(value).(time.Time); ok {
		return json.Marshal(t.UTC().Format(TimeLayout))
	}

	return json.Marshal(value)
}

func decodeValue[V any](data json.RawMessage) (V, error) {
	var ret V

	if _, ok := any(ret).(time.Time); ok {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ret, err
		}

		t, err := time.Parse(TimeLayout, s)
		if err != nil {
			return ret, err
		}

		return any(t.UTC()).(V), nil
	}

	err := json.Unmarshal(data, &ret)

	return ret, err
}
