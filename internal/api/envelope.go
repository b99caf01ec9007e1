package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when a response body is neither a list nor an object
var ErrMalformed = errors.New("malformed response body")

// decodeItems accepts `{ "data": ... }` envelopes as well as bare arrays and
// objects and returns the raw list items. A single object is a one-item list;
// an empty body or null yields no items.
func decodeItems(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return items, nil

	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if data, ok := envelope["data"]; ok {
			return decodeItems(data)
		}
		return []json.RawMessage{json.RawMessage(body)}, nil

	case '"':
		// bare string items only make sense inside a list
		return []json.RawMessage{json.RawMessage(body)}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrMalformed, body[0])
	}
}

// decodeList decodes every item of body into T, skipping items that do not decode
func decodeList[T any](body []byte) ([]T, error) {
	raw, err := decodeItems(body)
	if err != nil {
		return nil, err
	}

	return decodeEach[T](raw), nil
}

// decodeEach decodes raw items into T, skipping items that do not decode
func decodeEach[T any](raw []json.RawMessage) []T {
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// decodeTerms decodes a list of search terms given as strings or objects
func decodeTerms(body []byte) ([]string, error) {
	raw, err := decodeItems(body)
	if err != nil {
		return nil, err
	}

	terms := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s != "" {
				terms = append(terms, s)
			}
			continue
		}
		var term SearchTerm
		if err := json.Unmarshal(item, &term); err == nil {
			if text := term.Text(); text != "" {
				terms = append(terms, text)
			}
		}
	}
	return terms, nil
}
