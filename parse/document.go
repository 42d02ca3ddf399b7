package parse

import (
	"encoding/json"
	"fmt"

	"github.com/spkg/bom"
)

// The root object of a decoded live times response.
type Document map[string]json.RawMessage

// Decodes a raw response body. Leading byte order marks are dropped.
func DecodeDocument(buf []byte) (Document, error) {
	doc := Document{}
	if err := json.Unmarshal(bom.Clean(buf), &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding document: %w", ErrMalformedResponse, err)
	}

	// A JSON null decodes into a nil map without complaint.
	if doc == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedResponse)
	}

	return doc, nil
}

// Lenient scalar types for optional fields. A value of the wrong type
// reads as unset instead of failing the enclosing record.

type optString string

func (s *optString) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}

	switch v := v.(type) {
	case string:
		*s = optString(v)
	case float64:
		*s = optString(data)
	}

	return nil
}

type optBool bool

func (b *optBool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}

	switch v := v.(type) {
	case bool:
		*b = optBool(v)
	case string:
		*b = optBool(v == "true" || v == "TRUE" || v == "True")
	}

	return nil
}
