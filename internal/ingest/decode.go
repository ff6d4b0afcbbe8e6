package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"venuepipe/internal/model"
)

// Decode parses a JSON object payload. Keys are matched exactly. at, site and
// val of the wrong JSON type make the whole payload undecodable; type is kept
// raw and only interpreted during validation.
func Decode(payload []byte) (model.RawRecord, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return model.RawRecord{}, errors.New("empty payload")
	}
	if trimmed[0] != '{' {
		return model.RawRecord{}, errors.New("payload is not a JSON object")
	}
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&fields); err != nil {
		return model.RawRecord{}, fmt.Errorf("decode payload: %w", err)
	}
	if dec.More() {
		return model.RawRecord{}, errors.New("trailing data after JSON object")
	}

	var raw model.RawRecord
	if err := field(fields, "at", &raw.At); err != nil {
		return model.RawRecord{}, err
	}
	if err := field(fields, "site", &raw.Site); err != nil {
		return model.RawRecord{}, err
	}
	if err := field(fields, "val", &raw.Val); err != nil {
		return model.RawRecord{}, err
	}
	if v, ok := fields["type"]; ok && !isNull(v) {
		raw.Type = v
	}
	raw.Payload = string(trimmed)
	return raw, nil
}

// field decodes fields[key] into *dst. Absent keys and nulls leave *dst nil.
func field[T any](fields map[string]json.RawMessage, key string, dst **T) error {
	v, ok := fields[key]
	if !ok || isNull(v) {
		return nil
	}
	var out T
	if err := json.Unmarshal(v, &out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	*dst = &out
	return nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
