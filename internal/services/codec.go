package services

import (
	"bytes"
	"encoding/json"
	"errors"

	"marketlens/backend-go/internal/models"
)

// EncodingError marks a serialization defect (including non-finite floats,
// which are rejected rather than mapped to a sentinel).
type EncodingError struct {
	err error
}

func (e *EncodingError) Error() string { return "codec: " + e.err.Error() }
func (e *EncodingError) Unwrap() error { return e.err }

func EncodeEnvelope(env models.Envelope) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, &EncodingError{err: err}
	}
	return b, nil
}

func DecodeEnvelope(data []byte) (models.Envelope, error) {
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return models.Envelope{}, &EncodingError{err: err}
	}
	return env, nil
}

// DecodeFirst decodes a JSON value that may arrive either as a single
// object or as a sequence of objects; for a sequence the first element is
// taken. The provider's chart responses historically serialize as a
// one-element sequence.
func DecodeFirst(data []byte, out any) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return &EncodingError{err: err}
		}
		if len(items) == 0 {
			return &EncodingError{err: errors.New("empty sequence where one value expected")}
		}
		if err := json.Unmarshal(items[0], out); err != nil {
			return &EncodingError{err: err}
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &EncodingError{err: err}
	}
	return nil
}
