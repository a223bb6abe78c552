package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reply is a decoded insight payload. It is one of BareString, Envelope or
// Opaque.
type Reply interface {
	isReply()
}

// BareString is a payload that is itself a JSON string.
type BareString struct {
	Text string
}

// Envelope is a JSON object. Fields holds its string-valued members;
// Predictions is nil unless the object carries a "predictions" array.
type Envelope struct {
	Fields      map[string]string
	Predictions Prediction
	Raw         json.RawMessage
}

// Opaque is any other JSON value (number, bool, null, top-level array).
type Opaque struct {
	Raw json.RawMessage
}

func (BareString) isReply() {}
func (Envelope) isReply()   {}
func (Opaque) isReply()     {}

// Prediction is the first element of a "predictions" array. It is one of
// PredictionText, PredictionRow, PredictionObject or PredictionOther.
type Prediction interface {
	isPrediction()
}

type PredictionText struct {
	Text string
}

// PredictionRow is a table-shaped element whose first cell is a string.
type PredictionRow struct {
	First string
}

type PredictionObject struct {
	Fields map[string]string
	Raw    json.RawMessage
}

// PredictionOther covers empty arrays and elements of no recognized shape.
type PredictionOther struct {
	Raw json.RawMessage
}

func (PredictionText) isPrediction()   {}
func (PredictionRow) isPrediction()    {}
func (PredictionObject) isPrediction() {}
func (PredictionOther) isPrediction()  {}

// ParseReply decodes body into the Reply union.
func ParseReply(body []byte) (Reply, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("decode insight reply: invalid JSON")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("decode insight reply: %w", err)
		}
		return BareString{Text: s}, nil
	case '{':
		var members map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &members); err != nil {
			return nil, fmt.Errorf("decode insight reply: %w", err)
		}
		env := Envelope{
			Fields: stringMembers(members),
			Raw:    json.RawMessage(trimmed),
		}
		if raw, ok := members["predictions"]; ok {
			env.Predictions = parsePredictions(raw)
		}
		return env, nil
	default:
		return Opaque{Raw: json.RawMessage(trimmed)}, nil
	}
}

func parsePredictions(raw json.RawMessage) Prediction {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return PredictionOther{}
	}

	first := bytes.TrimSpace(items[0])
	if len(first) == 0 {
		return PredictionOther{}
	}
	switch first[0] {
	case '"':
		var s string
		if err := json.Unmarshal(first, &s); err == nil {
			return PredictionText{Text: s}
		}
	case '[':
		var row []json.RawMessage
		if err := json.Unmarshal(first, &row); err == nil && len(row) > 0 {
			if cell, ok := decodeString(row[0]); ok {
				return PredictionRow{First: cell}
			}
		}
	case '{':
		var members map[string]json.RawMessage
		if err := json.Unmarshal(first, &members); err == nil {
			return PredictionObject{Fields: stringMembers(members), Raw: first}
		}
	}
	return PredictionOther{Raw: first}
}

func stringMembers(members map[string]json.RawMessage) map[string]string {
	out := make(map[string]string, len(members))
	for k, v := range members {
		if s, ok := decodeString(v); ok {
			out[k] = s
		}
	}
	return out
}

// decodeString reports whether raw is a JSON string. A bare null would
// otherwise decode into "" without error.
func decodeString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}
