package adapter

import (
	"bytes"
	"encoding/json"
)

// Answer is the display text extracted from a reply together with the rule
// that produced it.
type Answer struct {
	Text       string `json:"text"`
	SourceRule string `json:"source_rule"`
}

const (
	RuleBareString = "bareString"
	rulePrediction = "predictions[0]"
)

// Order matters: a payload may satisfy several rules and the first one wins.
var (
	envelopeFields   = []string{"output_text", "result", "answer", "insights"}
	predictionFields = []string{"content", "answer", "text"}
)

// Normalize turns an insight endpoint reply into an Answer. The returned
// error is always a *Failure.
func Normalize(status int, body []byte) (Answer, error) {
	if status < 200 || status > 299 {
		return Answer{}, NewHTTPError(status, string(body))
	}

	reply, err := ParseReply(body)
	if err != nil {
		return Answer{}, NewNetworkError(err)
	}

	if answer, ok := Extract(reply); ok {
		return answer, nil
	}
	return Answer{}, NewUnrecognized(prettyJSON(bytes.TrimSpace(body)))
}

// Extract applies the extraction rules to an already decoded reply.
func Extract(reply Reply) (Answer, bool) {
	switch r := reply.(type) {
	case BareString:
		return nonEmpty(r.Text, RuleBareString)
	case Envelope:
		if answer, ok := probe(r.Fields, envelopeFields, "field:"); ok {
			return answer, true
		}
		if r.Predictions != nil {
			return extractPrediction(r.Predictions)
		}
		return Answer{}, false
	case Opaque:
		return Answer{}, false
	default:
		return Answer{}, false
	}
}

func extractPrediction(p Prediction) (Answer, bool) {
	switch pred := p.(type) {
	case PredictionText:
		return nonEmpty(pred.Text, rulePrediction)
	case PredictionRow:
		return nonEmpty(pred.First, rulePrediction+"[0]")
	case PredictionObject:
		if answer, ok := probe(pred.Fields, predictionFields, rulePrediction+"."); ok {
			return answer, true
		}
		return nonEmpty(prettyJSON(pred.Raw), rulePrediction+":dump")
	case PredictionOther:
		return Answer{}, false
	default:
		return Answer{}, false
	}
}

func probe(fields map[string]string, names []string, rulePrefix string) (Answer, bool) {
	for _, name := range names {
		if answer, ok := nonEmpty(fields[name], rulePrefix+name); ok {
			return answer, true
		}
	}
	return Answer{}, false
}

// nonEmpty accepts any non-empty string. Whitespace-only text is an answer.
func nonEmpty(text, rule string) (Answer, bool) {
	if text == "" {
		return Answer{}, false
	}
	return Answer{Text: text, SourceRule: rule}, true
}

// prettyJSON indents raw without reordering keys.
func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
