package adapter

import (
	"fmt"
	"strings"
)

// Dialect is the request-body convention a backend deployment expects.
type Dialect int

const (
	RawQuestion Dialect = iota + 1
	RawPrompt
	DataframeSplit
)

const (
	DefaultQuestionURL  = "http://127.0.0.1:5000/isu-insight"
	DefaultPromptURL    = "http://127.0.0.1:5000/llm"
	DefaultDataframeURL = "http://127.0.0.1:5000/sales-insight"

	dataframeColumn = "user_query"
)

var dialectNames = map[Dialect]string{
	RawQuestion:    "raw_question",
	RawPrompt:      "raw_prompt",
	DataframeSplit: "dataframe_split",
}

func ParseDialect(name string) (Dialect, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for d, n := range dialectNames {
		if n == normalized {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown dialect %q (want raw_question, raw_prompt or dataframe_split)", name)
}

func (d Dialect) String() string {
	if n, ok := dialectNames[d]; ok {
		return n
	}
	return fmt.Sprintf("dialect(%d)", int(d))
}

func (d Dialect) Valid() bool {
	_, ok := dialectNames[d]
	return ok
}

// DefaultURL is the documented fallback endpoint used when no override is set.
func (d Dialect) DefaultURL() string {
	switch d {
	case RawQuestion:
		return DefaultQuestionURL
	case RawPrompt:
		return DefaultPromptURL
	case DataframeSplit:
		return DefaultDataframeURL
	default:
		return ""
	}
}

type questionBody struct {
	Question string `json:"question"`
}

type promptBody struct {
	Prompt string `json:"prompt"`
}

type dataframeBody struct {
	DataframeSplit dataframeSplit `json:"dataframe_split"`
}

type dataframeSplit struct {
	Columns []string   `json:"columns"`
	Data    [][]string `json:"data"`
}

func (d Dialect) body(question string) (any, error) {
	switch d {
	case RawQuestion:
		return questionBody{Question: question}, nil
	case RawPrompt:
		return promptBody{Prompt: question}, nil
	case DataframeSplit:
		return dataframeBody{DataframeSplit: dataframeSplit{
			Columns: []string{dataframeColumn},
			Data:    [][]string{{question}},
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", d)
	}
}
