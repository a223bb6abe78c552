package adapter

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	EmptyInput   FailureKind = "empty_input"
	HTTPError    FailureKind = "http_error"
	Unrecognized FailureKind = "unrecognized"
	NetworkError FailureKind = "network_error"
)

// Failure is the terminal reason an interaction did not produce an answer.
// Status and Body are set for HTTPError, Body holds the pretty-printed payload
// for Unrecognized, and Message describes EmptyInput and NetworkError.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Status  int         `json:"status,omitempty"`
	Body    string      `json:"body,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (f *Failure) Error() string {
	switch f.Kind {
	case HTTPError:
		return fmt.Sprintf("insight endpoint returned HTTP %d", f.Status)
	case Unrecognized:
		return "no readable answer in insight reply"
	default:
		if f.Message != "" {
			return string(f.Kind) + ": " + f.Message
		}
		return string(f.Kind)
	}
}

func NewEmptyInput() *Failure {
	return &Failure{Kind: EmptyInput, Message: "question is empty"}
}

func NewHTTPError(status int, body string) *Failure {
	return &Failure{Kind: HTTPError, Status: status, Body: body}
}

func NewUnrecognized(pretty string) *Failure {
	return &Failure{Kind: Unrecognized, Body: pretty}
}

func NewNetworkError(err error) *Failure {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	return &Failure{Kind: NetworkError, Message: msg}
}

// AsFailure converts any error into a Failure, treating foreign errors as
// transport failures.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return NewNetworkError(err)
}
