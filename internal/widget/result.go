package widget

import (
	"strconv"
	"time"

	"github.com/Adithya411/sac-databricks-widget/internal/adapter"
)

type Phase string

const (
	Idle      Phase = "idle"
	Pending   Phase = "pending"
	Succeeded Phase = "succeeded"
	Failed    Phase = "failed"
)

// Result is the whole interaction state of a widget. A new value is built for
// every transition; listeners may keep the value they receive.
type Result struct {
	Phase    Phase            `json:"phase"`
	ID       string           `json:"id,omitempty"`
	Question string           `json:"question,omitempty"`
	Answer   *adapter.Answer  `json:"answer,omitempty"`
	Failure  *adapter.Failure `json:"failure,omitempty"`
	At       time.Time        `json:"at"`
}

// Settled reports whether r is a resting state after a submission.
func (r Result) Settled() bool {
	return r.Phase == Succeeded || r.Phase == Failed
}

func (r Result) succeed(answer adapter.Answer) Result {
	return Result{
		Phase:    Succeeded,
		ID:       r.ID,
		Question: r.Question,
		Answer:   &answer,
		At:       time.Now().UTC(),
	}
}

func (r Result) fail(f *adapter.Failure) Result {
	return Result{
		Phase:    Failed,
		ID:       r.ID,
		Question: r.Question,
		Failure:  f,
		At:       time.Now().UTC(),
	}
}

// View is what a presentation layer shows for a Result.
type View struct {
	Status string `json:"status"`
	Body   string `json:"body"`
	Busy   bool   `json:"busy"`
	Error  bool   `json:"error"`
}

const (
	StatusReady      = "Ready."
	StatusPending    = "Calling insight endpoint..."
	StatusSuccess    = "Success."
	StatusEmptyInput = "Please enter a question."
	StatusNoAnswer   = "No readable answer returned."
	StatusNetwork    = "Network error."
)

// Describe maps r to a status line and body. pendingStatus overrides the
// generic loading text when non-empty.
func Describe(r Result, pendingStatus string) View {
	switch r.Phase {
	case Pending:
		status := pendingStatus
		if status == "" {
			status = StatusPending
		}
		return View{Status: status, Busy: true}
	case Succeeded:
		return View{Status: StatusSuccess, Body: r.Answer.Text}
	case Failed:
		return describeFailure(r.Failure)
	default:
		return View{Status: StatusReady}
	}
}

func describeFailure(f *adapter.Failure) View {
	if f == nil {
		return View{Status: StatusNetwork, Error: true}
	}
	switch f.Kind {
	case adapter.EmptyInput:
		return View{Status: StatusEmptyInput, Error: true}
	case adapter.HTTPError:
		return View{Status: "Error: HTTP " + strconv.Itoa(f.Status), Body: f.Body, Error: true}
	case adapter.Unrecognized:
		return View{Status: StatusNoAnswer, Body: "Raw response:\n" + f.Body, Error: true}
	default:
		return View{Status: StatusNetwork, Body: f.Message, Error: true}
	}
}
