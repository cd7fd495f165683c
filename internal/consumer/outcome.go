package consumer

import (
	"errors"
	"fmt"
)

// Kind classifies the terminal result of one worker attempt.
type Kind int

const (
	KindSuccess Kind = iota + 1
	KindEmpty
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindEmpty:
		return "empty"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "success":
		return KindSuccess, nil
	case "empty":
		return KindEmpty, nil
	case "failure":
		return KindFailure, nil
	default:
		return 0, fmt.Errorf("unknown outcome %q", s)
	}
}

// Outcome is produced exactly once per worker.
type Outcome struct {
	Worker int
	Kind   Kind
	// Length is the number of bytes consumed; always len(Message).
	Length int
	// Message holds exactly Length bytes. It is private to the worker that
	// read it.
	Message []byte
	Err     error
}

// Success builds a Success outcome for msg.
func Success(msg []byte) Outcome {
	return Outcome{Kind: KindSuccess, Length: len(msg), Message: msg}
}

// Empty builds an Empty outcome.
func Empty() Outcome { return Outcome{Kind: KindEmpty} }

// Failure builds a Failure outcome.
func Failure(err error) Outcome {
	if err == nil {
		err = errors.New("unspecified failure")
	}
	return Outcome{Kind: KindFailure, Err: err}
}

// OK reports whether the outcome counts towards pool success.
func (o Outcome) OK() bool { return o.Kind == KindSuccess || o.Kind == KindEmpty }

func (o Outcome) String() string {
	switch o.Kind {
	case KindSuccess:
		return fmt.Sprintf("worker %d: success (%d bytes)", o.Worker, o.Length)
	case KindFailure:
		return fmt.Sprintf("worker %d: failure: %v", o.Worker, o.Err)
	default:
		return fmt.Sprintf("worker %d: %s", o.Worker, o.Kind)
	}
}
