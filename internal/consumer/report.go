package consumer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Report is the single JSON line a worker process writes to stdout.
type Report struct {
	Worker  int    `json:"worker"`
	Outcome string `json:"outcome"`
	Length  int    `json:"length,omitempty"`
	Message []byte `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewReport converts an outcome for transport.
func NewReport(o Outcome) Report {
	r := Report{Worker: o.Worker, Outcome: o.Kind.String(), Length: o.Length, Message: o.Message}
	if o.Err != nil {
		r.Error = o.Err.Error()
	}
	return r
}

// Decode rebuilds the outcome described by the report.
func (r Report) Decode() (Outcome, error) {
	kind, err := ParseKind(r.Outcome)
	if err != nil {
		return Outcome{}, err
	}
	switch kind {
	case KindSuccess:
		if r.Length != len(r.Message) || r.Length == 0 {
			return Outcome{}, fmt.Errorf("report length %d does not match %d message bytes", r.Length, len(r.Message))
		}
		o := Success(r.Message)
		o.Worker = r.Worker
		return o, nil
	case KindEmpty:
		o := Empty()
		o.Worker = r.Worker
		return o, nil
	default:
		o := Failure(&WorkerError{Worker: r.Worker, Message: r.Error})
		o.Worker = r.Worker
		return o, nil
	}
}

// WriteReport encodes o as one JSON line.
func WriteReport(w io.Writer, o Outcome) error {
	return json.NewEncoder(w).Encode(NewReport(o))
}

// ReadReport decodes the first report from r.
func ReadReport(r io.Reader) (Outcome, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		if errors.Is(err, io.EOF) {
			return Outcome{}, errors.New("worker produced no report")
		}
		return Outcome{}, fmt.Errorf("decode report: %w", err)
	}
	return rep.Decode()
}
