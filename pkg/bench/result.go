package bench

import (
	"encoding/json"
	"strconv"
)

// ResultKind tells a successful measurement from a failed one.
type ResultKind string

const (
	KindOK               ResultKind = "ok"
	KindAllocationFailed ResultKind = "allocation_failed"
)

// WorkloadResult is the outcome of one workload run. It is not modified
// after the Runner creates it.
type WorkloadResult struct {
	Name           string     `json:"name"`
	Label          string     `json:"label"`
	Count          uint64     `json:"count"`
	DurationMicros float64    `json:"duration_us"`
	Rate           float64    `json:"rate"`
	Measurable     bool       `json:"measurable"`
	Payload        Payload    `json:"payload"`
	Kind           ResultKind `json:"kind"`
	Err            string     `json:"error,omitempty"`
}

// Failed reports whether the workload did not complete.
func (r WorkloadResult) Failed() bool {
	return r.Kind != KindOK
}

// MarshalJSON leaves the measurement fields out of failed results, which
// carry no duration, rate or payload.
func (r WorkloadResult) MarshalJSON() ([]byte, error) {
	type result WorkloadResult
	if !r.Failed() {
		return json.Marshal(result(r))
	}
	return json.Marshal(struct {
		Name  string     `json:"name"`
		Label string     `json:"label"`
		Count uint64     `json:"count"`
		Kind  ResultKind `json:"kind"`
		Err   string     `json:"error"`
	}{r.Name, r.Label, r.Count, r.Kind, r.Err})
}

// Field is a single key/value pair of a result's structured form.
type Field struct {
	Key   string
	Value string
}

// Fields returns the result as ordered key/value pairs.
func (r WorkloadResult) Fields() []Field {
	fields := []Field{
		{"name", r.Name},
		{"count", strconv.FormatUint(r.Count, 10)},
		{"kind", string(r.Kind)},
	}
	if r.Failed() {
		return append(fields, Field{"error", strconv.Quote(r.Err)})
	}
	rate := "unmeasurable"
	if r.Measurable {
		rate = strconv.FormatFloat(r.Rate, 'f', 0, 64)
	}
	return append(fields,
		Field{"duration_us", strconv.FormatFloat(r.DurationMicros, 'f', 3, 64)},
		Field{"rate", rate},
		Field{"payload", r.Payload.String()},
	)
}

func newResult(w Workload, durationMicros float64, p Payload) WorkloadResult {
	res := WorkloadResult{
		Name:           w.Name(),
		Label:          w.Label(),
		Count:          w.Size(),
		DurationMicros: durationMicros,
		Payload:        p,
		Kind:           KindOK,
	}
	// A zero reading means the clock was too coarse to see the work.
	if durationMicros > 0 {
		res.Rate = float64(res.Count) / (durationMicros / 1e6)
		res.Measurable = true
	}
	return res
}

func failedResult(w Workload, kind ResultKind, err error) WorkloadResult {
	return WorkloadResult{
		Name:  w.Name(),
		Label: w.Label(),
		Count: w.Size(),
		Kind:  kind,
		Err:   err.Error(),
	}
}
