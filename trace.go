package resolve

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Trace captures provenance for one resolution: every location probed, in
// order, and what each yielded.
type Trace struct {
	ID     string  `json:"id"`
	Key    string  `json:"key"`
	Forced bool    `json:"forced,omitempty"`
	Probes []Probe `json:"probes"`
}

// Probe details one location probe within a trace.
type Probe struct {
	Kind    string `json:"kind"`
	Target  string `json:"target,omitempty"`
	Value   any    `json:"value,omitempty"`
	Found   bool   `json:"found"`
	Adopted bool   `json:"adopted"`
}

// TraceSink receives completed traces.
type TraceSink func(Trace)

// WithTraceSink attaches a trace sink to the context. Every Get that runs the
// location loop emits one trace; cache hits and pre-hook short-circuits do
// not.
func WithTraceSink(sink TraceSink) Option {
	return func(cfg *contextConfig) {
		cfg.traceSink = sink
	}
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

func newTrace(key string, forced bool) Trace {
	return Trace{ID: uuid.NewString(), Key: key, Forced: forced}
}

func targetLabel(target Target) string {
	switch {
	case target.Fn != nil:
		return "<callback>"
	case target.Member != "":
		return target.Name + "::" + target.Member
	default:
		return target.Name
	}
}
