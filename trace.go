package bag

import (
	"encoding/json"
	"iter"
)

// Trace captures, for one type, what every layer of a source contributed and
// which contributions a read actually sees.
type Trace struct {
	Type   string       `json:"type"`
	Policy string       `json:"policy"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how a single layer contributed to a traced type.
// Shadowed is set on entries hidden by a newer entry of the same type.
type Provenance struct {
	Layer    string `json:"layer"`
	Index    int    `json:"index"`
	Frozen   bool   `json:"frozen"`
	State    string `json:"state"`
	Value    any    `json:"value,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Shadowed bool   `json:"shadowed,omitempty"`
}

// Visible returns the entries a read of the type takes into account.
func (t Trace) Visible() []Provenance {
	var out []Provenance
	for _, p := range t.Layers {
		if p.State != "absent" && !p.Shadowed {
			out = append(out, p)
		}
	}
	return out
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

// TraceOf traces a Replace type: the nearest entry is visible, everything
// older is shadowed.
func TraceOf[T ReplaceStorable](src Source) Trace {
	return traceWith[ReplaceStore[T], T, Value[T]](src, typeName[T](), func(Value[T]) bool { return true })
}

// TraceAll traces an Append type: entries are visible down to and including
// the first clear.
func TraceAll[T AppendStorable](src Source) Trace {
	return traceWith[AppendStore[T], []T, iter.Seq[T]](src, typeName[T](), Value[[]T].IsUnset)
}

// TraceMerged traces a Merge type: entries are visible down to and including
// the first explicit unset.
func TraceMerged[T MergeStorable](src Source) Trace {
	return traceWith[MergeStore[T], T, Value[T]](src, typeName[T](), Value[T].IsUnset)
}

// traceWith walks every layer of src. After the first present entry for
// which stop returns true, older entries are marked shadowed.
func traceWith[P Store[S, R], S, R any](src Source, name string, stop func(Value[S]) bool) Trace {
	trace := Trace{
		Type:   name,
		Policy: policyName[P](),
	}
	if src == nil {
		return trace
	}
	shadowed := false
	index := 0
	for l := range src.Layers() {
		if l == nil {
			continue
		}
		v, _ := lookup[P, S, R](l.props)
		entry := Provenance{
			Layer:  l.Name(),
			Index:  index,
			Frozen: l.Frozen(),
			State:  v.State(),
			Reason: v.Reason(),
		}
		index++
		if item, ok := v.Get(); ok {
			entry.Value = item
		}
		if !v.IsAbsent() {
			entry.Shadowed = shadowed
			if stop(v) {
				shadowed = true
			}
		}
		trace.Layers = append(trace.Layers, entry)
	}
	return trace
}
