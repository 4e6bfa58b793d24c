package bag

import "fmt"

// ItemDescriptor describes one cell of a layer.
type ItemDescriptor struct {
	Type   string `json:"type"`
	Policy string `json:"policy"`
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
	Value  any    `json:"value,omitempty"`
}

func (d ItemDescriptor) String() string {
	switch d.State {
	case "set":
		return fmt.Sprintf("%s[%s]=Set(%v)", d.Type, d.Policy, d.Value)
	case "unset":
		return fmt.Sprintf("%s[%s]=ExplicitlyUnset(%s)", d.Type, d.Policy, d.Reason)
	default:
		return fmt.Sprintf("%s[%s]=Absent", d.Type, d.Policy)
	}
}

// LayerDescriptor describes one layer of a source in read order.
type LayerDescriptor struct {
	Name   string           `json:"name"`
	Frozen bool             `json:"frozen"`
	Items  []ItemDescriptor `json:"items,omitempty"`
}

// Describe lists the layers of src newest first with their cells.
func Describe(src Source) []LayerDescriptor {
	if src == nil {
		return nil
	}
	var out []LayerDescriptor
	for l := range src.Layers() {
		if l == nil {
			continue
		}
		out = append(out, LayerDescriptor{
			Name:   l.Name(),
			Frozen: l.Frozen(),
			Items:  l.Items(),
		})
	}
	return out
}

// Snapshot returns the effective values of every Exported type stored in src,
// keyed by export name. Replace and Merge types map to their value, Append
// types to a slice newest first. Types that resolve to nothing are left out.
func Snapshot(src Source) map[string]any {
	out := map[string]any{}
	if src == nil {
		return out
	}
	seen := map[string]bool{}
	for l := range src.Layers() {
		if l == nil {
			continue
		}
		for _, key := range l.props.keys() {
			id := key.String()
			if seen[id] {
				continue
			}
			seen[id] = true
			name, value, ok := l.props[key].snapshot(src)
			if !ok {
				continue
			}
			if _, exists := out[name]; !exists {
				out[name] = value
			}
		}
	}
	return out
}
