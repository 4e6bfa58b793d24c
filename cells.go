package bag

import (
	"fmt"
	"reflect"
	"sort"
)

// cell is one type-erased slot of a layer. The concrete type is only known to
// the generic accessors, which recover it with a checked cast.
type cell interface {
	clone() cell
	describe() ItemDescriptor
	snapshot(src Source) (string, any, bool)
}

type typedCell[P Store[S, R], S, R any] struct {
	value Value[S]
}

func (c *typedCell[P, S, R]) clone() cell {
	out := &typedCell[P, S, R]{value: c.value}
	item, ok := c.value.Get()
	if !ok {
		return out
	}
	var p P
	if sc, ok := any(p).(StoredCloner[S]); ok {
		out.value = Set(sc.CloneStored(item))
	} else {
		out.value = Set(cloneItem(item))
	}
	return out
}

func (c *typedCell[P, S, R]) describe() ItemDescriptor {
	desc := ItemDescriptor{
		Type:   reflect.TypeFor[S]().String(),
		Policy: policyName[P](),
		State:  c.value.State(),
		Reason: c.value.Reason(),
	}
	if item, ok := c.value.Get(); ok {
		desc.Value = item
	}
	return desc
}

func (c *typedCell[P, S, R]) snapshot(src Source) (string, any, bool) {
	var p P
	exporter, ok := any(p).(SnapshotExporter[R])
	if !ok {
		return "", nil, false
	}
	name := exporter.SnapshotName()
	if name == "" {
		return "", nil, false
	}
	value, ok := exporter.SnapshotValue(LoadWith[P, S, R](src))
	return name, value, ok
}

// cells maps the policy type of a stored value to its slot.
type cells map[reflect.Type]cell

func keyOf[P any]() reflect.Type {
	return reflect.TypeFor[P]()
}

func (c cells) clone() cells {
	if len(c) == 0 {
		return nil
	}
	out := make(cells, len(c))
	for key, value := range c {
		out[key] = value.clone()
	}
	return out
}

// keys returns the slot keys sorted by name so dumps are stable.
func (c cells) keys() []reflect.Type {
	keys := make([]reflect.Type, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

func lookup[P Store[S, R], S, R any](c cells) (Value[S], bool) {
	key := keyOf[P]()
	raw, ok := c[key]
	if !ok {
		return Value[S]{}, false
	}
	return mustCast[P, S, R](key, raw).value, true
}

// slot returns the stored value for P, inserting Set(zero S) when absent.
func slot[P Store[S, R], S, R any](c cells) *Value[S] {
	key := keyOf[P]()
	raw, ok := c[key]
	if !ok {
		created := &typedCell[P, S, R]{value: Set(*new(S))}
		c[key] = created
		return &created.value
	}
	return &mustCast[P, S, R](key, raw).value
}

func mustCast[P Store[S, R], S, R any](key reflect.Type, raw cell) *typedCell[P, S, R] {
	typed, ok := raw.(*typedCell[P, S, R])
	if !ok {
		panic(fmt.Sprintf("bag: cell %s holds %T", key, raw))
	}
	return typed
}
