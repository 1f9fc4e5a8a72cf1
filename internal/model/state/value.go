// Package state holds the generic session value model shared by the
// codec, the stores and the turn processor.
package state

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind discriminates the three shapes a Value can take.
type Kind uint8

const (
	KindScalar Kind = iota
	KindList
	KindRecord
)

// TextKey is the reserved record key carrying leaf text that coexists
// with attribute entries on the same node.
const TextKey = "#text"

// Value is the universal intermediate form: a scalar string, an ordered
// list, or an insertion-ordered record of named children.
type Value struct {
	kind   Kind
	scalar string
	list   []*Value
	record *orderedmap.OrderedMap[string, *Value]
}

// Scalar wraps a plain string value.
func Scalar(s string) *Value {
	return &Value{kind: KindScalar, scalar: s}
}

// NewList builds a list value from the supplied items.
func NewList(items ...*Value) *Value {
	return &Value{kind: KindList, list: append([]*Value(nil), items...)}
}

// NewRecord builds an empty record value.
func NewRecord() *Value {
	return &Value{kind: KindRecord, record: orderedmap.New[string, *Value]()}
}

// Kind reports the shape of the value.
func (v *Value) Kind() Kind { return v.kind }

// Text returns the scalar payload, or "" for non-scalar values.
func (v *Value) Text() string {
	if v == nil || v.kind != KindScalar {
		return ""
	}
	return v.scalar
}

// Items returns the list elements in order. Nil for non-lists.
func (v *Value) Items() []*Value {
	if v == nil || v.kind != KindList {
		return nil
	}
	return v.list
}

// Append adds an item to a list value.
func (v *Value) Append(item *Value) {
	if v.kind != KindList {
		return
	}
	v.list = append(v.list, item)
}

// Len reports the number of list items or record entries.
func (v *Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindRecord:
		return v.record.Len()
	default:
		return 0
	}
}

// Get looks up a record entry by key.
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.kind != KindRecord {
		return nil, false
	}
	return v.record.Get(key)
}

// Set stores a record entry, preserving first-insertion order for
// existing keys.
func (v *Value) Set(key string, val *Value) {
	if v.kind != KindRecord {
		return
	}
	v.record.Set(key, val)
}

// Delete removes a record entry if present.
func (v *Value) Delete(key string) {
	if v.kind != KindRecord {
		return
	}
	v.record.Delete(key)
}

// Keys returns record keys in insertion order.
func (v *Value) Keys() []string {
	if v == nil || v.kind != KindRecord {
		return nil
	}
	keys := make([]string, 0, v.record.Len())
	for pair := v.record.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Merge inserts val under key, promoting an existing entry into a list
// on the second occurrence. A single occurrence stays a bare value; two
// or more become a list. The decode side depends on this asymmetry.
func (v *Value) Merge(key string, val *Value) {
	if v.kind != KindRecord {
		return
	}
	existing, ok := v.record.Get(key)
	if !ok {
		v.record.Set(key, val)
		return
	}
	if existing.kind == KindList {
		existing.list = append(existing.list, val)
		return
	}
	v.record.Set(key, NewList(existing, val))
}

// Equal reports deep structural equality.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.scalar == other.scalar
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		if v.record.Len() != other.record.Len() {
			return false
		}
		p, q := v.record.Oldest(), other.record.Oldest()
		for p != nil && q != nil {
			if p.Key != q.Key || !p.Value.Equal(q.Value) {
				return false
			}
			p, q = p.Next(), q.Next()
		}
		return p == nil && q == nil
	}
	return false
}

// Clone returns a deep copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindScalar:
		return Scalar(v.scalar)
	case KindList:
		items := make([]*Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.Clone()
		}
		return NewList(items...)
	default:
		rec := NewRecord()
		for pair := v.record.Oldest(); pair != nil; pair = pair.Next() {
			rec.Set(pair.Key, pair.Value.Clone())
		}
		return rec
	}
}
