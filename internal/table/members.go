package table

import (
	"cmp"
	"slices"
)

// MemberKey identifies a field or method by owner, name and descriptor.
type MemberKey struct {
	Owner string
	Name  string
	Desc  string
}

// String returns "owner.name:desc".
func (k MemberKey) String() string {
	return k.Owner + "." + k.Name + ":" + k.Desc
}

func compareKeys(a, b MemberKey) int {
	return cmp.Or(
		cmp.Compare(a.Owner, b.Owner),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Desc, b.Desc),
	)
}

// MemberTable maps old-side member keys to new-side member keys.
type MemberTable struct {
	rules map[MemberKey]MemberKey
}

// NewMemberTable creates an empty table.
func NewMemberTable() *MemberTable {
	return &MemberTable{rules: make(map[MemberKey]MemberKey)}
}

// Put records a rule, replacing any previous rule for the same key. It
// returns the replaced target, if any.
func (t *MemberTable) Put(oldKey, newKey MemberKey) (MemberKey, bool) {
	prev, ok := t.rules[oldKey]
	t.rules[oldKey] = newKey

	return prev, ok
}

// Get returns the rule for an old-side key.
func (t *MemberTable) Get(oldKey MemberKey) (MemberKey, bool) {
	v, ok := t.rules[oldKey]
	return v, ok
}

// Len returns the number of rules.
func (t *MemberTable) Len() int {
	return len(t.rules)
}

// Keys returns every old-side key, sorted by owner, name and descriptor.
func (t *MemberTable) Keys() []MemberKey {
	keys := make([]MemberKey, 0, len(t.rules))
	for k := range t.rules {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, compareKeys)

	return keys
}

// Invert returns a table keyed by the new side.
func (t *MemberTable) Invert() *MemberTable {
	inv := NewMemberTable()
	for k, v := range t.rules {
		inv.rules[v] = k
	}

	return inv
}
