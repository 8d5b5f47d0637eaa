package table

import (
	"errors"
	"fmt"
	"strings"

	"class-remapper/internal/common"
)

// ErrRuleCollision is returned when two old class names target one new name.
var ErrRuleCollision = errors.New("rule collision")

// CollisionPolicy decides what happens when a class rule would break the
// bijection of the class table.
type CollisionPolicy int

const (
	// RejectCollisions fails the build.
	RejectCollisions CollisionPolicy = iota
	// OverwriteCollisions drops the earlier rule and keeps the later one.
	OverwriteCollisions
)

// String returns the policy name used in configuration.
func (p CollisionPolicy) String() string {
	switch p {
	case RejectCollisions:
		return "reject"
	case OverwriteCollisions:
		return "overwrite"
	default:
		return common.UnknownStr
	}
}

// ParseCollisionPolicy parses "reject" or "overwrite".
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return RejectCollisions, nil
	case "overwrite":
		return OverwriteCollisions, nil
	default:
		return 0, fmt.Errorf("unknown collision policy %q (expected reject or overwrite)", s)
	}
}

// ClassTable is a bijective class rename table over internal names.
type ClassTable struct {
	forward map[string]string
	reverse map[string]string
}

// NewClassTable creates an empty table.
func NewClassTable() *ClassTable {
	return &ClassTable{
		forward: make(map[string]string),
		reverse: make(map[string]string),
	}
}

// Put records old -> new. Re-declaring old with a different target replaces
// the previous rule. If another old name already targets newName the policy
// applies: reject returns ErrRuleCollision, overwrite removes the other rule
// and reports its old name as displaced.
func (t *ClassTable) Put(oldName, newName string, policy CollisionPolicy) (displaced string, err error) {
	if oldName == newName {
		return "", nil
	}

	if prev, ok := t.forward[oldName]; ok && prev == newName {
		return "", nil
	}

	if owner, ok := t.reverse[newName]; ok && owner != oldName {
		if policy != OverwriteCollisions {
			return "", fmt.Errorf("%w: %s and %s both map to %s", ErrRuleCollision, owner, oldName, newName)
		}

		delete(t.forward, owner)

		displaced = owner
	}

	if prev, ok := t.forward[oldName]; ok {
		delete(t.reverse, prev)
	}

	t.forward[oldName] = newName
	t.reverse[newName] = oldName

	return displaced, nil
}

// Get returns the explicit rule for an old name.
func (t *ClassTable) Get(oldName string) (string, bool) {
	v, ok := t.forward[oldName]
	return v, ok
}

// GetOld returns the old name whose rule targets newName.
func (t *ClassTable) GetOld(newName string) (string, bool) {
	v, ok := t.reverse[newName]
	return v, ok
}

// Map translates an old internal name. Without an explicit rule a nested
// name has its enclosing part translated and its last segment kept
// verbatim; anything else maps to itself.
func (t *ClassTable) Map(name string) string {
	return lookupNested(t.forward, name)
}

// Unmap is Map over the reverse direction.
func (t *ClassTable) Unmap(name string) string {
	return lookupNested(t.reverse, name)
}

func lookupNested(m map[string]string, name string) string {
	if v, ok := m[name]; ok {
		return v
	}

	if outer, inner, ok := common.SplitInner(name); ok {
		return lookupNested(m, outer) + common.InnerSeparator + inner
	}

	return name
}

// Len returns the number of explicit rules.
func (t *ClassTable) Len() int {
	return len(t.forward)
}

// OldNames returns every old name with an explicit rule, sorted.
func (t *ClassTable) OldNames() []string {
	return common.SortedKeys(t.forward)
}

// Invert returns a table translating new names to old names.
func (t *ClassTable) Invert() *ClassTable {
	inv := NewClassTable()
	for k, v := range t.forward {
		inv.forward[v] = k
		inv.reverse[k] = v
	}

	return inv
}
