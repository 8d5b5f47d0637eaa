package table

// Tables is the complete, read-only rule set of one remap operation.
type Tables struct {
	Classes *ClassTable
	Fields  *MemberTable
	Methods *MemberTable
}

// Stats counts the rules in each namespace.
type Stats struct {
	Classes int
	Fields  int
	Methods int
}

// NewTables creates empty tables.
func NewTables() *Tables {
	return &Tables{
		Classes: NewClassTable(),
		Fields:  NewMemberTable(),
		Methods: NewMemberTable(),
	}
}

// Stats returns the rule counts.
func (t *Tables) Stats() Stats {
	return Stats{
		Classes: t.Classes.Len(),
		Fields:  t.Fields.Len(),
		Methods: t.Methods.Len(),
	}
}

// Invert returns tables translating in the opposite direction: every rule
// old -> new becomes new -> old, including member descriptors.
func (t *Tables) Invert() *Tables {
	return &Tables{
		Classes: t.Classes.Invert(),
		Fields:  t.Fields.Invert(),
		Methods: t.Methods.Invert(),
	}
}
