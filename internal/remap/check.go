package remap

import (
	"fmt"

	"class-remapper/internal/common"
	"class-remapper/internal/diagnostic"
	"class-remapper/internal/mapping"
	"class-remapper/internal/match"
	"class-remapper/internal/metadata"
	"class-remapper/internal/table"
)

// CheckOptions configures Check.
type CheckOptions struct {
	Mappings []string
	// Against is an optional container the rules are audited against.
	Against     string
	Reverse     bool
	OnCollision table.CollisionPolicy
}

// CheckReport summarizes a Check run.
type CheckReport struct {
	Rules table.Stats
	// Classes is the number of classes read from the audited container.
	Classes     int
	Diagnostics *diagnostic.Diagnostics
}

// Check loads and validates mapping documents and builds their tables
// without touching any output. With Against set, every rule is also audited
// against the classes of that container.
func Check(opts CheckOptions) (*CheckReport, error) {
	docs, err := mapping.LoadFiles(opts.Mappings...)
	if err != nil {
		return nil, err
	}

	b := table.NewBuilder(table.Options{OnCollision: opts.OnCollision})
	b.Add(docs...)

	tables, diags, err := b.Build()
	if err != nil {
		return &CheckReport{Diagnostics: diags}, fmt.Errorf("failed to build rule tables: %w", err)
	}

	if opts.Reverse {
		tables = tables.Invert()
	}

	report := &CheckReport{Rules: tables.Stats(), Diagnostics: diags}
	if opts.Against == "" {
		return report, nil
	}

	store := metadata.NewStore()

	n, err := store.LoadContainer(opts.Against)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrPrimaryRead, err)
	}

	report.Classes = n
	diags.Merge(*Audit(tables, store))

	return report, nil
}

// Audit reports rules whose old side names a class or member that store
// does not know, with close matches as suggestions. Classes are reported
// once; members of missing classes are not reported separately.
func Audit(tables *table.Tables, store *metadata.Store) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	owners := make(map[string]struct{})
	for _, name := range tables.Classes.OldNames() {
		owners[name] = struct{}{}
	}

	for _, k := range tables.Fields.Keys() {
		owners[k.Owner] = struct{}{}
	}

	for _, k := range tables.Methods.Keys() {
		owners[k.Owner] = struct{}{}
	}

	known := store.Names()

	for _, owner := range common.SortedKeys(owners) {
		if _, ok := store.Get(owner); ok {
			continue
		}

		diags.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.DiagnosticWarning,
			Code:        "unknown_class",
			Message:     fmt.Sprintf("class %s is not in the container", common.DottedName(owner)),
			Subject:     owner,
			Suggestions: match.Suggest(owner, known, match.DefaultLimit),
		})
	}

	auditMembers(diags, store, tables.Fields, false)
	auditMembers(diags, store, tables.Methods, true)

	return diags
}

func auditMembers(diags *diagnostic.Diagnostics, store *metadata.Store, t *table.MemberTable, method bool) {
	kind, code := "field", "unknown_field"
	if method {
		kind, code = "method", "unknown_method"
	}

	for _, k := range t.Keys() {
		md, ok := store.Get(k.Owner)
		if !ok {
			continue
		}

		if _, ok := md.Member(k.Name, k.Desc, method); ok {
			continue
		}

		declared := md.Fields
		if method {
			declared = md.Methods
		}

		// Same name with another descriptor is the likeliest fix.
		var suggestions, names []string

		for _, m := range declared {
			if m.Name == k.Name {
				suggestions = append(suggestions, m.Name+":"+m.Desc)
			} else {
				names = append(names, m.Name)
			}
		}

		suggestions = append(suggestions, match.Suggest(k.Name, names, match.DefaultLimit)...)

		diags.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.DiagnosticWarning,
			Code:        code,
			Message:     fmt.Sprintf("%s %s:%s is not declared by %s", kind, k.Name, k.Desc, common.DottedName(k.Owner)),
			Subject:     k.String(),
			Suggestions: suggestions,
		})
	}
}
