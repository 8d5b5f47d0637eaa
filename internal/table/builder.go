package table

import (
	"fmt"

	"class-remapper/internal/common"
	"class-remapper/internal/descriptor"
	"class-remapper/internal/diagnostic"
	"class-remapper/internal/mapping"
)

// Options configures a Builder.
type Options struct {
	// OnCollision decides what a class rule collision does.
	OnCollision CollisionPolicy
}

// DefaultOptions returns the default builder options.
func DefaultOptions() Options {
	return Options{OnCollision: RejectCollisions}
}

// Builder turns mapping documents into Tables.
type Builder struct {
	opts  Options
	files []*mapping.File
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Add queues documents. Later documents override earlier ones.
func (b *Builder) Add(files ...*mapping.File) {
	b.files = append(b.files, files...)
}

// Reset drops all queued documents so the builder can be reused.
func (b *Builder) Reset() {
	b.files = nil
}

// Build validates every queued document and builds the tables. Validation
// errors, malformed types and rejected collisions abort the build; the
// returned diagnostics describe them either way.
func (b *Builder) Build() (*Tables, *diagnostic.Diagnostics, error) {
	diags := &diagnostic.Diagnostics{}

	for _, f := range b.files {
		diags.Merge(*mapping.Validate(f))
	}

	if diags.HasErrors() {
		return nil, diags, fmt.Errorf("%w: %w", mapping.ErrMalformed, diags.Error())
	}

	tables := NewTables()

	if err := b.buildClasses(tables.Classes, diags); err != nil {
		return nil, diags, err
	}

	for _, f := range b.files {
		if err := b.buildMembers(tables, f, diags); err != nil {
			return nil, diags, err
		}
	}

	return tables, diags, nil
}

// scope carries the old internal name of one declaration and of its
// enclosing class. Depth is zero for top-level classes.
type scope struct {
	decl     *mapping.ClassDecl
	oldName  string
	oldOuter string
	depth    int
}

// walk visits every class declaration in document order, nested scopes
// after their enclosing class.
func walk(f *mapping.File, visit func(s scope) error) error {
	var rec func(decl *mapping.ClassDecl, oldOuter string, depth int) error

	rec = func(decl *mapping.ClassDecl, oldOuter string, depth int) error {
		s := scope{decl: decl, oldOuter: oldOuter, depth: depth}
		if oldOuter == "" {
			s.oldName = common.InternalName(decl.Old)
		} else {
			s.oldName = oldOuter + common.InnerSeparator + decl.Old
		}

		if err := visit(s); err != nil {
			return err
		}

		for i := range decl.Classes {
			if err := rec(&decl.Classes[i], s.oldName, depth+1); err != nil {
				return err
			}
		}

		return nil
	}

	for i := range f.Classes {
		if err := rec(&f.Classes[i], "", 0); err != nil {
			return err
		}
	}

	return nil
}

// buildClasses fills the class table one nesting level at a time across all
// documents, so a nested target is always appended to the final name of its
// enclosing class even when a later document redeclares that class.
func (b *Builder) buildClasses(classes *ClassTable, diags *diagnostic.Diagnostics) error {
	for depth := 0; ; depth++ {
		seen := false

		for _, f := range b.files {
			err := walk(f, func(s scope) error {
				if s.depth != depth {
					return nil
				}

				seen = true

				return b.putClass(classes, f.Name, s, diags)
			})
			if err != nil {
				return err
			}
		}

		if !seen {
			return nil
		}
	}
}

func (b *Builder) putClass(classes *ClassTable, file string, s scope, diags *diagnostic.Diagnostics) error {
	newName := common.InternalName(s.decl.Target())
	if s.oldOuter != "" {
		newName = classes.Map(s.oldOuter) + common.InnerSeparator + s.decl.Target()
	}

	if s.oldName == newName {
		return nil
	}

	loc := declLocation(file, s.decl.Pos)

	if prev, ok := classes.Get(s.oldName); ok && prev != newName {
		diags.AddInfo("class_rule_overridden",
			fmt.Sprintf("%s now maps to %s instead of %s", s.oldName, newName, prev), s.oldName, loc)
	}

	displaced, err := classes.Put(s.oldName, newName, b.opts.OnCollision)
	if err != nil {
		diags.AddError("rule_collision", err.Error(), newName, loc)
		return fmt.Errorf("%s: %w", loc, err)
	}

	if displaced != "" {
		diags.AddWarning("rule_collision",
			fmt.Sprintf("rule %s -> %s replaced by %s -> %s", displaced, newName, s.oldName, newName), newName, loc)
	}

	return nil
}

// buildMembers runs after the class table is complete. New-side owners and
// descriptors are taken from that table rather than from the declaration.
func (b *Builder) buildMembers(tables *Tables, f *mapping.File, diags *diagnostic.Diagnostics) error {
	return walk(f, func(s scope) error {
		newOwner := tables.Classes.Map(s.oldName)

		for i := range s.decl.Fields {
			fd := &s.decl.Fields[i]
			if fd.New == "" {
				continue
			}

			loc := declLocation(f.Name, fd.Pos)

			oldDesc, err := descriptor.Render(fd.Type, descriptor.ToOldNames, tables.Classes)
			if err != nil {
				return fmt.Errorf("%w: %s: field %s.%s: %w", mapping.ErrMalformed, loc, s.oldName, fd.Old, err)
			}

			newDesc, err := descriptor.Render(fd.Type, descriptor.ToNewNames, tables.Classes)
			if err != nil {
				return fmt.Errorf("%w: %s: field %s.%s: %w", mapping.ErrMalformed, loc, s.oldName, fd.Old, err)
			}

			putMember(tables.Fields, diags, loc,
				MemberKey{Owner: s.oldName, Name: fd.Old, Desc: oldDesc},
				MemberKey{Owner: newOwner, Name: fd.New, Desc: newDesc})
		}

		for i := range s.decl.Methods {
			md := &s.decl.Methods[i]
			if md.New == "" {
				continue
			}

			loc := declLocation(f.Name, md.Pos)

			oldDesc, err := descriptor.RenderMethod(md.Params, md.Result, descriptor.ToOldNames, tables.Classes)
			if err != nil {
				return fmt.Errorf("%w: %s: method %s.%s: %w", mapping.ErrMalformed, loc, s.oldName, md.Old, err)
			}

			newDesc, err := descriptor.RenderMethod(md.Params, md.Result, descriptor.ToNewNames, tables.Classes)
			if err != nil {
				return fmt.Errorf("%w: %s: method %s.%s: %w", mapping.ErrMalformed, loc, s.oldName, md.Old, err)
			}

			putMember(tables.Methods, diags, loc,
				MemberKey{Owner: s.oldName, Name: md.Old, Desc: oldDesc},
				MemberKey{Owner: newOwner, Name: md.New, Desc: newDesc})
		}

		return nil
	})
}

func putMember(t *MemberTable, diags *diagnostic.Diagnostics, loc string, oldKey, newKey MemberKey) {
	if prev, replaced := t.Put(oldKey, newKey); replaced && prev != newKey {
		diags.AddInfo("member_rule_overridden",
			fmt.Sprintf("%s now maps to %s instead of %s", oldKey, newKey.Name, prev.Name), oldKey.Owner, loc)
	}
}

func declLocation(file string, pos mapping.Pos) string {
	switch {
	case !pos.IsValid():
		return file
	case file == "":
		return pos.String()
	default:
		return file + ":" + pos.String()
	}
}
