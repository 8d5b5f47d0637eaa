package mapping

import (
	"fmt"

	"class-remapper/internal/diagnostic"
)

// Validate checks a parsed document for structural problems the parsers do
// not reject on their own (the YAML front end accepts any strings). It does
// not look at rule collisions; those need the class table and are reported
// by the table builder.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("mapping_is_nil", "mapping file is nil", "", "")
		return res
	}

	for i := range f.Classes {
		validateClass(res, f.Name, &f.Classes[i], "", true)
	}

	return res
}

func validateClass(res *diagnostic.Diagnostics, file string, c *ClassDecl, outer string, topLevel bool) {
	loc := location(file, c.Pos)
	subject := c.Old

	if outer != "" {
		subject = outer + "$" + c.Old
	}

	validName := IsIdent
	if topLevel {
		validName = IsQualifiedIdent
	}

	if !validName(c.Old) {
		res.AddError("invalid_class_name", fmt.Sprintf("invalid class name %q", c.Old), subject, loc)
	}

	if c.New != "" && !validName(c.New) {
		res.AddError("invalid_class_name", fmt.Sprintf("invalid new class name %q", c.New), subject, loc)
	}

	seenFields := map[string]struct{}{}

	for i := range c.Fields {
		fd := &c.Fields[i]
		floc := location(file, fd.Pos)

		validateMemberNames(res, fd.Old, fd.New, subject, floc)

		if fd.Type == nil {
			res.AddError("missing_type", fmt.Sprintf("field %s has no type", fd.Old), subject, floc)
		} else {
			validateType(res, fd.Type, subject, floc)
		}

		key := fd.Old + ":" + TypeString(fd.Type)
		if _, ok := seenFields[key]; ok {
			res.AddWarning("duplicate_field", fmt.Sprintf("field %s declared twice; the later rule wins", key), subject, floc)
		}

		seenFields[key] = struct{}{}
	}

	seenMethods := map[string]struct{}{}

	for i := range c.Methods {
		md := &c.Methods[i]
		mloc := location(file, md.Pos)

		validateMemberNames(res, md.Old, md.New, subject, mloc)

		for _, p := range md.Params {
			if p == nil {
				res.AddError("missing_type", fmt.Sprintf("method %s has a void parameter", md.Old), subject, mloc)
				continue
			}

			validateType(res, p, subject, mloc)
		}

		if md.Result != nil {
			validateType(res, md.Result, subject, mloc)
		}

		sig := md.Signature()
		if _, ok := seenMethods[sig]; ok {
			res.AddWarning("duplicate_method", fmt.Sprintf("method %s declared twice; the later rule wins", sig), subject, mloc)
		}

		seenMethods[sig] = struct{}{}
	}

	for i := range c.Classes {
		validateClass(res, file, &c.Classes[i], subject, false)
	}
}

func validateMemberNames(res *diagnostic.Diagnostics, oldName, newName, subject, loc string) {
	if !IsIdent(oldName) {
		res.AddError("invalid_member_name", fmt.Sprintf("invalid member name %q", oldName), subject, loc)
	}

	if newName != "" && !IsIdent(newName) {
		res.AddError("invalid_member_name", fmt.Sprintf("invalid new member name %q", newName), subject, loc)
	}
}

func validateType(res *diagnostic.Diagnostics, t Type, subject, loc string) {
	switch tt := t.(type) {
	case Primitive:
		if !IsPrimitive(tt.Name) {
			res.AddError("unknown_primitive", fmt.Sprintf("unknown primitive type %q", tt.Name), subject, loc)
		}
	case ClassType:
		if !IsQualifiedIdent(tt.Name) {
			res.AddError("invalid_type_name", fmt.Sprintf("invalid class type %q", tt.Name), subject, loc)
		}
	case ArrayType:
		if tt.Elem == nil {
			res.AddError("invalid_array", "array type has no element type", subject, loc)
			return
		}

		validateType(res, tt.Elem, subject, loc)
	default:
		res.AddError("unknown_type_node", fmt.Sprintf("unrecognized type node %T", t), subject, loc)
	}
}

func location(file string, pos Pos) string {
	switch {
	case !pos.IsValid():
		return file
	case file == "":
		return pos.String()
	default:
		return file + ":" + pos.String()
	}
}
