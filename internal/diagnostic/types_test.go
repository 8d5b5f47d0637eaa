package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsBuckets(t *testing.T) {
	var d Diagnostics

	assert.True(t, d.IsValid())
	require.NoError(t, d.Error())

	d.AddInfo("identity_rule", "class maps to itself", "a/B", "")
	d.AddWarning("lib_load_failed", "corrupt archive", "libs/x.jar", "")
	d.AddError("rule_collision", "two classes map to x/Y", "x/Y", "m.map:3:1")

	assert.False(t, d.IsValid())
	assert.True(t, d.HasErrors())
	assert.Equal(t, 3, d.Len())

	all := d.All()
	require.Len(t, all, 3)
	assert.Equal(t, DiagnosticError, all[0].Severity)
	assert.Equal(t, DiagnosticWarning, all[1].Severity)
	assert.Equal(t, DiagnosticInfo, all[2].Severity)

	assert.EqualError(t, d.Error(), "m.map:3:1 [x/Y]: [rule_collision] two classes map to x/Y")
}

func TestDiagnosticsMergeAndAdd(t *testing.T) {
	var a, b Diagnostics

	a.AddWarning("w", "first", "", "")
	b.Add(Diagnostic{Severity: DiagnosticError, Code: "e", Message: "second"})
	b.Add(Diagnostic{Severity: DiagnosticInfo, Code: "i", Message: "third"})

	a.Merge(b)

	assert.Len(t, a.Errors, 1)
	assert.Len(t, a.Warnings, 1)
	assert.Len(t, a.Infos, 1)
}

func TestDiagnosticStringWithSuggestions(t *testing.T) {
	d := Diagnostic{
		Code:        "unknown_class",
		Message:     "class a/Foo not in container",
		Subject:     "a/Foo",
		Suggestions: []string{"a/Fooo", "a/Fop"},
	}

	assert.Equal(t, "[a/Foo]: [unknown_class] class a/Foo not in container (did you mean a/Fooo, a/Fop?)", d.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(42).String())
}

func TestDiagnosticsHasCode(t *testing.T) {
	var d Diagnostics

	assert.False(t, d.HasCode("class_rule_overridden"))

	d.AddInfo("class_rule_overridden", "a/b/C now maps to p/Q instead of x/y/Z", "a/b/C", "overlay.map:2:1")
	d.AddWarning("lib_load_failed", "zip: not a valid zip file", "libs/broken.jar", "")

	assert.True(t, d.HasCode("class_rule_overridden"))
	assert.True(t, d.HasCode("lib_load_failed"))
	assert.False(t, d.HasCode("rule_collision"))
}

func TestDiagnosticStringLayout(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{"message only", Diagnostic{Message: "no rules"}, "no rules"},
		{"location only", Diagnostic{Code: "member_rule_overridden", Message: "a/b/C.foo:I now maps to baz instead of bar", Location: "overlay.map:3:5"},
			"overlay.map:3:5: [member_rule_overridden] a/b/C.foo:I now maps to baz instead of bar"},
		{"entry and subject", Diagnostic{Code: "duplicate_entry", Message: "dropped", Subject: "x/y/Z.class", Location: "in.jar"},
			"in.jar [x/y/Z.class]: [duplicate_entry] dropped"},
		{"member suggestion", Diagnostic{Code: "unknown_field", Message: "no such field", Subject: "a/A.count:J", Suggestions: []string{"count:I"}},
			"[a/A.count:J]: [unknown_field] no such field (did you mean count:I?)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.diag.String())
		})
	}
}
