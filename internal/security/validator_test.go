package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-interpolate/internal/security"
)

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]security.Level{
		"strict":      security.LevelStrict,
		"Moderate":    security.LevelModerate,
		" PERMISSIVE": security.LevelPermissive,
	} {
		got, err := security.ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := security.ParseLevel("paranoid")
	assert.Error(t, err)
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "strict", security.LevelStrict.String())
	assert.Equal(t, "moderate", security.LevelModerate.String())
	assert.Equal(t, "permissive", security.LevelPermissive.String())
}

func TestValidate_BaselineBlocklists(t *testing.T) {
	// Sandbox-escaping vocabulary is rejected at every level, including
	// Permissive.
	exprs := []string{
		`Process.Start("calc")`,
		"file.readalltext(p)",
		"socket.connect(host)",
		"x + environment.exit(1)",
		"while(true) x",
		"for(;;) x",
		"goto done",
		"unsafe { }",
	}
	levels := []security.Level{security.LevelStrict, security.LevelModerate, security.LevelPermissive}

	for _, expr := range exprs {
		for _, level := range levels {
			err := security.Validate(expr, level)
			var violation *security.ViolationError
			assert.ErrorAs(t, err, &violation, "%q at %s", expr, level)
		}
	}
}

func TestValidate_Limits(t *testing.T) {
	long := strings.Repeat("a+", 6000)
	err := security.Validate(long, security.LevelPermissive)
	var violation *security.ViolationError
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Reason, "exceeds")

	deep := strings.Repeat("(", 21) + "x" + strings.Repeat(")", 21)
	err = security.Validate(deep, security.LevelPermissive)
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Reason, "nesting")

	// Brackets inside string literals do not count toward the depth.
	quoted := `x + "` + strings.Repeat("(", 30) + `"`
	assert.NoError(t, security.Validate(quoted, security.LevelPermissive))
}

func TestValidate_IntrospectionMembers(t *testing.T) {
	// Reflection lookups are rejected under Strict and Moderate but admitted
	// under Permissive.
	expr := `"gettype" + "!"`

	var violation *security.ViolationError
	assert.ErrorAs(t, security.Validate(expr, security.LevelStrict), &violation)
	assert.ErrorAs(t, security.Validate(expr, security.LevelModerate), &violation)
	assert.NoError(t, security.Validate(expr, security.LevelPermissive))
}

func TestValidate_StrictRejectsCalls(t *testing.T) {
	tests := []struct {
		expr     string
		strictOK bool
	}{
		{"a + b * 2", true},
		{`age >= 18 ? "adult" : "minor"`, true},
		{"user.name", true},
		{"items[0]", true},
		{"items[^1]", true},
		{"x ?? y", true},
		{"items.count()", false},
		{"items.where(x => x > 1)", false},
		{`name.upper()`, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			err := security.Validate(tt.expr, security.LevelStrict)
			if tt.strictOK {
				assert.NoError(t, err)
			} else {
				var violation *security.ViolationError
				assert.ErrorAs(t, err, &violation)
			}

			// Everything in this table is legal under Moderate.
			assert.NoError(t, security.Validate(tt.expr, security.LevelModerate))
		})
	}
}

func TestValidate_TruncatesLongExpressions(t *testing.T) {
	expr := strings.Repeat("x", 200) + "process.start()"
	err := security.Validate(expr, security.LevelPermissive)
	var violation *security.ViolationError
	require.ErrorAs(t, err, &violation)
	assert.LessOrEqual(t, len(violation.Expr), 123)
	assert.True(t, strings.HasSuffix(violation.Expr, "..."))
}
