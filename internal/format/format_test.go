package format_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/aescanero/dago-interpolate/internal/format"
)

func TestParseCulture(t *testing.T) {
	tag, err := format.ParseCulture("")
	require.NoError(t, err)
	assert.Equal(t, language.English, tag)

	tag, err = format.ParseCulture("de-DE")
	require.NoError(t, err)
	assert.Equal(t, "de-DE", tag.String())

	_, err = format.ParseCulture("not a culture")
	assert.Error(t, err)
}

func TestApply_Alignment(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		alignment int
		want      string
	}{
		{"right align", 42, 10, "        42"},
		{"left align", 42, -10, "42        "},
		{"width already met", "abcdef", 3, "abcdef"},
		{"nil renders empty but aligned", nil, 4, "    "},
		{"runes not bytes", "héllo", 7, "  héllo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := format.Apply(tt.value, tt.alignment, true, "", language.English)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_NumericSpecifiers(t *testing.T) {
	tests := []struct {
		name  string
		value any
		spec  string
		want  string
	}{
		{"F default two decimals", 1234.5, "F", "1234.50"},
		{"F1", 1234.56, "F1", "1234.6"},
		{"F0 integer value", 42, "F0", "42"},
		{"N groups thousands", 1234567, "N0", "1,234,567"},
		{"N2", 1234.5, "N2", "1,234.50"},
		{"P0", 0.5, "P0", "50%"},
		{"P1", 0.855, "P1", "85.5%"},
		{"D pads", 42, "D5", "00042"},
		{"D plain", 42, "D", "42"},
		{"X uppercase hex", 255, "X", "FF"},
		{"X4 padded", 255, "X4", "00FF"},
		{"x lowercase hex", 255, "x", "ff"},
		{"E scientific", 1234.5, "E2", "1.23E+03"},
		{"G shortest", 1234.5, "G", "1234.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := format.Apply(tt.value, 0, false, tt.spec, language.English)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_DateSpecifiers(t *testing.T) {
	ts := time.Date(2026, time.March, 7, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		spec string
		want string
	}{
		{"yyyy-MM-dd", "2026-03-07"},
		{"dd/MM/yyyy", "07/03/2026"},
		{"HH:mm:ss", "15:04:05"},
		{"MMM d, yyyy", "Mar 7, 2026"},
		{"2006-01-02", "2026-03-07"}, // Go reference layouts pass through
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := format.Apply(ts, 0, false, tt.spec, language.English)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_AlignmentWithFormat(t *testing.T) {
	got, err := format.Apply(1234.5, 12, true, "N2", language.English)
	require.NoError(t, err)
	assert.Equal(t, "    1,234.50", got)
}

type temperature float64

func (t temperature) FormatValue(spec string, culture language.Tag) (string, error) {
	if spec != "unit" {
		return "", assert.AnError
	}
	return "21.5°C", nil
}

func TestApply_Formattable(t *testing.T) {
	got, err := format.Apply(temperature(21.5), 0, false, "unit", language.English)
	require.NoError(t, err)
	assert.Equal(t, "21.5°C", got)

	// A failing Formattable degrades to the default rendering and reports
	// the error.
	got, err = format.Apply(temperature(21.5), 0, false, "bogus", language.English)
	var ferr *format.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "21.5", got)
}

func TestApply_DegradesOnBadSpecifier(t *testing.T) {
	// Unknown specifiers return the default rendering along with the error
	// so the caller picks its posture.
	got, err := format.Apply(42, 0, false, "Q9", language.English)
	var ferr *format.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "42", got)
	assert.Equal(t, "Q9", ferr.Spec)

	// The degraded rendering is still aligned.
	got, err = format.Apply(42, 6, true, "Q9", language.English)
	require.Error(t, err)
	assert.Equal(t, "    42", got)

	// D on a float is a specifier error.
	_, err = format.Apply(1.5, 0, false, "D2", language.English)
	assert.ErrorAs(t, err, &ferr)
}

func TestApply_VerbSpecifier(t *testing.T) {
	got, err := format.Apply("abc", 0, false, "%q", language.English)
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, got)
}

func TestDefault(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "s", "s"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"float", 2.5, "2.5"},
		{"float drops trailing zeros", 10.0, "10"},
		{"time", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), "2026-01-02T03:04:05Z"},
		{"slice", []int{1, 2}, "[1 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format.Default(tt.value))
		})
	}
}
