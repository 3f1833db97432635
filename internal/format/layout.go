package format

import "strings"

// layoutTokens maps date-pattern tokens to Go reference-layout fragments,
// longest token first so "yyyy" never half-matches as "yy".
var layoutTokens = []struct {
	pattern string
	layout  string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"dd", "02"},
	{"d", "2"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"fff", "000"},
	{"ff", "00"},
	{"f", "0"},
	{"tt", "PM"},
	{"zzz", "-07:00"},
	{"zz", "-07"},
	{"z", "-7"},
}

// goLayoutHints mark a specifier already written as a Go reference layout.
var goLayoutHints = []string{"2006", "15:04", "Jan", "Monday", "-07"}

// timeLayout converts a date-pattern specifier into a Go layout. Specifiers
// already in Go reference form are used verbatim.
func timeLayout(spec string) string {
	for _, hint := range goLayoutHints {
		if strings.Contains(spec, hint) {
			return spec
		}
	}

	var b strings.Builder
	i := 0
	for i < len(spec) {
		matched := false
		for _, t := range layoutTokens {
			if strings.HasPrefix(spec[i:], t.pattern) {
				b.WriteString(t.layout)
				i += len(t.pattern)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(spec[i])
			i++
		}
	}
	return b.String()
}
