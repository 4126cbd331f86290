// Package datetimeutil holds the four back-compatible datetime layouts the
// filter language accepts (spec §4.3), shared by the parser (for its
// literal-looking pre-check) and the typer (for actual coercion) so the
// two never drift apart.
package datetimeutil

import "time"

// Layouts are tried in order; all parse to a naive UTC instant.
var Layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000Z",
	"2006-01-02T15:04:05.000Z",
}

// Parse tries each accepted layout in turn and returns the first match.
func Parse(s string) (time.Time, bool) {
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
