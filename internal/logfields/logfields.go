package logfields

import "github.com/rs/zerolog"

// Canonical log field names shared across packages.
const (
	KeyTemplate = "template"
	KeyOutput   = "output"
	KeyDir      = "dir"
	KeyPages    = "pages"
	KeyEngine   = "engine"
	KeyPath     = "path"
	KeyDuration = "duration_ms"
)

// Page attaches the template and output of a page to a log event.
func Page(ev *zerolog.Event, template, output string) *zerolog.Event {
	return ev.Str(KeyTemplate, template).Str(KeyOutput, output)
}
