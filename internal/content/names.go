package content

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns a snake_case identifier into a presentation name:
// "worry_seed" -> "Worry Seed". A Caser is stateful, so one is built per call.
func DisplayName(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}
