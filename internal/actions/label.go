package actions

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayLabel turns a label key such as "Reply_in_direct_message" into
// display text. Casers keep state, so one is built per call.
func DisplayLabel(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}
