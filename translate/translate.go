// Package translate renders user visible messages in the host locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// DEFAULT_LOCALE is used when the host locale cannot be determined.
const DEFAULT_LOCALE = "en-US"

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("chip8: locale: %v", err)
	}

	printer = newPrinter(locales)
}

// newPrinter selects the best match of the locales, or DEFAULT_LOCALE.
func newPrinter(locales []string) *message.Printer {
	if len(locales) == 0 {
		locales = []string{DEFAULT_LOCALE}
	}

	return message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
