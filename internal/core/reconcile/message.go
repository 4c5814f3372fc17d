package reconcile

import (
	"fmt"
	"strings"

	"github.com/example/rappel/internal/models"
)

// ComposeMessage builds the reminder text from form and person metadata.
// Pure function of its inputs - no network calls, no clock.
func ComposeMessage(form models.FormDefinition, person models.Person) string {
	var b strings.Builder

	name := strings.TrimSpace(person.DisplayName)
	if name != "" {
		fmt.Fprintf(&b, "Hello %s,\n\n", name)
	} else {
		b.WriteString("Hello,\n\n")
	}

	title := strings.TrimSpace(form.Title)
	if title == "" {
		title = form.ExternalFormID
	}
	fmt.Fprintf(&b, "Friendly reminder to fill in the form \"%s\"", title)
	if form.DispatchedAt != nil {
		fmt.Fprintf(&b, ", sent out on %s", form.DispatchedAt.Format("2 January 2006"))
	}
	b.WriteString(".")

	if link := strings.TrimSpace(form.Link); link != "" {
		fmt.Fprintf(&b, "\n\nForm link: %s", link)
	}

	b.WriteString("\n\nThank you!")
	return b.String()
}
