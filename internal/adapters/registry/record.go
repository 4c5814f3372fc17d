// Package registry contains the HTTP adapter for the remote paginated
// registry holding people, form definitions, and response records.
package registry

// Record is one registry page as returned on the wire: an id plus a bag of
// typed properties keyed by name.
type Record struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// Property is one typed registry field. Exactly one of the value fields is
// populated, selected by Type. Extraction goes through the typed accessors
// in props.go, which default to zero values when a property is absent or of
// an unexpected type.
type Property struct {
	Type     string         `json:"type"`
	Title    []TextFragment `json:"title,omitempty"`
	RichText []TextFragment `json:"rich_text,omitempty"`
	Checkbox *bool          `json:"checkbox,omitempty"`
	Date     *DateValue     `json:"date,omitempty"`
	Email    *string        `json:"email,omitempty"`
	URL      *string        `json:"url,omitempty"`
	Relation []RelationRef  `json:"relation,omitempty"`
}

// TextFragment is one chunk of a title or rich-text property.
type TextFragment struct {
	PlainText string `json:"plain_text"`
}

// DateValue is the payload of a date property.
type DateValue struct {
	Start string `json:"start"`
}

// RelationRef points at a related registry page.
type RelationRef struct {
	ID string `json:"id"`
}

// Property names used by the three collections. Single source of truth for
// field naming, so a renamed registry column only touches this block.
const (
	propName         = "Name"
	propEmail        = "Email"
	propChannelID    = "Channel ID"
	propExternalForm = "Form ID"
	propLink         = "Link"
	propDispatchedAt = "Sent At"
	propFormRelation = "Form"
	propPersonRel    = "Person"
	propAnswered     = "Answered"
	propAnsweredAt   = "Answered At"
	propLastReminder = "Last Reminder"
)
