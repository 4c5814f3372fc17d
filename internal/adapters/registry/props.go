package registry

import "time"

// Typed property accessors. Each returns its type's zero value when the
// property is absent, empty, or of another type - a malformed field never
// fails the record, let alone the page.

// Text extracts the plain text of a title or rich-text property.
func Text(rec Record, name string) string {
	prop, ok := rec.Properties[name]
	if !ok {
		return ""
	}
	switch prop.Type {
	case "title":
		if len(prop.Title) > 0 {
			return prop.Title[0].PlainText
		}
	case "rich_text":
		if len(prop.RichText) > 0 {
			return prop.RichText[0].PlainText
		}
	}
	return ""
}

// Checkbox extracts a boolean property, defaulting to false.
func Checkbox(rec Record, name string) bool {
	prop, ok := rec.Properties[name]
	if !ok || prop.Type != "checkbox" || prop.Checkbox == nil {
		return false
	}
	return *prop.Checkbox
}

// Date extracts a date property's start time, or nil when absent or
// unparseable.
func Date(rec Record, name string) *time.Time {
	prop, ok := rec.Properties[name]
	if !ok || prop.Type != "date" || prop.Date == nil || prop.Date.Start == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, prop.Date.Start)
	if err != nil {
		return nil
	}
	return &t
}

// Email extracts an email property, defaulting to empty.
func Email(rec Record, name string) string {
	prop, ok := rec.Properties[name]
	if !ok || prop.Type != "email" || prop.Email == nil {
		return ""
	}
	return *prop.Email
}

// URL extracts a url property, defaulting to empty.
func URL(rec Record, name string) string {
	prop, ok := rec.Properties[name]
	if !ok || prop.Type != "url" || prop.URL == nil {
		return ""
	}
	return *prop.URL
}

// RelationIDs extracts the related page ids of a relation property,
// defaulting to an empty list.
func RelationIDs(rec Record, name string) []string {
	prop, ok := rec.Properties[name]
	if !ok || prop.Type != "relation" {
		return nil
	}
	ids := make([]string, 0, len(prop.Relation))
	for _, ref := range prop.Relation {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}
