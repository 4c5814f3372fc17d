package registry

import (
	"testing"
	"time"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestText(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "title property",
			rec: Record{Properties: map[string]Property{
				"Name": {Type: "title", Title: []TextFragment{{PlainText: "Alice"}}},
			}},
			want: "Alice",
		},
		{
			name: "rich text property",
			rec: Record{Properties: map[string]Property{
				"Name": {Type: "rich_text", RichText: []TextFragment{{PlainText: "gf-123"}}},
			}},
			want: "gf-123",
		},
		{
			name: "absent property yields empty",
			rec:  Record{Properties: map[string]Property{}},
			want: "",
		},
		{
			name: "empty fragments yield empty",
			rec: Record{Properties: map[string]Property{
				"Name": {Type: "title"},
			}},
			want: "",
		},
		{
			name: "wrong type yields empty",
			rec: Record{Properties: map[string]Property{
				"Name": {Type: "checkbox", Checkbox: boolPtr(true)},
			}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.rec, "Name"); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckbox(t *testing.T) {
	rec := Record{Properties: map[string]Property{
		"Answered": {Type: "checkbox", Checkbox: boolPtr(true)},
		"Wrong":    {Type: "title"},
	}}

	if !Checkbox(rec, "Answered") {
		t.Error("Checkbox() = false for checked property")
	}
	if Checkbox(rec, "Missing") {
		t.Error("Checkbox() = true for absent property")
	}
	if Checkbox(rec, "Wrong") {
		t.Error("Checkbox() = true for non-checkbox property")
	}
}

func TestDate(t *testing.T) {
	rec := Record{Properties: map[string]Property{
		"Sent At": {Type: "date", Date: &DateValue{Start: "2026-02-14T10:00:00Z"}},
		"Bad":     {Type: "date", Date: &DateValue{Start: "not-a-date"}},
		"Empty":   {Type: "date"},
	}}

	got := Date(rec, "Sent At")
	if got == nil {
		t.Fatal("Date() = nil for valid date")
	}
	want := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Date() = %v, want %v", got, want)
	}

	if Date(rec, "Bad") != nil {
		t.Error("Date() != nil for unparseable value")
	}
	if Date(rec, "Empty") != nil {
		t.Error("Date() != nil for empty payload")
	}
	if Date(rec, "Missing") != nil {
		t.Error("Date() != nil for absent property")
	}
}

func TestEmailAndURL(t *testing.T) {
	rec := Record{Properties: map[string]Property{
		"Email": {Type: "email", Email: strPtr("Alice@Example.com")},
		"Link":  {Type: "url", URL: strPtr("https://forms.example.com/1")},
	}}

	if got := Email(rec, "Email"); got != "Alice@Example.com" {
		t.Errorf("Email() = %q", got)
	}
	if got := Email(rec, "Missing"); got != "" {
		t.Errorf("Email() = %q for absent property, want empty", got)
	}
	if got := URL(rec, "Link"); got != "https://forms.example.com/1" {
		t.Errorf("URL() = %q", got)
	}
	if got := URL(rec, "Missing"); got != "" {
		t.Errorf("URL() = %q for absent property, want empty", got)
	}
}

func TestRelationIDs(t *testing.T) {
	rec := Record{Properties: map[string]Property{
		"Person": {Type: "relation", Relation: []RelationRef{{ID: "p1"}, {ID: ""}, {ID: "p2"}}},
	}}

	got := RelationIDs(rec, "Person")
	if len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Errorf("RelationIDs() = %v, want [p1 p2]", got)
	}
	if RelationIDs(rec, "Missing") != nil {
		t.Error("RelationIDs() != nil for absent property")
	}
}
