// Package models contains the canonical record types shared across the
// application. Persons and forms live in the remote registry; response
// records are the join rows this engine creates and mutates.
package models

import (
	"strings"
	"time"
)

// Person is a tracked individual as stored in the registry's people
// collection. Maintained by an external system; this engine only reads it.
type Person struct {
	ID          string // registry page id
	DisplayName string
	Email       string // lower-cased, may be empty
	ChannelID   string // opaque notification endpoint id, may be empty
}

// FormDefinition describes one tracked form in the registry.
type FormDefinition struct {
	ID             string // registry page id
	ExternalFormID string // id used to query the gateway
	Title          string
	Link           string
	DispatchedAt   *time.Time // when the form was published, if recorded
}

// ResponseRecord tracks one person's answered/reminder state for one form.
// The answered flag is monotonic: once true it is never reset by this engine.
type ResponseRecord struct {
	ID             string // registry page id
	FormID         string
	PersonID       string
	Answered       bool
	AnsweredAt     *time.Time
	LastReminderAt *time.Time
}

// NormalizeEmail lower-cases and trims an email address. This is the single
// join key between gateway submissions and registry identities, so both
// sides must pass through here before comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
