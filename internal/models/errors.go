package models

import "errors"

// Error taxonomy. Form-level errors abort that form's operation and surface
// in its result entry; record-level errors are logged, skipped, and left for
// the next idempotent run to heal.
var (
	// ErrFormNotFound indicates no form with the given external id exists
	// in the registry. Fatal to the single form's operation.
	ErrFormNotFound = errors.New("form not found")

	// ErrRegistryUnavailable indicates the registry transport itself failed
	// (non-recoverable status, auth failure). The whole operation for the
	// current form is aborted; a retry is safe because every operation is
	// idempotent.
	ErrRegistryUnavailable = errors.New("registry unavailable")

	// ErrGatewayUnavailable indicates the gateway call failed or returned a
	// payload that could not be interpreted. Callers treat this as "no new
	// information", never as "no one answered".
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// ErrRecordWriteFailed indicates a single record update or creation
	// failed. Never aborts the surrounding batch.
	ErrRecordWriteFailed = errors.New("record write failed")

	// ErrChannelSendFailed indicates one notification delivery failed. The
	// record's last-reminder timestamp is left unchanged so the next
	// dispatch run retries automatically.
	ErrChannelSendFailed = errors.New("channel send failed")
)
