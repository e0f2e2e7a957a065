package certificate

import "errors"

var (
	// ErrBusy is returned when an operation is refused because a batch run
	// is in flight
	ErrBusy = errors.New("a batch run is in progress")

	// ErrNoCredential is returned when processing starts without an API credential
	ErrNoCredential = errors.New("an API credential is required before processing")

	// ErrEmptyReferenceTable is returned when the pasted reference text
	// parses to zero usable entries
	ErrEmptyReferenceTable = errors.New("the reference table is empty or could not be parsed")

	// ErrNoQueuedFiles is returned when processing starts with nothing queued
	ErrNoQueuedFiles = errors.New("no files are queued for processing")

	// ErrNoCompletedFiles is returned when an export finds nothing to export
	ErrNoCompletedFiles = errors.New("no completed files are available for export")
)
