package domain

import "errors"

// Extraction service error taxonomy. Quota and missing-key failures are
// kept distinct from "no usable data" so the UI can tell the user to
// retry later instead of treating them as a data problem.
var (
	ErrAPIKeyMissing    = errors.New("extraction api key missing")
	ErrQuotaExceeded    = errors.New("extraction quota exceeded")
	ErrModelNotFound    = errors.New("extraction model not found")
	ErrExtractionFailed = errors.New("extraction produced no usable data")
)

// ErrUnauthorized is returned when the fitness platform rejects an
// access token. It triggers one forced refresh attempt in the sync
// path; a second rejection skips the cycle.
var ErrUnauthorized = errors.New("provider rejected access token")

// ErrNotFound covers lookups by id across both stores.
var ErrNotFound = errors.New("not found")

// ErrRemoteWrite marks a save that reached the local cache but not the
// remote store. The cache is ahead; callers warn instead of rolling
// back. An error without this mark means nothing was written at all.
var ErrRemoteWrite = errors.New("remote store write failed")
