// Package ytcomments extracts comment threads from YouTube's internal
// paginated comments API. It normalizes video URLs, bootstraps pagination
// from the watch-page initial state, reconciles the two wire encodings the
// API emits for comment records, and drives pagination to completion under
// explicit time and count budgets with partial-result semantics.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, innertube/, sqlite/).
package ytcomments
