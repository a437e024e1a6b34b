// Package session holds the per-user search state: the query being edited,
// the lifecycle of the last search and the results it produced.
//
// A Session is made of three parts. The InputCollector owns the text and
// the selected image (and the image's preview URI). The Orchestrator runs a
// search and maps its outcome to results or a user-facing message. The
// Presenter keeps the result set and the load state of every thumbnail.
//
// All methods on Session are safe for concurrent use. The remote call made
// by Search runs without holding the session lock, so edits and new
// searches are accepted while a search is in flight.
package session
