// Package storage is the session/event log: one row per daemon run and one
// row per notable ControlPlane event (trigger, capture,
// fault, presence change), so an operator can reconstruct what happened
// after the fact.
package storage

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
