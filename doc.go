// Package appstate mirrors remote authentication state into local
// application state and forwards the handful of database operations the
// web client needs (profile, donations, volunteer applications).
//
// Synchronizer lifecycle:
//   - Start performs the initial session lookup, fetches the profile when a
//     user is present, then consumes the backend's session-change stream for
//     the life of the process. Every change is applied by a single goroutine
//     so an in-flight profile fetch can never overwrite a newer one.
//   - Consumers read the four-field State (user, session, profile, loading)
//     via Snapshot or register an OnChange listener; Close releases the
//     session-change subscription.
//
// Error policy:
//   - Mutations return the backend's error, tagged with a go-errors
//     category (auth, validation, external) so callers can branch without
//     string matching.
//   - The two list reads degrade to an empty result and log the failure;
//     the UI at worst renders stale or empty data.
package appstate
