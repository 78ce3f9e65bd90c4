// Package domain contains the core business types for pollbridge.
// Domain types are plain values with no external dependencies; all
// cross-invocation state (snapshots, credentials) is owned by the host
// and threaded through these types explicitly.
package domain
