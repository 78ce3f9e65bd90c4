// Package driving defines the inbound ports of the core: the contracts
// a host (CLI, automation runtime) calls the core through.
package driving
