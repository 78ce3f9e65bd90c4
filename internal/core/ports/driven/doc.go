// Package driven defines the outbound ports of the core: contracts the
// core calls out through, implemented by adapters (HTTP remote caller,
// config and state stores).
package driven
