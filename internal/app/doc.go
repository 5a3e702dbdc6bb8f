// Package app runs one balancing session: it loads a manifest, searches for
// a move plan, reports it and writes the outbound manifest. It is decoupled
// from the command line so tests can drive it directly.
package app
