// Package logging is the structured logging seam of picalc. Components that
// log through an interface (the HTTP server) take a Logger; library
// packages take a zerolog.Logger directly.
package logging
