// Package app contains the composition root. It owns the registry, the
// built bridge package, the host and the application context, and wires
// them together explicitly; nothing is kept in package-level state. It is
// decoupled from any specific entrypoint like a CLI or server.
package app
