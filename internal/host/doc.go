// Package host models the host runtime's module-loading subsystem on the
// Go side. It merges the catalogs of one or more bridge packages, performs
// eager initialization at boot, and keeps exactly one live instance per
// module and application context.
//
// The registry's resolver constructs a new instance on every call; the
// per-context instance cache here is where single instantiation is enforced.
package host
