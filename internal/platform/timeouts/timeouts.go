// Package timeouts defines shared timeout constants used across the
// panel client. Centralizing these values prevents drift between the
// API client, the sync engine, and the CLI shutdown path.
package timeouts

import "time"

// HTTPRequest caps one round trip to the panel backend. Every remote
// cart call shares this single blanket timeout; a timed-out call is
// handled like any other remote failure.
const HTTPRequest = 30 * time.Second

// RemoteFlush limits how long the CLI waits for in-flight background
// cart writes before exiting.
const RemoteFlush = 5 * time.Second

// Shutdown limits graceful teardown of long-lived resources.
const Shutdown = 5 * time.Second
