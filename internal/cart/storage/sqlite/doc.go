// Package sqlite persists cart slots in the panel's local SQLite file.
//
// Each slot row carries the same JSON envelope the browser panel writes
// to localStorage, so a slot can be exported or inspected with plain
// SQL tooling and stays compatible with the web client's layout.
package sqlite
