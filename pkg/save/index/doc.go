// Package index implements the persistent duplicate-URL index kept next to
// a save target. It maps a source URL to "<unix timestamp>#<file>" and is
// safe to share between concurrent process runs: every access takes an
// advisory file lock and the SQLite database is opened only for the
// duration of one check-and-record.
package index
