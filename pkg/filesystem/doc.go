// Package filesystem provides filesystem implementations for gather.
//
// This package contains implementations of the FS interface, the OS
// filesystem used in production and an afero-backed one for tests.
package filesystem
