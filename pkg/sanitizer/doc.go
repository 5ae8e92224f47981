// Package sanitizer normalizes request input before validation and storage.
//
// Every function is idempotent. Input that cannot be normalized is returned
// trimmed but otherwise unchanged, so validation still reports it.
package sanitizer
