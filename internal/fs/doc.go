// Package fs abstracts the filesystem calls made by blobstore.LocalStore so
// tests can inject write, sync and rename failures.
//
// AtomicWrite is the only write path: temp file, sync, rename. FaultyFS wraps
// another FileSystem and fails operations on names containing a pattern.
//
// Calls take no context; local filesystem syscalls cannot be interrupted.
package fs
