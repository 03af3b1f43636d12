// Package fs abstracts the file operations behind the persistence helpers
// so tests can inject write, sync and close failures.
package fs
