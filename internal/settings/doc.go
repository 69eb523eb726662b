// Package settings holds the user-scoped values every API call depends on:
// the access token and the preferred distance unit system. The file-backed
// store keeps them in a small JSON document next to the binary and rewrites it
// atomically (temp file + rename) so a crash never leaves a truncated file.
package settings
