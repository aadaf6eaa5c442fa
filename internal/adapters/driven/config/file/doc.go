// Package file persists configuration as a TOML file in the data
// directory. Dotted keys map to TOML tables on disk, so the file
// stays hand-editable; writes are atomic (temp file then rename) and
// 0600 because the file may hold an API key.
package file
