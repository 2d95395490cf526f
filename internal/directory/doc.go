// Package directory holds the process-lifetime login directory: a
// reader/writer-locked map from loginname to login state. Entries are created
// on first login and never removed; logout flips a flag. Iteration order is
// lexicographic by loginname and stable across calls.
package directory
