// Package version holds the release version reported by the CLI and sent as
// part of the reader User-Agent.
package version

// Current is bumped on release.
const Current = "0.1.0"
