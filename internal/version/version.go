// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Pose stream over WebSocket, offline frame rendering, flat view
// 0.2.0 - Zipline transitions, body focus, aspect resolution
// 0.1.0 - Initial release: spiral layout, house mapping, TUI, headless summary
