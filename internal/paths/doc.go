// Package paths provides cross-platform path resolution for mimeo's own
// configuration and state directories.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for XDG Base Directory
// Specification compliance:
//
//	paths.ConfigDir() // ~/.config/mimeo
//	paths.LogDir()    // ~/.local/state/mimeo/logs
//
// # Home Expansion
//
// Rule files commonly reference paths relative to the home directory.
// [ExpandHome] expands a leading "~" or "~/":
//
//	paths.ExpandHome("~/Documents") // /home/alice/Documents
package paths
