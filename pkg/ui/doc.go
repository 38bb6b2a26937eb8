// Package ui holds wowprofile's terminal output: the banner, styled status
// messages, per-collection progress lines and desktop notifications.
//
// Output goes to stdout unless redirected with SetOutput. SetQuiet keeps
// only errors; SetNoColor drops styling.
package ui
