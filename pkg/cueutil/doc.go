// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE validation helpers.
//
// The config package validates its config.cue file against an embedded CUE
// schema; this package supplies the size guard applied before parsing and
// the error formatting that turns raw CUE errors into user-facing messages
// with JSON-path prefixes:
//
//	config.cue: ssh.port: expected int, got string
package cueutil
