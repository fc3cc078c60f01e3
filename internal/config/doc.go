// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as
// the file format.
//
// Configuration is loaded from ~/.config/podsmith/config.cue (or the XDG
// equivalent on Linux, ~/Library/Application Support/podsmith/config.cue on
// macOS, %APPDATA%\podsmith\config.cue on Windows), falling back to a
// config.cue in the current directory. Every file is validated against an
// embedded CUE schema before it reaches Viper, so type errors surface with
// the offending path rather than as a zero value downstream.
package config
