// SPDX-License-Identifier: MPL-2.0

// Package transport provides a uniform command-execution abstraction over
// local process spawning and remote SSH sessions.
//
// Every command runs through a Transport, which never returns a Go error:
// all failures, including transport-level ones, surface as a Result with a
// negative exit code and a description in Stderr. This keeps callers on a
// single code path whether the command ran as local root, local non-root
// (privilege escalation prepended), or on a remote host.
package transport
