// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Quote shell-escapes a single value so it can be embedded in a command
// string. Every externally-supplied value (names, paths, ports, env values)
// must pass through here before concatenation; unescaped interpolation of
// untrusted input into a command line is a correctness bug, not a style
// issue.
func Quote(value string) string {
	quoted, err := syntax.Quote(value, syntax.LangPOSIX)
	if err != nil {
		// Control bytes the POSIX grammar cannot represent: fall back to
		// single quotes with embedded quotes escaped.
		return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
	}
	return quoted
}

// QuoteAll escapes each value and joins them with spaces.
func QuoteAll(values ...string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = Quote(v)
	}
	return strings.Join(quoted, " ")
}
