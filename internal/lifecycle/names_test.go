// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"regexp"
	"testing"
)

var namePattern = regexp.MustCompile(`^podsmith-\d+-[a-z0-9]{8}$`)

func TestGenerateNameFormat(t *testing.T) {
	for range 10 {
		name := GenerateName("podsmith")
		if !namePattern.MatchString(name) {
			t.Errorf("GenerateName() = %q, want prefix-timestamp-suffix form", name)
		}
	}
}

func TestGenerateNameUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		name := GenerateName("podsmith")
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate generated name %q", name)
		}
		seen[name] = struct{}{}
	}
}
