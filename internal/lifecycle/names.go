// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"
)

const (
	nameSuffixLength  = 8
	nameSuffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateName produces a container name of the form
// <prefix>-<unix-timestamp>-<8 random lowercase alphanumerics>. Collisions
// are treated as negligible, not handled.
func GenerateName(prefix string) string {
	buf := make([]byte, nameSuffixLength)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		// The system entropy source is gone; a nanosecond-derived suffix
		// still keeps names distinct in practice.
		return fmt.Sprintf("%s-%d-%08x", prefix, time.Now().Unix(), time.Now().UnixNano()&0xffffffff)
	}
	for i := range buf {
		buf[i] = nameSuffixCharset[int(buf[i])%len(nameSuffixCharset)]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().Unix(), buf)
}
