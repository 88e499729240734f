// internal/webhook/requestid.go
package webhook

import (
	"math/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	seqWidth     = 4
	randWidth    = 5
	seqModulus   = 36 * 36 * 36 * 36
)

var requestSeq atomic.Uint64

// newRequestID returns "<epoch-ms>-<9 base36 chars>". The first four chars
// come from a process-wide counter, so ids minted in the same millisecond
// never collide; the last five are random.
func newRequestID(now time.Time) string {
	seq := requestSeq.Add(1) % seqModulus

	var b strings.Builder
	b.Grow(24)
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('-')

	s := strconv.FormatUint(seq, 36)
	b.WriteString(strings.Repeat("0", seqWidth-len(s)))
	b.WriteString(s)

	for i := 0; i < randWidth; i++ {
		b.WriteByte(base36Digits[rand.Intn(len(base36Digits))])
	}
	return b.String()
}
