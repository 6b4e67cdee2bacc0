// Package daily keys the daily mode: which word a date gets, and who
// solved it.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// Picker maps a date and word length onto a pool index. The salt keeps the
// sequence unguessable from the word list alone.
type Picker struct{ salt []byte }

func NewPicker(salt string) Picker { return Picker{salt: []byte(salt)} }

// Index returns a position in a pool of n words for date and length. Each
// length gets its own sequence. It returns 0 for an empty pool.
func (p Picker) Index(date time.Time, length, n int) int {
	if n <= 0 {
		return 0
	}
	mac := hmac.New(sha256.New, p.salt)
	mac.Write([]byte(DateKey(date) + "/" + strconv.Itoa(length)))
	return int(binary.BigEndian.Uint64(mac.Sum(nil)) % uint64(n))
}
