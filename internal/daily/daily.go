// Package daily derives the date-seeded secret for the daily game.
// Every daily session started on the same UTC date (and with the same salt
// and bound) shares one secret.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/hilo/apps/go-server/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Secret returns a deterministic value in [1, max] for a date using
// 1 + HMAC(salt, YYYY-MM-DD) % max.
func Secret(date time.Time, salt string, max int) int {
	if max <= 1 {
		return 1
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	n := binary.BigEndian.Uint64(sum[:8])
	return 1 + int(n%uint64(max))
}

// Source is a game.Source that always draws the secret for one date.
type Source struct {
	Date time.Time
	Salt string
}

// NewSource returns the daily Source for date.
func NewSource(date time.Time, salt string) game.Source {
	return Source{Date: date, Salt: salt}
}

func (s Source) Draw(max int) int {
	return Secret(s.Date, s.Salt, max)
}
