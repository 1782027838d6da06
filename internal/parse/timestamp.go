package parse

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/tidwall/gjson"
)

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	// ISO8601 without timezone
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

// timestampField reads the first usable timestamp among paths, accepting
// either an ISO string or a unix epoch number (seconds or milliseconds).
func timestampField(doc gjson.Result, paths ...string) time.Time {
	for _, p := range paths {
		v := doc.Get(p)
		switch v.Type {
		case gjson.String:
			if t := parseTimestamp(v.Str); !t.IsZero() {
				return t
			}
		case gjson.Number:
			n := int64(v.Num)
			if n <= 0 {
				continue
			}
			if n > 1e12 {
				return time.UnixMilli(n).UTC()
			}
			return time.Unix(n, 0).UTC()
		}
	}
	return time.Time{}
}

// deterministicID derives a stable identifier from a format-specific seed,
// so reparsing identical bytes yields identical ids.
func deterministicID(format, seed string) string {
	sum := sha256.Sum256([]byte(format + "\x00" + seed))
	return hex.EncodeToString(sum[:])[:16]
}
