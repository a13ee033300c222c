// Package discord holds the identity and relational shape of the platform's
// domain entities: the snowflake ID scheme and the guild/channel/member/role/
// message/webhook/invite types the gateway and REST layers exchange. It does
// not model every field the real API returns, only what the gateway state
// machine, cache, and governor need to establish identity and ownership.
package discord

import (
	"strconv"
	"time"
)

// Epoch is the platform's custom epoch, in Unix milliseconds. A snowflake's
// top 42 bits are a millisecond timestamp offset from this epoch.
const Epoch int64 = 1420070400000

// Snowflake is a 64-bit platform-wide unique identifier. The top 42 bits
// encode a millisecond timestamp since Epoch; the low 22 bits encode worker,
// process, and increment fields that this module has no use for beyond the
// sharding and age-guard shifts.
type Snowflake uint64

// NullSnowflake is returned by lookups that found nothing; it is never a
// valid ID since real snowflakes always have a nonzero timestamp component.
const NullSnowflake Snowflake = 0

// ParseSnowflake parses a base-10 snowflake string.
func ParseSnowflake(s string) (Snowflake, error) {
	if s == "" {
		return NullSnowflake, nil
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return Snowflake(u), nil
}

// MarshalJSON encodes the snowflake as a JSON string, matching the wire
// format (IDs exceed float64's safe integer range).
func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(s), 10) + `"`), nil
}

// UnmarshalJSON accepts both a quoted string and a bare number, since some
// payloads (notably gateway IDENTIFY echoes) are inconsistent about quoting.
func (s *Snowflake) UnmarshalJSON(b []byte) error {
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		b = b[1 : len(b)-1]
	}
	if len(b) == 0 || string(b) == "null" {
		*s = NullSnowflake
		return nil
	}
	u, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return err
	}
	*s = Snowflake(u)
	return nil
}

func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// IsValid reports whether the snowflake is non-null.
func (s Snowflake) IsValid() bool {
	return s != NullSnowflake
}

// Time returns the creation timestamp encoded in the snowflake.
func (s Snowflake) Time() time.Time {
	ms := int64(s>>22) + Epoch
	return time.Unix(0, ms*int64(time.Millisecond))
}

// ShardFor returns (id >> 22) % n, the standard shard-routing formula. It
// panics if n <= 0, since that is always a caller bug.
func (s Snowflake) ShardFor(n int) int {
	if n <= 0 {
		panic("discord: ShardFor called with non-positive shard count")
	}
	return int((uint64(s) >> 22) % uint64(n))
}

// OlderThan reports whether the snowflake's embedded timestamp is older than
// d relative to now. It is used by the bulk-delete age guard (messages older
// than 14 days cannot be bulk-deleted).
func (s Snowflake) OlderThan(now time.Time, d time.Duration) bool {
	return now.Sub(s.Time()) > d
}
