package discord

import (
	"testing"
	"time"
)

func TestSnowflakeTime(t *testing.T) {
	const value Snowflake = 175928847299117063
	expect := time.Date(2016, 4, 30, 11, 18, 25, 796*int(time.Millisecond), time.UTC)

	if ts := value.Time(); !ts.Equal(expect) {
		t.Fatalf("unexpected time: want %s, got %s", expect, ts)
	}
}

func TestParseSnowflake(t *testing.T) {
	s, err := ParseSnowflake("175928847299117063")
	if err != nil {
		t.Fatalf("failed to parse snowflake: %v", err)
	}
	if s != 175928847299117063 {
		t.Fatalf("unexpected value: %d", s)
	}

	if s, err := ParseSnowflake(""); err != nil || s != NullSnowflake {
		t.Fatalf("empty string should parse to NullSnowflake, got %d, err %v", s, err)
	}
}

func TestSnowflakeIsValid(t *testing.T) {
	if NullSnowflake.IsValid() {
		t.Fatal("NullSnowflake must not be valid")
	}
	if !Snowflake(123).IsValid() {
		t.Fatal("123 must be valid")
	}
}

// TestShardForStability checks that ShardFor always returns an integer in
// [0, N), and that two guilds with an equal (id >> 22) mod N route to the
// same shard.
func TestShardForStability(t *testing.T) {
	const n = 4
	ids := []Snowflake{123456789012582400, 1, 2, 1 << 22, (1 << 22) + n<<22}

	for _, id := range ids {
		shard := id.ShardFor(n)
		if shard < 0 || shard >= n {
			t.Fatalf("ShardFor(%d, %d) = %d out of range", id, n, shard)
		}
	}

	a := Snowflake(1 << 22)
	b := a + (n << 22) // same (id>>22) mod n
	if a.ShardFor(n) != b.ShardFor(n) {
		t.Fatalf("expected equal routing for %d and %d", a, b)
	}
}

func TestSnowflakeOlderThan(t *testing.T) {
	now := time.Now()
	old := NewSnowflakeAt(now.Add(-20 * 24 * time.Hour))
	fresh := NewSnowflakeAt(now.Add(-1 * time.Hour))

	if !old.OlderThan(now, 14*24*time.Hour) {
		t.Fatal("expected 20-day-old snowflake to be older than 14 days")
	}
	if fresh.OlderThan(now, 14*24*time.Hour) {
		t.Fatal("expected 1-hour-old snowflake to not be older than 14 days")
	}
}

// NewSnowflakeAt constructs a synthetic snowflake whose Time() is t. Only
// used by tests; production code never fabricates IDs.
func NewSnowflakeAt(t time.Time) Snowflake {
	ms := t.UnixNano()/int64(time.Millisecond) - Epoch
	return Snowflake(ms << 22)
}
