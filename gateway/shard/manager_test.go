package shard

import (
	"context"
	"testing"

	"github.com/riftcord/corebot/discord"
	"github.com/riftcord/corebot/gateway"
)

type fakeFetcher struct {
	info BotGatewayInfo
	err  error
}

func (f fakeFetcher) BotGateway(ctx context.Context) (BotGatewayInfo, error) {
	return f.info, f.err
}

func newTestManager(t *testing.T, numShards int) *Manager {
	t.Helper()

	fetch := fakeFetcher{info: BotGatewayInfo{
		URL:               "wss://gateway.example.com",
		RecommendedShards: 4,
		SessionStartLimit: SessionStartLimit{Total: 1000, Remaining: 1000, MaxConcurrency: 1},
	}}

	m, err := NewManager(context.Background(), "token", gateway.IntentGuilds, fetch, numShards)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManagerUsesRecommendedShards(t *testing.T) {
	m := newTestManager(t, 0)
	if got := m.NumShards(); got != 4 {
		t.Fatalf("expected 4 recommended shards, got %d", got)
	}
}

func TestNewManagerHonorsExplicitShardCount(t *testing.T) {
	m := newTestManager(t, 2)
	if got := m.NumShards(); got != 2 {
		t.Fatalf("expected 2 shards, got %d", got)
	}
}

// TestShardForGuildStable checks that the manager routes a given guild to
// the same shard every time, matching Snowflake.ShardFor directly.
func TestShardForGuildStable(t *testing.T) {
	m := newTestManager(t, 16)

	guildID := discord.Snowflake(175928847299117063)
	want := guildID.ShardFor(16)

	for i := 0; i < 5; i++ {
		s := m.ShardForGuild(guildID)
		if s == nil {
			t.Fatal("expected non-nil shard")
		}
		if s != m.Shard(want) {
			t.Fatalf("routing is unstable: expected shard %d", want)
		}
	}
}

func TestShardReturnsNilOutOfRange(t *testing.T) {
	m := newTestManager(t, 2)
	if m.Shard(-1) != nil || m.Shard(2) != nil {
		t.Fatal("expected nil for out-of-range shard IDs")
	}
}

func TestForEachVisitsEveryShard(t *testing.T) {
	m := newTestManager(t, 3)

	seen := make(map[int]bool)
	m.ForEach(func(s *gateway.Shard) {
		seen[s.ID()] = true
	})

	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct shards visited, got %d", len(seen))
	}
}

type fakeGuildMarker struct {
	markedShards []int
}

func (f *fakeGuildMarker) GuildSetUnavailableForShard(shardID int) error {
	f.markedShards = append(f.markedShards, shardID)
	return nil
}

// TestKillMarksState checks that Kill transitions the target shard to
// StateDead and reports its guilds unavailable through the injected marker,
// without touching any other shard.
func TestKillMarksState(t *testing.T) {
	marker := &fakeGuildMarker{}

	fetch := fakeFetcher{info: BotGatewayInfo{
		URL:               "wss://gateway.example.com",
		RecommendedShards: 2,
		SessionStartLimit: SessionStartLimit{Total: 1000, Remaining: 1000, MaxConcurrency: 1},
	}}
	m, err := NewManager(context.Background(), "token", gateway.IntentGuilds, fetch, 2,
		WithGuildUnavailableMarker(marker))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if err := m.Kill(0); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	if got := m.Shard(0).State(); got != gateway.StateDead {
		t.Fatalf("expected shard 0 to be dead, got %v", got)
	}
	if got := m.Shard(1).State(); got == gateway.StateDead {
		t.Fatal("expected shard 1 to be unaffected by killing shard 0")
	}
	if len(marker.markedShards) != 1 || marker.markedShards[0] != 0 {
		t.Fatalf("expected shard 0 to be marked unavailable exactly once, got %v", marker.markedShards)
	}
}

func TestKillUnknownShardErrors(t *testing.T) {
	m := newTestManager(t, 2)
	if err := m.Kill(5); err == nil {
		t.Fatal("expected an error killing an out-of-range shard")
	}
}

// TestSpawnReplacesSlot checks that Spawn installs a fresh Shard object in
// the same slot after Kill, rather than reviving the dead one.
func TestSpawnReplacesSlot(t *testing.T) {
	m := newTestManager(t, 2)

	old := m.Shard(1)
	if err := m.Kill(1); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	if err := m.Spawn(1); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	replacement := m.Shard(1)
	if replacement == old {
		t.Fatal("expected Spawn to install a new Shard instance")
	}
	if replacement.ID() != 1 {
		t.Fatalf("expected replacement to keep shard ID 1, got %d", replacement.ID())
	}
	if replacement.State() == gateway.StateDead {
		t.Fatal("expected the replacement shard to start out of the dead state")
	}
}

func TestSpawnOutOfRangeErrors(t *testing.T) {
	m := newTestManager(t, 2)
	if err := m.Spawn(5); err == nil {
		t.Fatal("expected an error spawning into an out-of-range slot")
	}
}
