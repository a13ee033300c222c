package state

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"

	"github.com/riftcord/corebot/discord"
	"github.com/riftcord/corebot/gateway"
	"github.com/riftcord/corebot/json"
)

func testGuildCreatePayload(t *testing.T) json.Raw {
	t.Helper()

	ev := gateway.GuildCreateEvent{Guild: discord.Guild{
		ID:   discord.Snowflake(100),
		Name: "Test Guild",
		Channels: []discord.Channel{
			{ID: discord.Snowflake(200), Type: discord.GuildText, Name: "general"},
		},
		Roles: []discord.Role{
			{ID: discord.Snowflake(300), Name: "@everyone"},
		},
	}}

	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return json.Raw(raw)
}

// TestGuildCreateIdempotent checks that applying the same GUILD_CREATE
// twice leaves the cache identical to applying it once.
func TestGuildCreateIdempotent(t *testing.T) {
	store := NewDefaultStore()
	d := NewDispatcher(store, zerolog.Nop())

	payload := testGuildCreatePayload(t)

	d.Dispatch(0, "GUILD_CREATE", 1, payload)
	first, err := store.Guild(discord.Snowflake(100))
	if err != nil {
		t.Fatalf("Guild: %v", err)
	}

	d.Dispatch(0, "GUILD_CREATE", 2, payload)
	second, err := store.Guild(discord.Snowflake(100))
	if err != nil {
		t.Fatalf("Guild: %v", err)
	}

	if spew.Sdump(first) != spew.Sdump(second) {
		t.Fatalf("cache diverged after repeated GUILD_CREATE:\nfirst:  %s\nsecond: %s",
			spew.Sdump(first), spew.Sdump(second))
	}

	channels, err := store.Channels(discord.Snowflake(100))
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("expected exactly 1 channel after repeated dispatch, got %d", len(channels))
	}
}

func TestGuildDeleteUnavailableDemotes(t *testing.T) {
	store := NewDefaultStore()
	d := NewDispatcher(store, zerolog.Nop())

	d.Dispatch(0, "GUILD_CREATE", 1, testGuildCreatePayload(t))

	del := gateway.GuildDeleteEvent{UnavailableGuild: discord.UnavailableGuild{
		ID:          discord.Snowflake(100),
		Unavailable: true,
	}}
	raw, err := json.Marshal(del)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	d.Dispatch(0, "GUILD_DELETE", 2, json.Raw(raw))

	g, err := store.Guild(discord.Snowflake(100))
	if err != nil {
		t.Fatalf("expected guild to remain cached as unavailable: %v", err)
	}
	if !g.Unavailable {
		t.Fatal("expected guild to be marked unavailable")
	}
	if g.Name != "Test Guild" {
		t.Fatalf("expected name to be preserved across demotion, got %q", g.Name)
	}
}

func TestGuildDeleteRemovesWhenNotUnavailable(t *testing.T) {
	store := NewDefaultStore()
	d := NewDispatcher(store, zerolog.Nop())

	d.Dispatch(0, "GUILD_CREATE", 1, testGuildCreatePayload(t))

	del := gateway.GuildDeleteEvent{UnavailableGuild: discord.UnavailableGuild{
		ID: discord.Snowflake(100),
	}}
	raw, _ := json.Marshal(del)
	d.Dispatch(0, "GUILD_DELETE", 2, json.Raw(raw))

	if _, err := store.Guild(discord.Snowflake(100)); err != ErrNotFound {
		t.Fatalf("expected guild to be fully removed, got err=%v", err)
	}
}

// TestListenerPanicIsolated checks that listener invocation is
// best-effort: one listener's failure must not prevent others from running.
func TestListenerPanicIsolated(t *testing.T) {
	store := NewDefaultStore()
	d := NewDispatcher(store, zerolog.Nop())

	var secondRan bool
	d.On(func(ev *gateway.GuildCreateEvent) {
		panic("boom")
	})
	d.On(func(ev *gateway.GuildCreateEvent) {
		secondRan = true
	})

	d.Dispatch(0, "GUILD_CREATE", 1, testGuildCreatePayload(t))

	if !secondRan {
		t.Fatal("expected second listener to run despite first panicking")
	}
}

// TestListenersFireInRegistrationOrder checks the fan-out order guarantee.
func TestListenersFireInRegistrationOrder(t *testing.T) {
	store := NewDefaultStore()
	d := NewDispatcher(store, zerolog.Nop())

	var order []int
	d.On(func(ev *gateway.GuildCreateEvent) { order = append(order, 1) })
	d.On(func(ev *gateway.GuildCreateEvent) { order = append(order, 2) })
	d.On(func(ev *gateway.GuildCreateEvent) { order = append(order, 3) })

	d.Dispatch(0, "GUILD_CREATE", 1, testGuildCreatePayload(t))

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

// TestGuildCreateStampsShardID checks that a GUILD_CREATE dispatched on a
// given shard records that shard on the cached guild, and that
// GuildSetUnavailableForShard only demotes guilds owned by that shard.
func TestGuildCreateStampsShardID(t *testing.T) {
	store := NewDefaultStore()
	d := NewDispatcher(store, zerolog.Nop())

	d.Dispatch(3, "GUILD_CREATE", 1, testGuildCreatePayload(t))

	g, err := store.Guild(discord.Snowflake(100))
	if err != nil {
		t.Fatalf("Guild: %v", err)
	}
	if g.ShardID != 3 {
		t.Fatalf("expected ShardID 3, got %d", g.ShardID)
	}

	if err := store.GuildSetUnavailableForShard(9); err != nil {
		t.Fatalf("GuildSetUnavailableForShard: %v", err)
	}
	if g, _ := store.Guild(discord.Snowflake(100)); g.Unavailable {
		t.Fatal("expected guild owned by a different shard to stay available")
	}

	if err := store.GuildSetUnavailableForShard(3); err != nil {
		t.Fatalf("GuildSetUnavailableForShard: %v", err)
	}
	g, err = store.Guild(discord.Snowflake(100))
	if err != nil {
		t.Fatalf("Guild: %v", err)
	}
	if !g.Unavailable {
		t.Fatal("expected guild owned by shard 3 to be marked unavailable")
	}
	if g.Name != "Test Guild" {
		t.Fatalf("expected name to be preserved, got %q", g.Name)
	}
}

func TestUnknownEventDeliveredAsUnknownEvent(t *testing.T) {
	store := NewDefaultStore()
	d := NewDispatcher(store, zerolog.Nop())

	var got *gateway.UnknownEvent
	d.On(func(ev *gateway.UnknownEvent) { got = ev })

	d.Dispatch(0, "SOME_FUTURE_EVENT", 1, json.Raw(`{"foo":"bar"}`))

	if got == nil {
		t.Fatal("expected UnknownEvent listener to fire")
	}
	if got.Name != "SOME_FUTURE_EVENT" {
		t.Fatalf("expected name SOME_FUTURE_EVENT, got %q", got.Name)
	}
}
