package corebot

import (
	"testing"

	"github.com/riftcord/corebot/discord"
	"github.com/riftcord/corebot/gateway"
)

func TestNewDoesNotOpenConnections(t *testing.T) {
	c := New("faketoken", WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages))
	defer c.Close()

	if c.manager != nil {
		t.Fatal("expected manager to be nil before Open")
	}
	if c.cfg.intents != (gateway.IntentGuilds | gateway.IntentGuildMessages) {
		t.Fatalf("unexpected intents: %v", c.cfg.intents)
	}
}

func TestCacheMissSurfacesSentinel(t *testing.T) {
	c := New("faketoken")
	defer c.Close()

	_, err := c.Cache().Guild(discord.Snowflake(1))
	if !IsCacheMiss(err) {
		t.Fatalf("expected a cache miss, got %v", err)
	}
}

func TestShardForGuildNilBeforeOpen(t *testing.T) {
	c := New("faketoken")
	defer c.Close()

	if h := c.ShardForGuild(discord.Snowflake(1)); h != nil {
		t.Fatal("expected nil shard before Open")
	}
}

func TestOnPanicsOnBadListenerShape(t *testing.T) {
	c := New("faketoken")
	defer c.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a zero-argument listener")
		}
	}()
	c.On(func() {})
}

func TestGuildHandleID(t *testing.T) {
	c := New("faketoken")
	defer c.Close()

	h := c.Guild(discord.Snowflake(42))
	if h.ID() != discord.Snowflake(42) {
		t.Fatalf("expected ID 42, got %v", h.ID())
	}
	if _, err := h.Cached(); !IsCacheMiss(err) {
		t.Fatalf("expected cache miss for uncached guild, got %v", err)
	}
}
