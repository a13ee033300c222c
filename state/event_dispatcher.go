package state

import (
	"github.com/rs/zerolog"

	"github.com/riftcord/corebot/discord"
	"github.com/riftcord/corebot/gateway"
	"github.com/riftcord/corebot/json"
)

// Dispatcher is the event dispatcher: given a shard's raw DISPATCH
// payload, it decodes the typed event, applies the cache mutation table
// below, and fans the event out to registered listeners in registration
// order. It owns no goroutines of its own; callers feed it synchronously
// from the shard's dispatch callback, which is what gives the "applied and
// dispatched in receive order" guarantee for free.
type Dispatcher struct {
	store     Store
	listeners listenerRegistry
	logger    zerolog.Logger
}

// NewDispatcher wraps store. A zero zerolog.Logger is a safe default.
func NewDispatcher(store Store, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{store: store, logger: logger}
}

// Store returns the underlying cache, for direct reads.
func (d *Dispatcher) Store() Store { return d.store }

// On registers a listener. See listenerRegistry.On for the accepted shapes.
func (d *Dispatcher) On(fn interface{}) (remove func()) {
	return d.listeners.On(fn)
}

// Dispatch decodes one DISPATCH frame's payload by name, applies its cache
// mutation, and delivers the typed event to listeners. shardID identifies
// the shard the frame arrived on, so guild-owning mutations can stamp
// discord.Guild.ShardID for the (guild_id >> 22) % N routing invariant. An
// unrecognized name is delivered as *gateway.UnknownEvent with no cache
// mutation, so new server event types never break a running client.
func (d *Dispatcher) Dispatch(shardID int, name string, seq int64, data json.Raw) {
	ev, ok := gateway.NewEvent(name)
	if !ok {
		d.listeners.emit(&gateway.UnknownEvent{Name: name, Data: data}, d.logPanic)
		return
	}

	if err := json.Unmarshal(data, ev); err != nil {
		d.logger.Warn().Err(err).Str("event", name).Msg("state: failed to decode dispatch payload")
		return
	}

	d.applyMutation(shardID, ev)
	d.listeners.emit(ev, d.logPanic)
}

func (d *Dispatcher) logPanic(rec interface{}) {
	d.logger.Error().Interface("recovered", rec).Msg("state: listener panic recovered")
}

// applyMutation is the cache mutation table. Applying the same
// GUILD_CREATE (or any other idempotent mutation below) twice leaves the
// cache in the same state it would be in after one application — see
// DefaultStore.GuildSet's field-preservation behavior, which this relies on.
func (d *Dispatcher) applyMutation(shardID int, ev interface{}) {
	var err error

	switch e := ev.(type) {
	case *gateway.ReadyEvent:
		err = d.store.MeSet(&e.User)
		if err == nil {
			for _, g := range e.Guilds {
				err = d.store.GuildSetUnavailable(g)
				if err != nil {
					break
				}
			}
		}

	case *gateway.GuildCreateEvent:
		e.Guild.ShardID = shardID
		err = d.store.GuildSet(&e.Guild)
		if err == nil {
			for i := range e.Channels {
				e.Channels[i].GuildID = e.ID
				if cerr := d.store.ChannelSet(&e.Channels[i]); cerr != nil {
					err = cerr
				}
			}
			for i := range e.Members {
				if merr := d.store.MemberSet(e.ID, &e.Members[i]); merr != nil {
					err = merr
				}
			}
		}

	case *gateway.GuildUpdateEvent:
		e.Guild.ShardID = shardID
		err = d.store.GuildSet(&e.Guild)

	case *gateway.GuildDeleteEvent:
		if e.Unavailable {
			err = d.store.GuildSetUnavailable(e.UnavailableGuild)
		} else {
			err = d.store.GuildRemove(e.ID)
		}

	case *gateway.ChannelCreateEvent:
		err = d.store.ChannelSet(&e.Channel)
	case *gateway.ChannelUpdateEvent:
		err = d.store.ChannelSet(&e.Channel)
	case *gateway.ChannelDeleteEvent:
		err = d.store.ChannelRemove(&e.Channel)

	case *gateway.GuildMemberAddEvent:
		err = d.store.MemberSet(e.GuildID, &e.Member)
	case *gateway.GuildMemberRemoveEvent:
		err = d.store.MemberRemove(e.GuildID, e.User.ID)
	case *gateway.GuildMemberUpdateEvent:
		err = d.applyMemberUpdate(e)

	case *gateway.MessageCreateEvent:
		// emit only; no cache retention.

	case *gateway.VoiceServerUpdateEvent:
		// forwarded to listeners only; no voice subsystem to hand it to.
	}

	if err != nil && err != ErrNotFound {
		d.logger.Warn().Err(err).Msg("state: cache mutation failed")
	}
}

func (d *Dispatcher) applyMemberUpdate(e *gateway.GuildMemberUpdateEvent) error {
	member, err := d.store.Member(e.GuildID, e.User.ID)
	if err != nil {
		member = &discord.Member{}
	}
	member.User = &e.User
	member.Nick = e.Nick
	member.Roles = e.Roles
	return d.store.MemberSet(e.GuildID, member)
}
