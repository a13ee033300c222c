package state

import (
	"sync"

	"github.com/riftcord/corebot/discord"
)

// DefaultStore is an in-memory Store. It holds one mutex for the whole
// cache rather than per-entity locks — the dispatch task is the only
// writer, so the lock only ever contends against readers.
type DefaultStore struct {
	mu sync.RWMutex

	self discord.User

	guilds   map[discord.Snowflake]*discord.Guild
	privates map[discord.Snowflake]*discord.Channel
}

var _ Store = (*DefaultStore)(nil)

// NewDefaultStore returns an empty DefaultStore.
func NewDefaultStore() *DefaultStore {
	s := &DefaultStore{}
	s.Reset()
	return s
}

func (s *DefaultStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.self = discord.User{}
	s.guilds = make(map[discord.Snowflake]*discord.Guild)
	s.privates = make(map[discord.Snowflake]*discord.Channel)
	return nil
}

func (s *DefaultStore) Me() (*discord.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.self.ID.IsValid() {
		return nil, ErrNotFound
	}
	cp := s.self
	return &cp, nil
}

func (s *DefaultStore) MeSet(me *discord.User) error {
	s.mu.Lock()
	s.self = *me
	s.mu.Unlock()
	return nil
}

func (s *DefaultStore) Guild(id discord.Snowflake) (*discord.Guild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.guilds[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *DefaultStore) Guilds() ([]discord.Guild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]discord.Guild, 0, len(s.guilds))
	for _, g := range s.guilds {
		out = append(out, *g)
	}
	return out, nil
}

// GuildSet promotes or merges a full Guild into the cache. If the guild was
// already cached, fields the incoming payload left zero (Roles, Emojis,
// Members, Presences, Channels) are preserved from the existing entry, so a
// partial GUILD_UPDATE never wipes data a prior GUILD_CREATE populated.
// Setting the identical Guild twice is therefore idempotent: the second call
// observes the first call's values as its own "existing" baseline and
// reproduces them.
func (s *DefaultStore) GuildSet(guild *discord.Guild) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *guild
	if existing, ok := s.guilds[guild.ID]; ok {
		if cp.Channels == nil {
			cp.Channels = existing.Channels
		}
		if cp.Roles == nil {
			cp.Roles = existing.Roles
		}
		if cp.Emojis == nil {
			cp.Emojis = existing.Emojis
		}
		if cp.Members == nil {
			cp.Members = existing.Members
		}
		if cp.Presences == nil {
			cp.Presences = existing.Presences
		}
	}
	s.guilds[guild.ID] = &cp
	return nil
}

// GuildSetUnavailable demotes a cached Guild to an unavailable placeholder,
// preserving its member/channel/role data so it can be promoted back without
// loss once the owning shard's next GUILD_CREATE arrives. If nothing was
// cached for id (the READY-time case), it records a bare placeholder.
func (s *DefaultStore) GuildSetUnavailable(unavail discord.UnavailableGuild) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.guilds[unavail.ID]; ok {
		existing.Unavailable = unavail.Unavailable
		return nil
	}

	s.guilds[unavail.ID] = &discord.Guild{ID: unavail.ID, Unavailable: unavail.Unavailable}
	return nil
}

// GuildSetUnavailableForShard marks every guild currently attributed to
// shardID as unavailable, leaving its member/channel/role data in place so
// it can be promoted back without loss once the replacement shard's next
// GUILD_CREATE arrives.
func (s *DefaultStore) GuildSetUnavailableForShard(shardID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.guilds {
		if g.ShardID == shardID {
			g.Unavailable = true
		}
	}
	return nil
}

func (s *DefaultStore) GuildRemove(id discord.Snowflake) error {
	s.mu.Lock()
	delete(s.guilds, id)
	s.mu.Unlock()
	return nil
}

func (s *DefaultStore) Channel(id discord.Snowflake) (*discord.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ch, ok := s.privates[id]; ok {
		cp := *ch
		return &cp, nil
	}

	for _, g := range s.guilds {
		for i := range g.Channels {
			if g.Channels[i].ID == id {
				cp := g.Channels[i]
				return &cp, nil
			}
		}
	}

	return nil, ErrNotFound
}

func (s *DefaultStore) Channels(guildID discord.Snowflake) ([]discord.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]discord.Channel(nil), g.Channels...), nil
}

func (s *DefaultStore) PrivateChannels() ([]discord.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]discord.Channel, 0, len(s.privates))
	for _, ch := range s.privates {
		out = append(out, *ch)
	}
	return out, nil
}

func (s *DefaultStore) ChannelSet(ch *discord.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ch.Type.IsGuild() {
		cp := *ch
		s.privates[ch.ID] = &cp
		return nil
	}

	g, ok := s.guilds[ch.GuildID]
	if !ok {
		return ErrNotFound
	}
	for i := range g.Channels {
		if g.Channels[i].ID == ch.ID {
			g.Channels[i] = *ch
			return nil
		}
	}
	g.Channels = append(g.Channels, *ch)
	return nil
}

func (s *DefaultStore) ChannelRemove(ch *discord.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ch.Type.IsGuild() {
		delete(s.privates, ch.ID)
		return nil
	}

	g, ok := s.guilds[ch.GuildID]
	if !ok {
		return ErrNotFound
	}
	for i := range g.Channels {
		if g.Channels[i].ID == ch.ID {
			g.Channels = append(g.Channels[:i], g.Channels[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *DefaultStore) Member(guildID, userID discord.Snowflake) (*discord.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	for i := range g.Members {
		if g.Members[i].UserID() == userID {
			cp := g.Members[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *DefaultStore) Members(guildID discord.Snowflake) ([]discord.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]discord.Member(nil), g.Members...), nil
}

func (s *DefaultStore) MemberSet(guildID discord.Snowflake, member *discord.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guilds[guildID]
	if !ok {
		return ErrNotFound
	}
	for i := range g.Members {
		if g.Members[i].UserID() == member.UserID() {
			g.Members[i] = *member
			return nil
		}
	}
	g.Members = append(g.Members, *member)
	return nil
}

func (s *DefaultStore) MemberRemove(guildID, userID discord.Snowflake) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guilds[guildID]
	if !ok {
		return ErrNotFound
	}
	for i := range g.Members {
		if g.Members[i].UserID() == userID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *DefaultStore) Role(guildID, roleID discord.Snowflake) (*discord.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	for i := range g.Roles {
		if g.Roles[i].ID == roleID {
			cp := g.Roles[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *DefaultStore) Roles(guildID discord.Snowflake) ([]discord.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]discord.Role(nil), g.Roles...), nil
}
