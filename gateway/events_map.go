package gateway

// EventConstructor returns a fresh, addressable zero value for a dispatch
// event type, ready to be unmarshaled into.
type EventConstructor func() interface{}

// eventConstructors maps a dispatch "t" name to its typed Go representation.
// Event names not present here are delivered as *UnknownEvent instead of
// causing a decode failure, so an unrecognized event added server-side
// never crashes the client.
var eventConstructors = map[string]EventConstructor{
	"READY":               func() interface{} { return new(ReadyEvent) },
	"RESUMED":             func() interface{} { return new(ResumedEvent) },
	"GUILD_CREATE":        func() interface{} { return new(GuildCreateEvent) },
	"GUILD_UPDATE":        func() interface{} { return new(GuildUpdateEvent) },
	"GUILD_DELETE":        func() interface{} { return new(GuildDeleteEvent) },
	"CHANNEL_CREATE":      func() interface{} { return new(ChannelCreateEvent) },
	"CHANNEL_UPDATE":      func() interface{} { return new(ChannelUpdateEvent) },
	"CHANNEL_DELETE":      func() interface{} { return new(ChannelDeleteEvent) },
	"GUILD_MEMBER_ADD":    func() interface{} { return new(GuildMemberAddEvent) },
	"GUILD_MEMBER_REMOVE": func() interface{} { return new(GuildMemberRemoveEvent) },
	"GUILD_MEMBER_UPDATE": func() interface{} { return new(GuildMemberUpdateEvent) },
	"MESSAGE_CREATE":      func() interface{} { return new(MessageCreateEvent) },
	"VOICE_SERVER_UPDATE": func() interface{} { return new(VoiceServerUpdateEvent) },
	"VOICE_STATE_UPDATE":  func() interface{} { return new(VoiceStateUpdateEvent) },
}

// RegisterEvent lets a caller add support for an event name this module
// doesn't model yet, without forking the package.
func RegisterEvent(name string, ctor EventConstructor) {
	eventConstructors[name] = ctor
}

// NewEvent returns a fresh value for name, or (nil, false) if unknown.
func NewEvent(name string) (interface{}, bool) {
	ctor, ok := eventConstructors[name]
	if !ok {
		return nil, false
	}
	return ctor(), true
}
