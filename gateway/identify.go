package gateway

import (
	"runtime"

	"github.com/riftcord/corebot/json/option"
)

// ShardTuple is the two-element [id, total] tuple sent in an Identify
// command.
type ShardTuple [2]int

// ID returns the shard's own index.
func (s ShardTuple) ID() int { return s[0] }

// Total returns the total shard count.
func (s ShardTuple) Total() int { return s[1] }

// IdentifyProperties describes the connecting client to the gateway.
type IdentifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// DefaultProperties is used unless the caller overrides it.
var DefaultProperties = IdentifyProperties{
	OS:      runtime.GOOS,
	Browser: "corebot",
	Device:  "corebot",
}

// IdentifyCommand is the Op 2 payload.
type IdentifyCommand struct {
	Token          string             `json:"token"`
	Properties     IdentifyProperties `json:"properties"`
	Compress       bool               `json:"compress,omitempty"`
	LargeThreshold uint               `json:"large_threshold,omitempty"`
	Shard          *ShardTuple        `json:"shard,omitempty"`
	Presence       *UpdatePresenceCommand `json:"presence,omitempty"`

	// Intents must be non-nil on protocol version 10; nil is only valid in
	// legacy (v=6) mode.
	Intents option.Uint `json:"intents,omitempty"`
}

// NewIdentifyCommand builds the default Identify payload for a token.
func NewIdentifyCommand(token string) IdentifyCommand {
	return IdentifyCommand{
		Token:          token,
		Properties:     DefaultProperties,
		Compress:       false,
		LargeThreshold: 50,
	}
}
