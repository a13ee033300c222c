// Package gateway implements one shard's full-duplex connection to the
// platform gateway: the identify/resume handshake, the heartbeat pacemaker,
// sequence tracking, and the reconnect-vs-fatal close-code policy. The
// handshake state machine is consolidated into a single exported Shard
// type rather than splitting it across a Gateway/gatewayImpl pair.
package gateway

import (
	"github.com/riftcord/corebot/json"
)

// OpCode is a gateway opcode.
type OpCode int

const (
	DispatchOp            OpCode = 0
	HeartbeatOp           OpCode = 1
	IdentifyOp            OpCode = 2
	StatusUpdateOp        OpCode = 3
	VoiceStateUpdateOp    OpCode = 4
	ResumeOp              OpCode = 6
	ReconnectOp           OpCode = 7
	RequestGuildMembersOp OpCode = 8
	InvalidSessionOp      OpCode = 9
	HelloOp               OpCode = 10
	HeartbeatAckOp        OpCode = 11
)

// Frame is the envelope every gateway payload is wrapped in:
// { "op": <int>, "d": <any>, "s": <int|null>, "t": <string|null> }.
type Frame struct {
	Op   OpCode    `json:"op"`
	Data json.Raw  `json:"d,omitempty"`
	Seq  *int64    `json:"s,omitempty"`
	Name string    `json:"t,omitempty"`
}

// encodeFrame marshals a command payload for opcodes the client sends.
func encodeFrame(op OpCode, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Op: op, Data: raw})
}
