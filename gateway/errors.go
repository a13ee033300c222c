package gateway

import "github.com/pkg/errors"

// errHeartbeatTimeout fires the pacemaker's death channel when two
// consecutive heartbeats go unacked; the shard closes the socket without
// sending a close frame and reconnects as it would for close code 4000
// (resume).
var errHeartbeatTimeout = errors.New("gateway: heartbeat timed out, no ack received")

// ErrAuthentication is fatal process-wide: it means the token or intents
// the shard identified with were rejected (close code 4004, 4012-4014).
var ErrAuthentication = errors.New("gateway: authentication failed")

// ErrShardingRequired is fatal: the caller must raise its shard count
// (close code 4011).
var ErrShardingRequired = errors.New("gateway: sharding required")

// ErrInvalidShard is fatal: the shard tuple sent in Identify was rejected
// (close code 4010).
var ErrInvalidShard = errors.New("gateway: invalid shard")

// ErrProtocol wraps a malformed payload, a missing required field, or an
// unknown opcode. It is fatal for the current connection attempt; the shard
// reconnects with a fresh Identify rather than propagating it to the
// caller.
type ErrProtocol struct {
	Err error
}

func (e *ErrProtocol) Error() string { return "gateway: protocol error: " + e.Err.Error() }
func (e *ErrProtocol) Unwrap() error { return e.Err }

// CloseError carries the verbatim close code a reconnect decision was made
// from, for callers that want to log or audit it.
type CloseError struct {
	Code int
}

func (e *CloseError) Error() string {
	return "gateway: connection closed"
}
