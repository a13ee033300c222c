package corebot

import (
	"errors"

	"github.com/riftcord/corebot/gateway"
	"github.com/riftcord/corebot/ratelimit"
	"github.com/riftcord/corebot/state"
)

// Most error categories already exist as concrete types closer to where
// they originate (ratelimit.StatusError, gateway.CloseError,
// gateway.ErrProtocol, state.ErrNotFound); this file re-exports sentinels
// and thin aliases so a caller importing only corebot can match on the
// full taxonomy without reaching into component packages.
var (
	// ErrAuthentication means the token or intents were rejected; fatal
	// process-wide.
	ErrAuthentication = gateway.ErrAuthentication
	// ErrShardingRequired means the configured shard count is too low for
	// the guild count Discord reports.
	ErrShardingRequired = gateway.ErrShardingRequired
	// ErrRateLimitExhausted surfaces once a single request has been
	// resubmitted the maximum number of times after repeated 429s.
	ErrRateLimitExhausted = ratelimit.ErrExhausted
	// ErrCacheMiss is returned by a sync cache lookup that found nothing
	// locally; there is no automatic REST fallback.
	ErrCacheMiss = state.ErrNotFound
	// ErrTimeout means a request's deadline elapsed while waiting on a
	// bucket, the global lockout, or the transport.
	ErrTimeout = ratelimit.ErrTimeout
)

// HTTPStatusError is returned for a non-2xx, non-429 REST response. It is an
// alias of ratelimit.StatusError so callers can type-assert against either
// package's name.
type HTTPStatusError = ratelimit.StatusError

// GatewayCloseError carries the close code a reconnect decision was made
// from.
type GatewayCloseError = gateway.CloseError

// ProtocolError wraps a malformed gateway payload.
type ProtocolError = gateway.ErrProtocol

// IsAuthenticationError reports whether err is, or wraps, ErrAuthentication.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsCacheMiss reports whether err is, or wraps, ErrCacheMiss.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
