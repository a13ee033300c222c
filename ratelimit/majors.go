package ratelimit

import (
	"strconv"
	"strings"
)

// majorRoots are the path segments whose following ID is a "major
// parameter": it is kept literal in the bucket key because the platform
// rate-limits per-channel and per-guild independently. Every other numeric
// or ID-shaped segment is masked so e.g. two different message IDs under
// the same channel share a bucket.
var majorRoots = []string{"channels", "guilds", "webhooks"}

// BucketKey derives the rate-limit bucket key for an HTTP method and route
// path, substituting major parameters literally and masking minor ones.
func BucketKey(method, path string) string {
	path = strings.SplitN(path, "?", 2)[0]

	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) == 0 {
		return method + " " + path
	}

	skip := 0
	for _, root := range majorRoots {
		if parts[0] == root {
			skip = 2 // keep the root and the major ID following it
			break
		}
	}

	for i := skip; i < len(parts); i++ {
		if looksLikeID(parts[i]) {
			parts[i] = ""
		}
	}

	return method + " /" + strings.Join(parts, "/")
}

func looksLikeID(s string) bool {
	if s == "" {
		return false
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return true
	}
	return false
}
