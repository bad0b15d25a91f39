package redis

import (
	"fmt"
	"strings"
)

// Key prefix for all profile data
const keyPrefix = "tokengate"

// profileKey returns the Redis key for a PlayerProfile
func profileKey(address string) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, address)
}

// usernameIndexKey returns the Redis key for the username -> address index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, strings.ToLower(username))
}

// leaderboardKey returns the Redis key for the best-score ZSET
func leaderboardKey() string {
	return fmt.Sprintf("%s:idx:best_score", keyPrefix)
}
