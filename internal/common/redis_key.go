package common

import (
	"fmt"
	"strings"
)

const (
	RedisKeyOnlineUsers = "presence:online"
	RedisKeyEmergency   = "emergency:active"
)

func RedisKeyLastPing(userID string) string {
	return fmt.Sprintf("presence:lastping:%s", userID)
}

func FromRedisKeyLastPing(key string) string {
	return key[strings.LastIndex(key, ":")+1:]
}

func RedisKeyLeaderboard(period string) string {
	return fmt.Sprintf("leaderboard:%s", period)
}

// StorageScope is the namespace of the durable state of an owner, the owner
// is either an account or a device.
func StorageScope(kind, ownerID string) string {
	return fmt.Sprintf("%s:%s", kind, ownerID)
}
