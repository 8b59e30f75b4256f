package util

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// HashClientKey derives the storage key for a client identifier (IP or client id)
// so raw addresses never reach the state database.
func HashClientKey(prefix, clientID string) string {
	return prefix + ":" + hashString(strings.TrimSpace(clientID))
}

func hashString(input string) string {
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}
