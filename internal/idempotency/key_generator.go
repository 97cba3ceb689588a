package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateKey builds a deterministic key from all provided parts.
func GenerateKey(parts ...interface{}) string {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%v:", part)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// KeyFromCallback identifies a callback query; Telegram callback IDs are
// unique per press.
func KeyFromCallback(userID int64, callbackID string) string {
	return GenerateKey("callback", userID, callbackID)
}

// KeyFromMessage identifies an inbound chat message.
func KeyFromMessage(chatID int64, messageID int) string {
	return GenerateKey("message", chatID, messageID)
}
