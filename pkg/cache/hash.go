package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds "<prefix>:<digest>" where the digest covers the JSON
// encoding of parts. Field order in the option structs is therefore part of
// the key; adding an omitempty field leaves existing keys unchanged.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash is the hex SHA-256 digest of data. Catalog sources and design keys
// are reduced to it before they name cache entries.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
