package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// hashKey builds a cache key from a category prefix and the parts that
// make the entry distinct, e.g. a media URL plus its download limits.
// The parts are hashed so arbitrary URLs and option structs yield keys
// of fixed length that any backend can store.
func hashKey(category string, parts ...any) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%+v\x00", p)
	}
	return category + ":" + hex.EncodeToString(h.Sum(nil))
}
