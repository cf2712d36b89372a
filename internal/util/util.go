package util

import (
	"crypto/sha1"
	"encoding/hex"
)

// GetIDFromString returns a stable hex ID for a source path or content blob.
func GetIDFromString(str string) string {
	hasher := sha1.New()
	hasher.Write([]byte(str))

	return hex.EncodeToString(hasher.Sum(nil))
}
