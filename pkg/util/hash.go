package util

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// HashKey joins the parts with "|" and returns their MD5 hash. It is used to key
// derived-view caches on the identity of their inputs.
func HashKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
