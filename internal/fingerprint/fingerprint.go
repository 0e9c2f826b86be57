// Package fingerprint derives the cache keys that make transformed content
// addressable: identical inputs must always map to identical digests.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
)

// FromAttributes canonicalizes a profile attribute map and hashes it.
// encoding/json marshals map keys in sorted order, which gives the key-sorted,
// whitespace-free serialization the cache key depends on: two semantically
// equal profiles always produce the same digest regardless of how the caller
// assembled them.
func FromAttributes(attrs map[string]string) string {
	data, err := json.Marshal(attrs)
	if err != nil {
		// map[string]string cannot fail to marshal; keep the function total.
		data = nil
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// FromContent hashes raw source bytes with no normalization. A one-byte edit
// to the source intentionally invalidates every translation derived from it.
func FromContent(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}
