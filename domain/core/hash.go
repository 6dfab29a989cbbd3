package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough to tell reports apart.
func (h Hash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// ComputeInputHash fingerprints the samples and settings a basket was built
// from. Sample order matters; setting order does not.
func ComputeInputHash(samples [][]float64, settings map[string]string) Hash {
	buf := make([]byte, 0, 64)
	word := make([]byte, 8)
	for i, sample := range samples {
		binary.LittleEndian.PutUint64(word, uint64(i))
		buf = append(buf, word...)
		binary.LittleEndian.PutUint64(word, uint64(len(sample)))
		buf = append(buf, word...)
		for _, v := range sample {
			binary.LittleEndian.PutUint64(word, math.Float64bits(v))
			buf = append(buf, word...)
		}
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteByte('=')
		data.WriteString(settings[key])
		data.WriteByte(';')
	}
	buf = append(buf, data.String()...)

	return NewHash(buf)
}
