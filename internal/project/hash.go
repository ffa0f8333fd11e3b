package project

import (
	"crypto/sha256"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// Sum hashes a single input.
func Sum(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// Combine строит ключ запуска: H( config || model || plan ... ).
// Порядок частей должен быть детерминированным.
func Combine(parts ...Digest) Digest {
	h := sha256.New()
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
