// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"strings"

	blake2b "github.com/minio/blake2b-simd"
)

const (
	HashSize    = 32
	Blake160Len = 20

	// Domain separation constant for all ledger digests
	HashPersonalization = "ckb-default-hash"
)

var ErrHasherFinalized = errors.New("hasher already finalized")

// Hash is a 32-byte digest produced by Hasher
type Hash [HashSize]byte

func NewHash(data []byte) Hash {
	h := Hash{}
	copy(h[:], data)
	return h
}

// HashFromHex parses a 0x-prefixed (or bare) hex digest
func HashFromHex(s string) (Hash, error) {
	var h Hash
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return h, fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(data) != HashSize {
		return h, fmt.Errorf(
			"invalid hash length: expected %d bytes, got %d",
			HashSize,
			len(data),
		)
	}
	copy(h[:], data)
	return h, nil
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	tmp, err := HashFromHex(s)
	if err != nil {
		return err
	}
	*h = tmp
	return nil
}

// Hasher is a streaming BLAKE2b-256 digest personalized with HashPersonalization.
//
// Digest is terminal: calling Update, Write or Digest on a finalized Hasher panics
// with ErrHasherFinalized
type Hasher struct {
	h         hash.Hash
	finalized bool
}

func NewHasher() *Hasher {
	h, err := blake2b.New(
		&blake2b.Config{
			Size:   HashSize,
			Person: []byte(HashPersonalization),
		},
	)
	if err != nil {
		// Only reachable with an invalid static config
		panic(fmt.Sprintf("unexpected error creating hasher: %s", err))
	}
	return &Hasher{h: h}
}

// Update feeds data into the hasher and returns it for chaining
func (h *Hasher) Update(data []byte) *Hasher {
	if h.finalized {
		panic(ErrHasherFinalized)
	}
	// hash.Hash never returns an error from Write
	_, _ = h.h.Write(data)
	return h
}

func (h *Hasher) Write(data []byte) (int, error) {
	h.Update(data)
	return len(data), nil
}

// Digest finalizes the hasher and returns the digest
func (h *Hasher) Digest() Hash {
	if h.finalized {
		panic(ErrHasherFinalized)
	}
	h.finalized = true
	return NewHash(h.h.Sum(nil))
}

// HashOf returns the digest of the concatenation of parts
func HashOf(parts ...[]byte) Hash {
	h := NewHasher()
	for _, part := range parts {
		h.Update(part)
	}
	return h.Digest()
}

// Blake160 returns the leading 20 bytes of the digest of data
func Blake160(data []byte) []byte {
	h := HashOf(data)
	return h[:Blake160Len]
}
