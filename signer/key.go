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

package signer

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	PrivateKeySize = 32
	// R || S || recovery id
	RecoverableSignatureSize = 65

	// Header byte offset of a compact signature for a compressed public key
	compactHeaderCompressed = 27 + 4
)

// KeyProvider holds a secp256k1 key. It may be backed by a local key or by an external
// wallet
type KeyProvider interface {
	PublicKey(ctx context.Context) (*secp256k1.PublicKey, error)
	// SignRecoverable signs a 32-byte digest and returns R || S || recovery id
	SignRecoverable(ctx context.Context, digest []byte) ([]byte, error)
}

// LocalKey is a KeyProvider over an in-memory private key
type LocalKey struct {
	privateKey *secp256k1.PrivateKey
}

func NewLocalKey(privateKey *secp256k1.PrivateKey) *LocalKey {
	return &LocalKey{privateKey: privateKey}
}

// GenerateLocalKey returns a new random key
func GenerateLocalKey() (*LocalKey, error) {
	privateKey, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return NewLocalKey(privateKey), nil
}

// ParseLocalKey accepts a hex private key, with or without 0x, or a WIF string
func ParseLocalKey(s string) (*LocalKey, error) {
	s = strings.TrimSpace(s)
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err == nil {
		if len(raw) != PrivateKeySize {
			return nil, fmt.Errorf(
				"private key must be %d bytes, got %d",
				PrivateKeySize,
				len(raw),
			)
		}
		return NewLocalKey(secp256k1.PrivKeyFromBytes(raw)), nil
	}
	wif, err := btcutil.DecodeWIF(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewLocalKey(wif.PrivKey), nil
}

func (k *LocalKey) PublicKey(ctx context.Context) (*secp256k1.PublicKey, error) {
	return k.privateKey.PubKey(), nil
}

func (k *LocalKey) SignRecoverable(ctx context.Context, digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	compact := ecdsa.SignCompact(k.privateKey, digest, true)
	return fromCompact(compact), nil
}

// Hex returns the private key as 0x-prefixed hex
func (k *LocalKey) Hex() string {
	return "0x" + hex.EncodeToString(k.privateKey.Serialize())
}

// fromCompact converts a header || R || S compact signature to R || S || recovery id
func fromCompact(compact []byte) []byte {
	ret := make([]byte, 0, RecoverableSignatureSize)
	ret = append(ret, compact[1:]...)
	return append(ret, (compact[0]-27)&3)
}

// toCompact converts R || S || recovery id to a compressed-key compact signature
func toCompact(sig []byte) []byte {
	ret := make([]byte, 0, RecoverableSignatureSize)
	ret = append(ret, compactHeaderCompressed+sig[64])
	return append(ret, sig[:64]...)
}

// recoverPublicKey returns the key that produced an R || S || recovery id signature
func recoverPublicKey(sig []byte, digest []byte) (*secp256k1.PublicKey, error) {
	if len(sig) != RecoverableSignatureSize || sig[64] > 3 {
		return nil, ErrInvalidSignature
	}
	pub, _, err := ecdsa.RecoverCompact(toCompact(sig), digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return pub, nil
}
