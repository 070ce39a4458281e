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
	"bytes"
	"strconv"
	"strings"

	"github.com/blinklabs-io/gockb/ledger"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"golang.org/x/crypto/sha3"
)

const (
	ckbMessagePrefix      = "Nervos Message:"
	bitcoinMessageMagic   = "Bitcoin Signed Message:\n"
	ethereumMessagePrefix = "\x19Ethereum Signed Message:\n"
)

// CkbMessageHash is the digest signed for a native message signature
func CkbMessageHash(message []byte) ledger.Hash {
	return ledger.HashOf([]byte(ckbMessagePrefix), message)
}

// BitcoinMessageHash is the double SHA-256 digest of a Bitcoin signed message
func BitcoinMessageHash(message []byte) []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer can't fail
	_ = wire.WriteVarString(&buf, 0, bitcoinMessageMagic)
	_ = wire.WriteVarBytes(&buf, 0, message)
	return chainhash.DoubleHashB(buf.Bytes())
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// EthereumMessageHash is the personal_sign digest of message
func EthereumMessageHash(message []byte) []byte {
	return keccak256(
		[]byte(ethereumMessagePrefix+strconv.Itoa(len(message))),
		message,
	)
}

func normalizeIdentity(identity string) string {
	identity = strings.ToLower(strings.TrimSpace(identity))
	if !strings.HasPrefix(identity, "0x") {
		identity = "0x" + identity
	}
	return identity
}
