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
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	AddressPrefixMainnet = "ckb"
	AddressPrefixTestnet = "ckt"

	// Payload format byte for full addresses carrying code hash, hash type and args
	addressFormatFull byte = 0x00
)

// Address is the human readable form of a lock script
type Address struct {
	Prefix string
	Script Script
}

func NewAddress(prefix string, script Script) Address {
	return Address{Prefix: prefix, Script: script}
}

// String encodes the address in full format with bech32m
func (a Address) String() string {
	payload := make([]byte, 0, 1+HashSize+1+len(a.Script.Args))
	payload = append(payload, addressFormatFull)
	payload = append(payload, a.Script.CodeHash[:]...)
	payload = append(payload, byte(a.Script.HashType))
	payload = append(payload, a.Script.Args...)
	convData, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error converting data to base32: %s", err),
		)
	}
	encoded, err := bech32.EncodeM(a.Prefix, convData)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error encoding data as bech32m: %s", err),
		)
	}
	return encoded
}

// ParseAddress decodes a full format address
func ParseAddress(s string) (Address, error) {
	var ret Address
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return ret, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return ret, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(payload) < 1+HashSize+1 || payload[0] != addressFormatFull {
		return ret, fmt.Errorf("%w: unsupported payload", ErrInvalidAddress)
	}
	hashType := HashType(payload[1+HashSize])
	if !hashType.Valid() {
		return ret, fmt.Errorf("%w: unknown hash type %d", ErrInvalidAddress, payload[1+HashSize])
	}
	ret.Prefix = hrp
	ret.Script = Script{
		CodeHash: NewHash(payload[1 : 1+HashSize]),
		HashType: hashType,
		Args:     append([]byte{}, payload[2+HashSize:]...),
	}
	// Full addresses use the bech32m checksum. Re-encoding detects a bech32 checksum
	if !strings.EqualFold(ret.String(), s) {
		return Address{}, fmt.Errorf("%w: expected bech32m checksum", ErrInvalidAddress)
	}
	return ret, nil
}
