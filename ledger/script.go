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
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/gockb/molecule"
)

// HashType selects how a script's code hash is matched against cell deps
type HashType uint8

const (
	HashTypeData  HashType = 0
	HashTypeType  HashType = 1
	HashTypeData1 HashType = 2
	HashTypeData2 HashType = 4
)

func (h HashType) Valid() bool {
	switch h {
	case HashTypeData, HashTypeType, HashTypeData1, HashTypeData2:
		return true
	}
	return false
}

func (h HashType) String() string {
	switch h {
	case HashTypeData:
		return "data"
	case HashTypeType:
		return "type"
	case HashTypeData1:
		return "data1"
	case HashTypeData2:
		return "data2"
	}
	return fmt.Sprintf("unknown(%d)", uint8(h))
}

func HashTypeFromString(s string) (HashType, error) {
	switch s {
	case "data":
		return HashTypeData, nil
	case "type":
		return HashTypeType, nil
	case "data1":
		return HashTypeData1, nil
	case "data2":
		return HashTypeData2, nil
	}
	return 0, fmt.Errorf("unknown hash type: %q", s)
}

// Script identifies validation logic by code hash, hash type and arguments. Empty args
// are held as nil, so decoded scripts compare equal to literals
type Script struct {
	CodeHash Hash
	HashType HashType
	Args     []byte
}

func (s Script) Encode() []byte {
	return molecule.PackTable(
		[][]byte{
			s.CodeHash[:],
			{byte(s.HashType)},
			molecule.PackBytes(s.Args),
		},
	)
}

func DecodeScript(data []byte) (Script, error) {
	var ret Script
	fields, err := molecule.UnpackTable("Script", data, 3)
	if err != nil {
		return ret, err
	}
	codeHash, err := molecule.UnpackByte32("Script.code_hash", fields[0])
	if err != nil {
		return ret, err
	}
	if len(fields[1]) != 1 {
		return ret, molecule.NewMalformedEncodingError(
			"Script.hash_type",
			"expected 1 byte, got %d",
			len(fields[1]),
		)
	}
	hashType := HashType(fields[1][0])
	if !hashType.Valid() {
		return ret, molecule.NewMalformedEncodingError(
			"Script.hash_type",
			"unknown discriminant %d",
			fields[1][0],
		)
	}
	args, err := molecule.UnpackBytes("Script.args", fields[2])
	if err != nil {
		return ret, err
	}
	ret.CodeHash = codeHash
	ret.HashType = hashType
	if len(args) > 0 {
		ret.Args = args
	}
	return ret, nil
}

// Hash returns the script hash, which identifies the script on chain
func (s Script) Hash() Hash {
	return HashOf(s.Encode())
}

func (s Script) Equal(other Script) bool {
	return s.CodeHash == other.CodeHash &&
		s.HashType == other.HashType &&
		bytes.Equal(s.Args, other.Args)
}

func (s Script) Clone() Script {
	ret := s
	ret.Args = bytes.Clone(s.Args)
	return ret
}

// OccupiedSize returns the number of bytes the script occupies in a cell
func (s Script) OccupiedSize() uint64 {
	return HashSize + 1 + uint64(len(s.Args))
}

func (s Script) String() string {
	return fmt.Sprintf(
		"Script{code_hash: %s, hash_type: %s, args: 0x%s}",
		s.CodeHash,
		s.HashType,
		hex.EncodeToString(s.Args),
	)
}

// encodeScriptOpt encodes an optional script, nil being the absent variant
func encodeScriptOpt(s *Script) []byte {
	if s == nil {
		return molecule.PackOption(nil)
	}
	return molecule.PackOption(s.Encode())
}

func decodeScriptOpt(data []byte) (*Script, error) {
	inner, ok := molecule.UnpackOption(data)
	if !ok {
		return nil, nil
	}
	s, err := DecodeScript(inner)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
