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

package cbor_test

import (
	"testing"

	"github.com/blinklabs-io/gockb/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnvelope struct {
	cbor.StructAsArray
	Version uint
	Payload []byte
	Items   [][]byte
}

func TestStructAsArray(t *testing.T) {
	src := testEnvelope{
		Version: 1,
		Payload: []byte{0xab, 0xcd},
		Items:   [][]byte{{0x01}, {0x02, 0x03}},
	}
	data, err := cbor.Encode(&src)
	require.NoError(t, err)
	assert.True(t, cbor.IsArray(data))
	// 3-item array, uint 1, 2-byte bytestring
	assert.Equal(t, []byte{0x83, 0x01, 0x42, 0xab, 0xcd}, data[:5])
	var dest testEnvelope
	require.NoError(t, cbor.DecodeStrict(data, &dest))
	assert.Equal(t, src.Version, dest.Version)
	assert.Equal(t, src.Payload, dest.Payload)
	assert.Equal(t, src.Items, dest.Items)
}

func TestDecodeStrictTrailingData(t *testing.T) {
	data, err := cbor.Encode(uint(5))
	require.NoError(t, err)
	var tmp uint
	n, err := cbor.Decode(append(data, 0x00), &tmp)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Error(t, cbor.DecodeStrict(append(data, 0x00), &tmp))
}

func TestIsArray(t *testing.T) {
	assert.True(t, cbor.IsArray([]byte{0x80}))
	assert.True(t, cbor.IsArray([]byte{0x9f, 0xff}))
	assert.False(t, cbor.IsArray(nil))
	assert.False(t, cbor.IsArray([]byte{0x42, 0xab, 0xcd}))
	assert.False(t, cbor.IsArray([]byte{0xa0}))
}
