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

package ledger_test

import (
	"bytes"
	"testing"

	"github.com/blinklabs-io/gockb/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmpty(t *testing.T) {
	assert.Equal(
		t,
		"0x44f4c69744d5f8c55d642062949dcae49bc4e7ef43d388c5a12f42b5633d163e",
		ledger.HashOf().String(),
	)
}

func TestHashSplitDeterminism(t *testing.T) {
	data := bytes.Repeat([]byte("cell ledger"), 37)
	expected := ledger.HashOf(data)
	for split := 0; split <= len(data); split += 13 {
		a, b := data[:split], data[split:]
		assert.Equal(t, expected, ledger.HashOf(a, b))
		assert.Equal(t, expected, ledger.NewHasher().Update(a).Update(b).Digest())
	}
}

func TestHasherWrite(t *testing.T) {
	h := ledger.NewHasher()
	n, err := h.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, ledger.HashOf([]byte("abc")), h.Digest())
}

func TestHasherFinalized(t *testing.T) {
	h := ledger.NewHasher()
	h.Update([]byte{0x01})
	_ = h.Digest()
	assert.PanicsWithValue(t, ledger.ErrHasherFinalized, func() {
		h.Update([]byte{0x02})
	})
	assert.PanicsWithValue(t, ledger.ErrHasherFinalized, func() {
		h.Digest()
	})
}

func TestHashHex(t *testing.T) {
	h := ledger.HashOf([]byte("x"))
	parsed, err := ledger.HashFromHex(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	_, err = ledger.HashFromHex("0x1234")
	assert.Error(t, err)
	data, err := h.MarshalJSON()
	require.NoError(t, err)
	var decoded ledger.Hash
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, h, decoded)
}

func TestBlake160(t *testing.T) {
	data := []byte("pubkey")
	digest := ledger.HashOf(data)
	assert.Equal(t, digest[:20], ledger.Blake160(data))
}
