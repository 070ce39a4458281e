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
	"testing"

	"github.com/blinklabs-io/gockb/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialTransactionRoundTrip(t *testing.T) {
	tx := testTransaction()
	ptx := &ledger.PartialTransaction{
		Transaction: tx,
		InputCells: []ledger.Cell{
			{
				OutPoint: tx.Inputs[0].PreviousOutput,
				Output:   ledger.CellOutput{Capacity: 500, Lock: testLock(0x11)},
				Data:     []byte{},
			},
		},
	}
	data, err := ptx.Encode()
	require.NoError(t, err)
	decoded, err := ledger.DecodePartialTransaction(data)
	require.NoError(t, err)
	assert.Equal(t, tx.Encode(), decoded.Transaction.Encode())
	require.Len(t, decoded.InputCells, 1)
	assert.Equal(t, ptx.InputCells[0].OutPoint, decoded.InputCells[0].OutPoint)
	assert.True(t, ptx.InputCells[0].Output.Equal(decoded.InputCells[0].Output))
}

func TestPartialTransactionCorrupt(t *testing.T) {
	ptx := &ledger.PartialTransaction{Transaction: testTransaction()}
	data, err := ptx.Encode()
	require.NoError(t, err)
	_, err = ledger.DecodePartialTransaction(data[:len(data)-2])
	assert.Error(t, err)
	_, err = (&ledger.PartialTransaction{}).Encode()
	assert.Error(t, err)
}

func TestPartialTransactionNotArray(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		// 2-byte bytestring
		{0x42, 0xab, 0xcd},
		// empty map
		{0xa0},
	} {
		_, err := ledger.DecodePartialTransaction(data)
		assert.ErrorContains(t, err, "not a CBOR array")
	}
}
