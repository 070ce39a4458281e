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

package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/blinklabs-io/gockb"
	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/internal/test"
	test_ledger "github.com/blinklabs-io/gockb/internal/test/ledger"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	secp256k1Info = gockb.NetworkTestnet.KnownScripts[gockb.KnownScriptSecp256k1Blake160]
	xudtInfo      = gockb.NetworkTestnet.KnownScripts[gockb.KnownScriptXUdt]
)

func freeCell(lock ledger.Script, index uint32, capacity uint64) ledger.Cell {
	return ledger.Cell{
		OutPoint: ledger.OutPoint{TxHash: ledger.HashOf([]byte("genesis")), Index: index},
		Output:   ledger.CellOutput{Capacity: capacity, Lock: lock},
		Data:     []byte{},
	}
}

func TestSearchKeyMatches(t *testing.T) {
	lock := secp256k1Info.Script(test.Bytes(20, 0x01))
	token := xudtInfo.Script(test.Bytes(32, 0x02))
	plain := freeCell(lock, 0, 100)
	withData := freeCell(lock, 1, 100)
	withData.Data = []byte{0x01}
	typed := freeCell(lock, 2, 100)
	typed.Output.Type = &token

	free := client.FreeCellsSearchKey(lock)
	assert.True(t, free.Matches(plain))
	assert.False(t, free.Matches(withData))
	assert.False(t, free.Matches(typed))

	// Args prefix match
	prefix := client.SearchKey{
		Script:           secp256k1Info.Script(test.Bytes(4, 0x01)),
		ScriptType:       client.ScriptTypeLock,
		ScriptSearchMode: client.ScriptSearchModePrefix,
	}
	assert.True(t, prefix.Matches(plain))
	prefix.ScriptSearchMode = client.ScriptSearchModeExact
	assert.False(t, prefix.Matches(plain))

	byType := client.TypeSearchKey(token, &lock)
	assert.True(t, byType.Matches(typed))
	assert.False(t, byType.Matches(plain))
	other := secp256k1Info.Script(test.Bytes(20, 0x09))
	assert.False(t, client.TypeSearchKey(token, &other).Matches(typed))

	capacityKey := client.SearchKey{
		Script:     lock,
		ScriptType: client.ScriptTypeLock,
		Filter: &client.SearchFilter{
			OutputCapacityRange: &client.Range{Start: 0, End: 100},
		},
	}
	assert.False(t, capacityKey.Matches(plain))
}

func TestCollectCells(t *testing.T) {
	lock := secp256k1Info.Script(test.Bytes(20, 0x01))
	mock := test_ledger.NewMockLedger(gockb.NetworkTestnet)
	for i := range uint32(7) {
		mock.AddCell(freeCell(lock, i, uint64(i+1)*100))
	}
	key := client.FreeCellsSearchKey(lock)
	ctx := context.Background()

	var seen []uint32
	err := client.CollectCells(
		ctx,
		mock,
		key,
		client.OrderAsc,
		3,
		func(cell ledger.Cell) (bool, error) {
			seen = append(seen, cell.OutPoint.Index)
			return true, nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6}, seen)

	seen = nil
	err = client.CollectCells(
		ctx,
		mock,
		key,
		client.OrderDesc,
		2,
		func(cell ledger.Cell) (bool, error) {
			seen = append(seen, cell.OutPoint.Index)
			return len(seen) < 3, nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []uint32{6, 5, 4}, seen)

	stop := errors.New("stop")
	err = client.CollectCells(
		ctx,
		mock,
		key,
		client.OrderAsc,
		0,
		func(ledger.Cell) (bool, error) { return false, stop },
	)
	assert.ErrorIs(t, err, stop)

	capacity, err := mock.GetCellsCapacity(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(2800), capacity)
}

func TestCellOverlay(t *testing.T) {
	lock := secp256k1Info.Script(test.Bytes(20, 0x01))
	stored := freeCell(lock, 0, 100)
	detached := freeCell(lock, 1, 200)
	mock := test_ledger.NewMockLedger(gockb.NetworkTestnet, stored)
	overlay := client.NewCellOverlay(mock, []ledger.Cell{detached})
	ctx := context.Background()

	cell, err := overlay.GetCell(ctx, detached.OutPoint)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), cell.Output.Capacity)
	cell, err = overlay.GetCell(ctx, stored.OutPoint)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), cell.Output.Capacity)
	_, err = overlay.GetCell(ctx, ledger.OutPoint{Index: 9})
	assert.ErrorIs(t, err, client.ErrCellNotFound)
	assert.Equal(t, "testnet", overlay.Network().Name)
}
