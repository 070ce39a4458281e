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

package test_ledger

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/blinklabs-io/gockb"
	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
)

// Compile-time check that MockLedger implements Client
var _ client.Client = (*MockLedger)(nil)

// MockLedger is an in-memory ledger used by tests in place of a node. Live cells are
// kept in block order. Submitted transactions are committed immediately, spending
// their inputs and creating their outputs
type MockLedger struct {
	client.KnownScripts
	// FeeRateVal overrides the reported fee rate when non-zero
	FeeRateVal        uint64
	TipBlockNumberVal uint64
	// SendTransactionFunc optionally overrides transaction submission
	SendTransactionFunc func(*ledger.Transaction, client.OutputsValidator) (ledger.Hash, error)
	mutex               sync.Mutex
	cells               []ledger.Cell
	transactions        map[ledger.Hash]*ledger.TransactionWithStatus
	sent                []*ledger.Transaction
}

// NewMockLedger returns a ledger for network holding the provided live cells
func NewMockLedger(network gockb.Network, cells ...ledger.Cell) *MockLedger {
	m := &MockLedger{
		KnownScripts: client.NewKnownScripts(network),
		transactions: make(map[ledger.Hash]*ledger.TransactionWithStatus),
	}
	for _, cell := range cells {
		m.AddCell(cell)
	}
	return m
}

// AddCell appends a live cell
func (m *MockLedger) AddCell(cell ledger.Cell) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.cells = append(m.cells, cell.Clone())
}

// Sent returns the transactions submitted so far
func (m *MockLedger) Sent() []*ledger.Transaction {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return slices.Clone(m.sent)
}

func (m *MockLedger) SendTransaction(
	ctx context.Context,
	tx *ledger.Transaction,
	validator client.OutputsValidator,
) (ledger.Hash, error) {
	if m.SendTransactionFunc != nil {
		return m.SendTransactionFunc(tx, validator)
	}
	if err := tx.CheckOutputsCapacity(); err != nil {
		return ledger.Hash{}, &client.RpcError{Code: -302, Message: err.Error()}
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, input := range tx.Inputs {
		idx := slices.IndexFunc(m.cells, func(c ledger.Cell) bool {
			return c.OutPoint == input.PreviousOutput
		})
		if idx < 0 {
			return ledger.Hash{}, &client.RpcError{
				Code:    -301,
				Message: "TransactionFailedToResolve",
				Data:    "Resolve failed Dead(" + input.PreviousOutput.String() + ")",
			}
		}
		m.cells = slices.Delete(m.cells, idx, idx+1)
	}
	txHash := tx.Hash()
	for i, output := range tx.Outputs {
		m.cells = append(m.cells, ledger.Cell{
			OutPoint: ledger.OutPoint{TxHash: txHash, Index: uint32(i)},
			Output:   output,
			Data:     tx.OutputsData[i],
		}.Clone())
	}
	m.transactions[txHash] = &ledger.TransactionWithStatus{
		Transaction: tx.Clone(),
		Status:      ledger.TxStatusCommitted,
	}
	m.sent = append(m.sent, tx.Clone())
	m.TipBlockNumberVal++
	return txHash, nil
}

func (m *MockLedger) GetTransaction(
	ctx context.Context,
	txHash ledger.Hash,
) (*ledger.TransactionWithStatus, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	tx, ok := m.transactions[txHash]
	if !ok {
		return nil, nil
	}
	ret := *tx
	ret.Transaction = tx.Transaction.Clone()
	return &ret, nil
}

func (m *MockLedger) GetCell(
	ctx context.Context,
	outPoint ledger.OutPoint,
) (*ledger.Cell, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, cell := range m.cells {
		if cell.OutPoint == outPoint {
			ret := cell.Clone()
			return &ret, nil
		}
	}
	if tx, ok := m.transactions[outPoint.TxHash]; ok &&
		int(outPoint.Index) < len(tx.Transaction.Outputs) {
		ret := ledger.Cell{
			OutPoint: outPoint,
			Output:   tx.Transaction.Outputs[outPoint.Index],
			Data:     tx.Transaction.OutputsData[outPoint.Index],
		}.Clone()
		return &ret, nil
	}
	return nil, fmt.Errorf("%w: %s", client.ErrCellNotFound, outPoint)
}

// FindCells pages through matching cells. Cursors are the 0x-hex position after
// the last returned cell
func (m *MockLedger) FindCells(
	ctx context.Context,
	key client.SearchKey,
	order client.Order,
	limit uint32,
	cursor string,
) (*client.CellsPage, error) {
	if limit == 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	start := 0
	if cursor != "" {
		pos, err := strconv.ParseUint(strings.TrimPrefix(cursor, "0x"), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", cursor, err)
		}
		start = int(pos)
	}
	m.mutex.Lock()
	matches := make([]ledger.Cell, 0)
	for _, cell := range m.cells {
		if key.Matches(cell) {
			matches = append(matches, cell.Clone())
		}
	}
	m.mutex.Unlock()
	if order == client.OrderDesc {
		slices.Reverse(matches)
	}
	page := &client.CellsPage{Cells: []ledger.Cell{}}
	if start >= len(matches) {
		return page, nil
	}
	end := min(start+int(limit), len(matches))
	page.Cells = matches[start:end]
	page.Cursor = "0x" + strconv.FormatUint(uint64(end), 16)
	return page, nil
}

func (m *MockLedger) GetCellsCapacity(
	ctx context.Context,
	key client.SearchKey,
) (uint64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var total uint64
	for _, cell := range m.cells {
		if key.Matches(cell) {
			total += cell.Output.Capacity
		}
	}
	return total, nil
}

func (m *MockLedger) FindSingletonCellByType(
	ctx context.Context,
	typeScript ledger.Script,
) (*ledger.Cell, error) {
	page, err := m.FindCells(
		ctx,
		client.TypeSearchKey(typeScript, nil),
		client.OrderAsc,
		2,
		"",
	)
	if err != nil {
		return nil, err
	}
	switch len(page.Cells) {
	case 0:
		return nil, nil
	case 1:
		return &page.Cells[0], nil
	}
	return nil, client.ErrAmbiguousResult
}

func (m *MockLedger) GetTipBlockNumber(ctx context.Context) (uint64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.TipBlockNumberVal, nil
}

func (m *MockLedger) GetFeeRate(ctx context.Context) (uint64, error) {
	if m.FeeRateVal != 0 {
		return m.FeeRateVal, nil
	}
	return client.MinFeeRate, nil
}
