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

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ReneKroon/ttlcache/v2"
	"github.com/blinklabs-io/gockb/ledger"
)

// Minimum fee rate accepted by nodes, in shannons per 1000 bytes
const MinFeeRate uint64 = 1000

func cacheKey(method string, params ...any) string {
	// Params are built from the package's own JSON types, which always marshal
	data, _ := json.Marshal(params)
	return method + ":" + string(data)
}

func (c *RPCClient) cacheGet(key string) (any, bool) {
	v, err := c.cache.Get(key)
	if err != nil {
		if !errors.Is(err, ttlcache.ErrNotFound) {
			c.logger.Debug(
				"cache lookup failed",
				"component", "client",
				"key", key,
				"error", err,
			)
		}
		return nil, false
	}
	return v, true
}

func (c *RPCClient) cacheSet(key string, value any) {
	if err := c.cache.Set(key, value); err != nil {
		c.logger.Debug(
			"cache store failed",
			"component", "client",
			"key", key,
			"error", err,
		)
	}
}

// invalidateLiveCells drops cached indexer queries, whose live-cell sets change once a
// transaction spends or creates cells
func (c *RPCClient) invalidateLiveCells() {
	removed := 0
	for _, key := range c.cache.GetKeys() {
		if !strings.HasPrefix(key, "get_cells:") &&
			!strings.HasPrefix(key, "get_cells_capacity:") {
			continue
		}
		// Entries may expire concurrently
		if err := c.cache.Remove(key); err == nil {
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug(
			"invalidated cached cell queries",
			"component", "client",
			"count", removed,
		)
	}
}

// SendTransaction submits tx to the node. Cached cell queries are dropped on success so
// spent cells aren't offered again
func (c *RPCClient) SendTransaction(
	ctx context.Context,
	tx *ledger.Transaction,
	validator OutputsValidator,
) (ledger.Hash, error) {
	if !validator.Valid() {
		return ledger.Hash{}, fmt.Errorf("invalid outputs validator: %q", validator)
	}
	var txHash ledger.Hash
	if err := c.call(ctx, "send_transaction", &txHash, toJsonTransaction(tx), validator); err != nil {
		return ledger.Hash{}, err
	}
	if localHash := tx.Hash(); localHash != txHash {
		c.logger.Warn(
			"node returned unexpected transaction hash",
			"component", "client",
			"expected", localHash.String(),
			"actual", txHash.String(),
		)
	}
	c.invalidateLiveCells()
	c.logger.Info(
		"submitted transaction",
		"component", "client",
		"tx_hash", txHash.String(),
	)
	return txHash, nil
}

// GetTransactionNoCache returns the transaction with its status, or nil if the node
// doesn't know it
func (c *RPCClient) GetTransactionNoCache(
	ctx context.Context,
	txHash ledger.Hash,
) (*ledger.TransactionWithStatus, error) {
	var res *jsonTransactionWithStatus
	if err := c.call(ctx, "get_transaction", &res, txHash); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	ret, err := res.toTransactionWithStatus()
	if err != nil {
		return nil, err
	}
	if ret.Transaction == nil && ret.Status == ledger.TxStatusUnknown {
		return nil, nil
	}
	return ret, nil
}

// GetTransaction is GetTransactionNoCache with committed transactions cached
func (c *RPCClient) GetTransaction(
	ctx context.Context,
	txHash ledger.Hash,
) (*ledger.TransactionWithStatus, error) {
	key := cacheKey("get_transaction", txHash)
	if v, ok := c.cacheGet(key); ok {
		return copyTransactionWithStatus(v.(*ledger.TransactionWithStatus)), nil
	}
	ret, err := c.GetTransactionNoCache(ctx, txHash)
	if err != nil || ret == nil {
		return ret, err
	}
	if ret.Status == ledger.TxStatusCommitted && ret.Transaction != nil {
		c.cacheSet(key, copyTransactionWithStatus(ret))
	}
	return ret, nil
}

func copyTransactionWithStatus(t *ledger.TransactionWithStatus) *ledger.TransactionWithStatus {
	ret := *t
	if t.Transaction != nil {
		ret.Transaction = t.Transaction.Clone()
	}
	if t.BlockHash != nil {
		blockHash := *t.BlockHash
		ret.BlockHash = &blockHash
	}
	return &ret
}

// GetCellNoCache resolves the cell referenced by outPoint. Spent cells are resolved
// from the transaction that created them
func (c *RPCClient) GetCellNoCache(
	ctx context.Context,
	outPoint ledger.OutPoint,
) (*ledger.Cell, error) {
	var res jsonLiveCell
	if err := c.call(ctx, "get_live_cell", &res, toJsonOutPoint(outPoint), true); err != nil {
		return nil, err
	}
	if res.Status == "live" && res.Cell != nil {
		output, err := res.Cell.Output.toCellOutput()
		if err != nil {
			return nil, err
		}
		cell := &ledger.Cell{OutPoint: outPoint, Output: output, Data: []byte{}}
		if res.Cell.Data != nil {
			cell.Data = append(cell.Data, res.Cell.Data.Content...)
		}
		return cell, nil
	}
	tx, err := c.GetTransactionNoCache(ctx, outPoint.TxHash)
	if err != nil {
		return nil, err
	}
	return cellFromTransaction(tx, outPoint)
}

func cellFromTransaction(
	tx *ledger.TransactionWithStatus,
	outPoint ledger.OutPoint,
) (*ledger.Cell, error) {
	if tx == nil || tx.Transaction == nil ||
		int(outPoint.Index) >= len(tx.Transaction.Outputs) {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFound, outPoint)
	}
	cell := ledger.Cell{
		OutPoint: outPoint,
		Output:   tx.Transaction.Outputs[outPoint.Index],
		Data:     tx.Transaction.OutputsData[outPoint.Index],
	}.Clone()
	return &cell, nil
}

// GetCell is GetCellNoCache with results cached. The content of a cell never changes
// once created
func (c *RPCClient) GetCell(
	ctx context.Context,
	outPoint ledger.OutPoint,
) (*ledger.Cell, error) {
	key := cacheKey("get_cell", toJsonOutPoint(outPoint))
	if v, ok := c.cacheGet(key); ok {
		cell := v.(ledger.Cell).Clone()
		return &cell, nil
	}
	cell, err := c.GetCellNoCache(ctx, outPoint)
	if err != nil {
		return nil, err
	}
	c.cacheSet(key, cell.Clone())
	return cell, nil
}

// FindCellsNoCache returns at most limit live cells matching key, starting after cursor.
// An empty cursor starts from the beginning
func (c *RPCClient) FindCellsNoCache(
	ctx context.Context,
	key SearchKey,
	order Order,
	limit uint32,
	cursor string,
) (*CellsPage, error) {
	if limit == 0 {
		return nil, errors.New("limit must be greater than zero")
	}
	var after any
	if cursor != "" {
		after = cursor
	}
	var res jsonCellsPage
	if err := c.call(
		ctx,
		"get_cells",
		&res,
		toJsonSearchKey(key),
		order,
		hexUint64(limit),
		after,
	); err != nil {
		return nil, err
	}
	objects := res.Objects
	if len(objects) > int(limit) {
		objects = objects[:limit]
	}
	page := &CellsPage{Cells: make([]ledger.Cell, 0, len(objects))}
	for _, obj := range objects {
		cell, err := obj.toCell()
		if err != nil {
			return nil, err
		}
		page.Cells = append(page.Cells, cell)
	}
	if len(page.Cells) > 0 {
		page.Cursor = res.LastCursor
	}
	return page, nil
}

// FindCells is FindCellsNoCache with pages cached per request
func (c *RPCClient) FindCells(
	ctx context.Context,
	key SearchKey,
	order Order,
	limit uint32,
	cursor string,
) (*CellsPage, error) {
	cKey := cacheKey("get_cells", toJsonSearchKey(key), order, limit, cursor)
	if v, ok := c.cacheGet(cKey); ok {
		return copyCellsPage(v.(*CellsPage)), nil
	}
	page, err := c.FindCellsNoCache(ctx, key, order, limit, cursor)
	if err != nil {
		return nil, err
	}
	c.cacheSet(cKey, copyCellsPage(page))
	return page, nil
}

func copyCellsPage(p *CellsPage) *CellsPage {
	ret := &CellsPage{
		Cells:  make([]ledger.Cell, 0, len(p.Cells)),
		Cursor: p.Cursor,
	}
	for _, cell := range p.Cells {
		ret.Cells = append(ret.Cells, cell.Clone())
	}
	return ret
}

func (c *RPCClient) GetCellsCapacityNoCache(
	ctx context.Context,
	key SearchKey,
) (uint64, error) {
	var res *jsonCellsCapacity
	if err := c.call(ctx, "get_cells_capacity", &res, toJsonSearchKey(key)); err != nil {
		return 0, err
	}
	if res == nil {
		return 0, nil
	}
	return uint64(res.Capacity), nil
}

func (c *RPCClient) GetCellsCapacity(ctx context.Context, key SearchKey) (uint64, error) {
	cKey := cacheKey("get_cells_capacity", toJsonSearchKey(key))
	if v, ok := c.cacheGet(cKey); ok {
		return v.(uint64), nil
	}
	capacity, err := c.GetCellsCapacityNoCache(ctx, key)
	if err != nil {
		return 0, err
	}
	c.cacheSet(cKey, capacity)
	return capacity, nil
}

// FindSingletonCellByTypeNoCache returns the only live cell with the given type script,
// nil if there is none, or ErrAmbiguousResult if there are several
func (c *RPCClient) FindSingletonCellByTypeNoCache(
	ctx context.Context,
	typeScript ledger.Script,
) (*ledger.Cell, error) {
	return findSingletonCell(ctx, typeScript, c.FindCellsNoCache)
}

func (c *RPCClient) FindSingletonCellByType(
	ctx context.Context,
	typeScript ledger.Script,
) (*ledger.Cell, error) {
	return findSingletonCell(ctx, typeScript, c.FindCells)
}

type findCellsFunc func(context.Context, SearchKey, Order, uint32, string) (*CellsPage, error)

func findSingletonCell(
	ctx context.Context,
	typeScript ledger.Script,
	find findCellsFunc,
) (*ledger.Cell, error) {
	page, err := find(ctx, TypeSearchKey(typeScript, nil), OrderAsc, 2, "")
	if err != nil {
		return nil, err
	}
	switch len(page.Cells) {
	case 0:
		return nil, nil
	case 1:
		cell := page.Cells[0]
		return &cell, nil
	}
	return nil, fmt.Errorf("%w: more than one cell with type %s", ErrAmbiguousResult, typeScript)
}

func (c *RPCClient) GetTipBlockNumber(ctx context.Context) (uint64, error) {
	var res hexUint64
	if err := c.call(ctx, "get_tip_block_number", &res); err != nil {
		return 0, err
	}
	return uint64(res), nil
}

// GetFeeRate returns the median fee rate of recent blocks, never below MinFeeRate
func (c *RPCClient) GetFeeRate(ctx context.Context) (uint64, error) {
	var res *jsonFeeRateStatistics
	if err := c.call(ctx, "get_fee_rate_statistics", &res); err != nil {
		return 0, err
	}
	if res == nil || uint64(res.Median) < MinFeeRate {
		return MinFeeRate, nil
	}
	return uint64(res.Median), nil
}
