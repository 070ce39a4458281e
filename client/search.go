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

	"github.com/blinklabs-io/gockb/ledger"
)

type ScriptType string

const (
	ScriptTypeLock ScriptType = "lock"
	ScriptTypeType ScriptType = "type"
)

type ScriptSearchMode string

const (
	ScriptSearchModePrefix ScriptSearchMode = "prefix"
	ScriptSearchModeExact  ScriptSearchMode = "exact"
)

// Order of returned cells by block number
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Range is a half-open interval [Start, End)
type Range struct {
	Start uint64
	End   uint64
}

func (r Range) Contains(v uint64) bool {
	return v >= r.Start && v < r.End
}

// SearchFilter narrows a search to cells matching every set field
type SearchFilter struct {
	// Script is matched by args prefix against the script kind not selected by the key
	Script              *ledger.Script
	ScriptLenRange      *Range
	OutputDataLenRange  *Range
	OutputCapacityRange *Range
}

// SearchKey selects live cells by lock or type script
type SearchKey struct {
	Script           ledger.Script
	ScriptType       ScriptType
	ScriptSearchMode ScriptSearchMode
	Filter           *SearchFilter
	WithData         bool
}

// FreeCellsSearchKey matches cells with the given lock, no type script and no data
func FreeCellsSearchKey(lock ledger.Script) SearchKey {
	return SearchKey{
		Script:           lock,
		ScriptType:       ScriptTypeLock,
		ScriptSearchMode: ScriptSearchModeExact,
		Filter: &SearchFilter{
			ScriptLenRange:     &Range{Start: 0, End: 1},
			OutputDataLenRange: &Range{Start: 0, End: 1},
		},
		WithData: true,
	}
}

// TypeSearchKey matches cells with the given type script, optionally restricted to a lock
func TypeSearchKey(typeScript ledger.Script, lock *ledger.Script) SearchKey {
	key := SearchKey{
		Script:           typeScript,
		ScriptType:       ScriptTypeType,
		ScriptSearchMode: ScriptSearchModeExact,
		WithData:         true,
	}
	if lock != nil {
		key.Filter = &SearchFilter{Script: lock}
	}
	return key
}

// Matches reports whether cell satisfies the key. Lock filters on type searches and
// type filters on lock searches match by args prefix, as the node indexer does
func (k SearchKey) Matches(cell ledger.Cell) bool {
	var primary, secondary *ledger.Script
	switch k.ScriptType {
	case ScriptTypeLock:
		primary = &cell.Output.Lock
		secondary = cell.Output.Type
	case ScriptTypeType:
		primary = cell.Output.Type
		lock := cell.Output.Lock
		secondary = &lock
	default:
		return false
	}
	if !scriptMatches(k.Script, primary, k.ScriptSearchMode) {
		return false
	}
	if k.Filter == nil {
		return true
	}
	if k.Filter.Script != nil &&
		!scriptMatches(*k.Filter.Script, secondary, ScriptSearchModePrefix) {
		return false
	}
	if k.Filter.ScriptLenRange != nil {
		var scriptLen uint64
		if secondary != nil {
			scriptLen = secondary.OccupiedSize()
		}
		if !k.Filter.ScriptLenRange.Contains(scriptLen) {
			return false
		}
	}
	if k.Filter.OutputDataLenRange != nil &&
		!k.Filter.OutputDataLenRange.Contains(uint64(len(cell.Data))) {
		return false
	}
	if k.Filter.OutputCapacityRange != nil &&
		!k.Filter.OutputCapacityRange.Contains(cell.Output.Capacity) {
		return false
	}
	return true
}

func scriptMatches(want ledger.Script, have *ledger.Script, mode ScriptSearchMode) bool {
	if have == nil {
		return false
	}
	if want.CodeHash != have.CodeHash || want.HashType != have.HashType {
		return false
	}
	if mode == ScriptSearchModeExact {
		return string(want.Args) == string(have.Args)
	}
	return len(have.Args) >= len(want.Args) &&
		string(have.Args[:len(want.Args)]) == string(want.Args)
}

// CellsPage is one page of a cell search. An empty Cursor or a short page means
// there are no further results
type CellsPage struct {
	Cells  []ledger.Cell
	Cursor string
}

// CellFinder is the subset of Client used by CollectCells
type CellFinder interface {
	FindCells(
		ctx context.Context,
		key SearchKey,
		order Order,
		limit uint32,
		cursor string,
	) (*CellsPage, error)
}

// CollectCells walks every page matching key and calls fn for each cell until fn
// returns false or the results are exhausted
func CollectCells(
	ctx context.Context,
	finder CellFinder,
	key SearchKey,
	order Order,
	pageSize uint32,
	fn func(ledger.Cell) (bool, error),
) error {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	cursor := ""
	for {
		page, err := finder.FindCells(ctx, key, order, pageSize, cursor)
		if err != nil {
			return err
		}
		for _, cell := range page.Cells {
			cont, err := fn(cell)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		if page.Cursor == "" ||
			page.Cursor == cursor ||
			len(page.Cells) < int(pageSize) {
			return nil
		}
		cursor = page.Cursor
	}
}
