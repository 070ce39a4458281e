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

// CellOverlay is a Client that resolves a fixed set of cells locally and defers
// everything else to its base. It allows signing a partial transaction whose input
// cells were captured at build time
type CellOverlay struct {
	Client
	cells map[ledger.OutPoint]ledger.Cell
}

// NewCellOverlay returns an overlay over base
func NewCellOverlay(base Client, cells []ledger.Cell) *CellOverlay {
	ret := &CellOverlay{
		Client: base,
		cells:  make(map[ledger.OutPoint]ledger.Cell, len(cells)),
	}
	for _, cell := range cells {
		ret.cells[cell.OutPoint] = cell.Clone()
	}
	return ret
}

func (o *CellOverlay) GetCell(
	ctx context.Context,
	outPoint ledger.OutPoint,
) (*ledger.Cell, error) {
	if cell, ok := o.cells[outPoint]; ok {
		ret := cell.Clone()
		return &ret, nil
	}
	return o.Client.GetCell(ctx, outPoint)
}
