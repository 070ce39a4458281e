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

package txbuilder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/bits"

	"github.com/blinklabs-io/gockb"
	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
)

// Payer provides the cells that fund a transaction and the witness layout for spending them
type Payer interface {
	LockScripts(ctx context.Context) ([]ledger.Script, error)
	// PrepareTransaction returns a copy of tx with the cell deps and placeholder
	// witnesses needed to spend the payer's inputs
	PrepareTransaction(ctx context.Context, tx *ledger.Transaction) (*ledger.Transaction, error)
}

// Builder balances transactions against the cells known to a client
type Builder struct {
	client   client.Client
	logger   *slog.Logger
	pageSize uint32
}

func New(c client.Client, options ...BuilderOptionFunc) *Builder {
	b := &Builder{
		client:   c,
		pageSize: client.DefaultPageSize,
	}
	for _, option := range options {
		option(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// GetInputsCapacity returns the total capacity of the cells spent by tx
func (b *Builder) GetInputsCapacity(ctx context.Context, tx *ledger.Transaction) (uint64, error) {
	var total uint64
	for _, input := range tx.Inputs {
		cell, err := b.client.GetCell(ctx, input.PreviousOutput)
		if err != nil {
			return 0, fmt.Errorf("resolve input %s: %w", input.PreviousOutput, err)
		}
		var carry uint64
		total, carry = bits.Add64(total, cell.Output.Capacity, 0)
		if carry != 0 {
			return 0, ledger.ErrCapacityOverflow
		}
	}
	return total, nil
}

// GetFee returns the capacity of the inputs not claimed by the outputs
func (b *Builder) GetFee(ctx context.Context, tx *ledger.Transaction) (uint64, error) {
	inputs, err := b.GetInputsCapacity(ctx, tx)
	if err != nil {
		return 0, err
	}
	outputs, err := tx.OutputsCapacity()
	if err != nil {
		return 0, err
	}
	if inputs < outputs {
		return 0, insufficientCapacity(outputs, inputs)
	}
	return inputs - outputs, nil
}

// CompleteInputsByCapacity appends the payer's free cells until the inputs cover the
// outputs plus extra. It returns the new transaction and the number of inputs added
func (b *Builder) CompleteInputsByCapacity(
	ctx context.Context,
	tx *ledger.Transaction,
	payer Payer,
	extra uint64,
) (*ledger.Transaction, int, error) {
	ret := tx.Clone()
	outputs, err := ret.OutputsCapacity()
	if err != nil {
		return nil, 0, err
	}
	required, carry := bits.Add64(outputs, extra, 0)
	if carry != 0 {
		return nil, 0, ledger.ErrCapacityOverflow
	}
	available, err := b.GetInputsCapacity(ctx, ret)
	if err != nil {
		return nil, 0, err
	}
	if available >= required {
		return ret, 0, nil
	}
	locks, err := payer.LockScripts(ctx)
	if err != nil {
		return nil, 0, err
	}
	added := 0
	for _, lock := range locks {
		err := client.CollectCells(
			ctx,
			b.client,
			client.FreeCellsSearchKey(lock),
			client.OrderAsc,
			b.pageSize,
			func(cell ledger.Cell) (bool, error) {
				if !ret.AddInput(ledger.CellInput{PreviousOutput: cell.OutPoint}) {
					return true, nil
				}
				added++
				available += cell.Output.Capacity
				return available < required, nil
			},
		)
		if err != nil {
			return nil, 0, err
		}
		if available >= required {
			break
		}
	}
	b.logger.Debug(
		"collected inputs by capacity",
		"component", "txbuilder",
		"added", added,
		"required", required,
		"available", available,
	)
	if available < required {
		return nil, 0, insufficientCapacity(required, available)
	}
	return ret, added, nil
}

// AddUdtCellDep returns a copy of tx depending on the network's token script
func (b *Builder) AddUdtCellDep(tx *ledger.Transaction) (*ledger.Transaction, error) {
	dep, err := b.client.KnownScriptCellDep(gockb.KnownScriptXUdt)
	if err != nil {
		return nil, err
	}
	ret := tx.Clone()
	ret.AddCellDeps(dep)
	return ret, nil
}

// firstLock returns the payer's primary lock script
func firstLock(ctx context.Context, payer Payer) (ledger.Script, error) {
	locks, err := payer.LockScripts(ctx)
	if err != nil {
		return ledger.Script{}, err
	}
	if len(locks) == 0 {
		return ledger.Script{}, errors.New("payer has no lock scripts")
	}
	return locks[0], nil
}
