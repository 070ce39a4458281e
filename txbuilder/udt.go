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
	"fmt"
	"math/big"

	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
)

func isUdtCell(output ledger.CellOutput, udtType ledger.Script) bool {
	return output.Type != nil && output.Type.Equal(udtType)
}

// GetInputsUdtBalance returns the token balance of the cells spent by tx
func (b *Builder) GetInputsUdtBalance(
	ctx context.Context,
	tx *ledger.Transaction,
	udtType ledger.Script,
) (*big.Int, error) {
	total := new(big.Int)
	for _, input := range tx.Inputs {
		cell, err := b.client.GetCell(ctx, input.PreviousOutput)
		if err != nil {
			return nil, fmt.Errorf("resolve input %s: %w", input.PreviousOutput, err)
		}
		if !isUdtCell(cell.Output, udtType) {
			continue
		}
		balance, err := ledger.UdtBalanceFromData(cell.Data)
		if err != nil {
			return nil, err
		}
		total.Add(total, balance)
	}
	return total, nil
}

// GetOutputsUdtBalance returns the token balance of the outputs of tx
func GetOutputsUdtBalance(tx *ledger.Transaction, udtType ledger.Script) (*big.Int, error) {
	total := new(big.Int)
	for idx, output := range tx.Outputs {
		if !isUdtCell(output, udtType) {
			continue
		}
		balance, err := ledger.UdtBalanceFromData(tx.OutputsData[idx])
		if err != nil {
			return nil, err
		}
		total.Add(total, balance)
	}
	return total, nil
}

func (b *Builder) GetOutputsUdtBalance(
	tx *ledger.Transaction,
	udtType ledger.Script,
) (*big.Int, error) {
	return GetOutputsUdtBalance(tx, udtType)
}

// CompleteInputsByUdt appends the payer's token cells until the input balance covers the
// output balance. It returns the new transaction and the number of inputs added
func (b *Builder) CompleteInputsByUdt(
	ctx context.Context,
	tx *ledger.Transaction,
	payer Payer,
	udtType ledger.Script,
) (*ledger.Transaction, int, error) {
	ret := tx.Clone()
	required, err := GetOutputsUdtBalance(ret, udtType)
	if err != nil {
		return nil, 0, err
	}
	available, err := b.GetInputsUdtBalance(ctx, ret, udtType)
	if err != nil {
		return nil, 0, err
	}
	if available.Cmp(required) >= 0 {
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
			client.TypeSearchKey(udtType, &lock),
			client.OrderAsc,
			b.pageSize,
			func(cell ledger.Cell) (bool, error) {
				// The search matches locks by args prefix
				if !cell.Output.Lock.Equal(lock) || !isUdtCell(cell.Output, udtType) {
					return true, nil
				}
				if ret.FindInputIndex(cell.OutPoint) >= 0 {
					return true, nil
				}
				balance, err := ledger.UdtBalanceFromData(cell.Data)
				if err != nil {
					return false, err
				}
				ret.AddInput(ledger.CellInput{PreviousOutput: cell.OutPoint})
				added++
				available.Add(available, balance)
				return available.Cmp(required) < 0, nil
			},
		)
		if err != nil {
			return nil, 0, err
		}
		if available.Cmp(required) >= 0 {
			break
		}
	}
	b.logger.Debug(
		"collected inputs by token balance",
		"component", "txbuilder",
		"added", added,
		"required", required.String(),
		"available", available.String(),
	)
	if available.Cmp(required) < 0 {
		return nil, 0, &InsufficientFundsError{
			Kind:      FundsKindUdt,
			Required:  required,
			Available: available,
		}
	}
	return ret, added, nil
}

// CompleteUdtChangeToLock collects token inputs and sends any surplus balance to
// changeLock in a new output, so input and output balances are equal
func (b *Builder) CompleteUdtChangeToLock(
	ctx context.Context,
	tx *ledger.Transaction,
	payer Payer,
	udtType ledger.Script,
	changeLock ledger.Script,
) (*ledger.Transaction, error) {
	ret, _, err := b.CompleteInputsByUdt(ctx, tx, payer, udtType)
	if err != nil {
		return nil, err
	}
	inputs, err := b.GetInputsUdtBalance(ctx, ret, udtType)
	if err != nil {
		return nil, err
	}
	outputs, err := GetOutputsUdtBalance(ret, udtType)
	if err != nil {
		return nil, err
	}
	change := new(big.Int).Sub(inputs, outputs)
	if change.Sign() == 0 {
		return ret, nil
	}
	data, err := ledger.UdtData(change, nil)
	if err != nil {
		return nil, err
	}
	typeScript := udtType.Clone()
	output := ledger.CellOutput{
		Lock: changeLock.Clone(),
		Type: &typeScript,
	}
	output.Capacity = output.OccupiedCapacity(len(data))
	ret.AddOutput(output, data)
	return ret, nil
}
