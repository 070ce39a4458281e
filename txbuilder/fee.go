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
	"math/bits"

	"github.com/blinklabs-io/gockb/ledger"
)

// EstimateFee returns the fee for a transaction of size bytes at feeRate shannons per
// 1000 bytes, rounded up. It fails with ledger.ErrCapacityOverflow when the fee doesn't
// fit in a uint64
func EstimateFee(size uint64, feeRate uint64) (uint64, error) {
	hi, lo := bits.Mul64(size, feeRate)
	lo, carry := bits.Add64(lo, 999, 0)
	hi += carry
	if hi >= 1000 {
		return 0, ledger.ErrCapacityOverflow
	}
	quo, _ := bits.Div64(hi, lo, 1000)
	return quo, nil
}

// isChangeOutput reports whether the output can absorb a fee adjustment
func isChangeOutput(output ledger.CellOutput, data []byte, changeLock ledger.Script) bool {
	return output.Type == nil && len(data) == 0 && output.Lock.Equal(changeLock)
}

// CompleteFeeChangeToLock pays the fee of tx at feeRate and sends the remaining capacity
// to changeLock. A trailing output to changeLock without type script or data is reused
// as the change output and keeps at least the capacity the caller gave it, otherwise one
// is appended with its occupied capacity as the minimum. The fee is paid from leftover
// input capacity and extra inputs, never by shrinking a caller's output. Inputs are collected from payer as
// needed. The size is estimated with the payer's placeholder witnesses in place, so the
// fee holds once real signatures are filled in. A zero feeRate uses the node's rate
func (b *Builder) CompleteFeeChangeToLock(
	ctx context.Context,
	tx *ledger.Transaction,
	payer Payer,
	changeLock ledger.Script,
	feeRate uint64,
) (*ledger.Transaction, error) {
	if feeRate == 0 {
		var err error
		feeRate, err = b.client.GetFeeRate(ctx)
		if err != nil {
			return nil, err
		}
	}
	ret := tx.Clone()
	last := len(ret.Outputs) - 1
	if last < 0 || !isChangeOutput(ret.Outputs[last], ret.OutputsData[last], changeLock) {
		ret.AddOutput(ledger.CellOutput{Lock: changeLock.Clone()}, []byte{})
		last = len(ret.Outputs) - 1
	}
	minChange := max(ret.Outputs[last].Capacity, ret.Outputs[last].OccupiedCapacity(0))
	for {
		prepared, err := payer.PrepareTransaction(ctx, ret)
		if err != nil {
			return nil, err
		}
		ret = prepared
		fee, err := EstimateFee(ret.Size(), feeRate)
		if err != nil {
			return nil, err
		}
		ret.Outputs[last].Capacity = 0
		others, err := ret.OutputsCapacity()
		if err != nil {
			return nil, err
		}
		inputs, err := b.GetInputsCapacity(ctx, ret)
		if err != nil {
			return nil, err
		}
		required, carry := bits.Add64(others, fee, 0)
		if carry == 0 {
			required, carry = bits.Add64(required, minChange, 0)
		}
		if carry != 0 {
			return nil, ledger.ErrCapacityOverflow
		}
		if inputs >= required {
			ret.Outputs[last].Capacity = inputs - others - fee
			b.logger.Debug(
				"completed fee",
				"component", "txbuilder",
				"fee", fee,
				"fee_rate", feeRate,
				"size", ret.Size(),
				"change", ret.Outputs[last].Capacity,
			)
			return ret, nil
		}
		// Collect enough for the fee at the current size on top of the minimum change.
		// New inputs grow the size, so the fee is estimated again
		ret.Outputs[last].Capacity = minChange
		next, added, err := b.CompleteInputsByCapacity(ctx, ret, payer, fee)
		if err != nil {
			return nil, err
		}
		if added == 0 {
			return nil, insufficientCapacity(required, inputs)
		}
		ret = next
	}
}

// CompleteFeeBy is CompleteFeeChangeToLock with change sent to the payer's first lock
func (b *Builder) CompleteFeeBy(
	ctx context.Context,
	tx *ledger.Transaction,
	payer Payer,
	feeRate uint64,
) (*ledger.Transaction, error) {
	changeLock, err := firstLock(ctx, payer)
	if err != nil {
		return nil, err
	}
	return b.CompleteFeeChangeToLock(ctx, tx, payer, changeLock, feeRate)
}
