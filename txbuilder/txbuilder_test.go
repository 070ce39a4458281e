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

package txbuilder_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/blinklabs-io/gockb"
	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/internal/test"
	test_ledger "github.com/blinklabs-io/gockb/internal/test/ledger"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/blinklabs-io/gockb/molecule"
	"github.com/blinklabs-io/gockb/signer"
	"github.com/blinklabs-io/gockb/txbuilder"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ckb = ledger.ShannonsPerByte

type testEnv struct {
	ledger   *test_ledger.MockLedger
	builder  *txbuilder.Builder
	payer    *signer.CkbSigner
	lock     ledger.Script
	receiver ledger.Script
	udtType  ledger.Script
	nextCell uint32
}

func newTestEnv(t *testing.T) *testEnv {
	mock := test_ledger.NewMockLedger(gockb.NetworkTestnet)
	key := signer.NewLocalKey(secp256k1.PrivKeyFromBytes(test.Bytes(32, 0x11)))
	payer, err := signer.NewCkbSigner(mock, []signer.KeyProvider{key})
	require.NoError(t, err)
	locks, err := payer.LockScripts(context.Background())
	require.NoError(t, err)
	udtType, err := mock.KnownScript(gockb.KnownScriptXUdt, test.Bytes(32, 0x77))
	require.NoError(t, err)
	receiver, err := mock.KnownScript(gockb.KnownScriptSecp256k1Blake160, test.Bytes(20, 0x99))
	require.NoError(t, err)
	return &testEnv{
		ledger:   mock,
		builder:  txbuilder.New(mock),
		payer:    payer,
		lock:     locks[0],
		receiver: receiver,
		udtType:  udtType,
	}
}

func (e *testEnv) addCell(lock ledger.Script, capacity uint64, typeScript *ledger.Script, data []byte) ledger.Cell {
	cell := ledger.Cell{
		OutPoint: ledger.OutPoint{TxHash: ledger.HashOf([]byte("genesis")), Index: e.nextCell},
		Output:   ledger.CellOutput{Capacity: capacity, Lock: lock, Type: typeScript},
		Data:     data,
	}
	e.nextCell++
	e.ledger.AddCell(cell)
	return cell
}

func (e *testEnv) addUdtCell(t *testing.T, balance int64) ledger.Cell {
	data, err := ledger.UdtData(big.NewInt(balance), nil)
	require.NoError(t, err)
	typeScript := e.udtType
	output := ledger.CellOutput{Lock: e.lock, Type: &typeScript}
	return e.addCell(e.lock, output.OccupiedCapacity(len(data)), &typeScript, data)
}

func (e *testEnv) transfer(capacity uint64) *ledger.Transaction {
	tx := ledger.NewTransaction()
	tx.AddOutput(ledger.CellOutput{Capacity: capacity, Lock: e.receiver}, nil)
	return tx
}

func TestCompleteInputsByCapacity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cell := env.addCell(env.lock, 100*ckb, nil, []byte{})
	// Cells with data or a type script aren't free
	env.addCell(env.lock, 1000*ckb, nil, []byte{0x01})

	tx := env.transfer(80 * ckb)
	original := tx.Encode()
	ret, added, err := env.builder.CompleteInputsByCapacity(ctx, tx, env.payer, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	require.Len(t, ret.Inputs, 1)
	assert.Equal(t, cell.OutPoint, ret.Inputs[0].PreviousOutput)
	assert.Equal(t, original, tx.Encode())
	assert.True(t, ret.Outputs[0].Equal(tx.Outputs[0]))
	inputs, err := env.builder.GetInputsCapacity(ctx, ret)
	require.NoError(t, err)
	outputs, err := ret.OutputsCapacity()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, inputs, outputs)

	// Already balanced
	again, added, err := env.builder.CompleteInputsByCapacity(ctx, ret, env.payer, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, ret.Encode(), again.Encode())

	tx = env.transfer(150 * ckb)
	_, _, err = env.builder.CompleteInputsByCapacity(ctx, tx, env.payer, 0)
	require.ErrorIs(t, err, txbuilder.ErrInsufficientFunds)
	var fundsErr *txbuilder.InsufficientFundsError
	require.True(t, errors.As(err, &fundsErr))
	assert.Equal(t, txbuilder.FundsKindCapacity, fundsErr.Kind)
	assert.Equal(t, new(big.Int).SetUint64(150*ckb), fundsErr.Required)
	assert.Equal(t, new(big.Int).SetUint64(100*ckb), fundsErr.Available)
	assert.Empty(t, tx.Inputs)
}

func TestCompleteInputsByCapacityOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cells := []ledger.Cell{
		env.addCell(env.lock, 50*ckb, nil, []byte{}),
		env.addCell(env.lock, 60*ckb, nil, []byte{}),
		env.addCell(env.lock, 70*ckb, nil, []byte{}),
	}
	tx := env.transfer(100 * ckb)
	// A caller-supplied input is kept first and not selected twice
	tx.AddInput(ledger.CellInput{PreviousOutput: cells[1].OutPoint})
	ret, added, err := env.builder.CompleteInputsByCapacity(ctx, tx, env.payer, 20*ckb)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	require.Len(t, ret.Inputs, 3)
	assert.Equal(t, cells[1].OutPoint, ret.Inputs[0].PreviousOutput)
	assert.Equal(t, cells[0].OutPoint, ret.Inputs[1].PreviousOutput)
	assert.Equal(t, cells[2].OutPoint, ret.Inputs[2].PreviousOutput)
}

func TestUdtBalance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUdtCell(t, 30)
	env.addUdtCell(t, 50)
	env.addUdtCell(t, 40)

	data, err := ledger.UdtData(big.NewInt(60), nil)
	require.NoError(t, err)
	typeScript := env.udtType
	out := ledger.CellOutput{Lock: env.receiver, Type: &typeScript}
	out.Capacity = out.OccupiedCapacity(len(data))
	tx := ledger.NewTransaction()
	tx.AddOutput(out, data)
	original := tx.Encode()

	ret, err := env.builder.CompleteUdtChangeToLock(ctx, tx, env.payer, env.udtType, env.lock)
	require.NoError(t, err)
	assert.Equal(t, original, tx.Encode())
	assert.Len(t, ret.Inputs, 2)
	require.Len(t, ret.Outputs, 2)
	inputs, err := env.builder.GetInputsUdtBalance(ctx, ret, env.udtType)
	require.NoError(t, err)
	outputs, err := env.builder.GetOutputsUdtBalance(ret, env.udtType)
	require.NoError(t, err)
	assert.Equal(t, 0, inputs.Cmp(outputs))
	assert.Equal(t, int64(80), inputs.Int64())
	change, err := ledger.UdtBalanceFromData(ret.OutputsData[1])
	require.NoError(t, err)
	assert.Equal(t, int64(20), change.Int64())
	assert.True(t, ret.Outputs[1].Lock.Equal(env.lock))
	require.NoError(t, ret.CheckOutputsCapacity())

	withDep, err := env.builder.AddUdtCellDep(ret)
	require.NoError(t, err)
	dep, err := env.ledger.KnownScriptCellDep(gockb.KnownScriptXUdt)
	require.NoError(t, err)
	assert.Contains(t, withDep.CellDeps, dep)
	assert.Empty(t, ret.CellDeps)

	// Exact balance needs no change
	data, err = ledger.UdtData(big.NewInt(120), nil)
	require.NoError(t, err)
	tx.OutputsData[0] = data
	ret, err = env.builder.CompleteUdtChangeToLock(ctx, tx, env.payer, env.udtType, env.lock)
	require.NoError(t, err)
	assert.Len(t, ret.Inputs, 3)
	assert.Len(t, ret.Outputs, 1)

	data, err = ledger.UdtData(big.NewInt(121), nil)
	require.NoError(t, err)
	tx.OutputsData[0] = data
	_, _, err = env.builder.CompleteInputsByUdt(ctx, tx, env.payer, env.udtType)
	require.ErrorIs(t, err, txbuilder.ErrInsufficientFunds)
	var fundsErr *txbuilder.InsufficientFundsError
	require.True(t, errors.As(err, &fundsErr))
	assert.Equal(t, txbuilder.FundsKindUdt, fundsErr.Kind)
	assert.Equal(t, int64(120), fundsErr.Available.Int64())
}

func TestUdtBalanceMalformed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	typeScript := env.udtType
	short := env.addCell(env.lock, 200*ckb, &typeScript, []byte{0x01, 0x02})
	tx := ledger.NewTransaction()
	tx.AddInput(ledger.CellInput{PreviousOutput: short.OutPoint})
	_, err := env.builder.GetInputsUdtBalance(ctx, tx, env.udtType)
	assert.ErrorIs(t, err, molecule.ErrMalformedEncoding)

	tx = ledger.NewTransaction()
	tx.AddOutput(ledger.CellOutput{Capacity: 200 * ckb, Lock: env.lock, Type: &typeScript}, []byte{0x01})
	_, err = txbuilder.GetOutputsUdtBalance(tx, env.udtType)
	assert.ErrorIs(t, err, molecule.ErrMalformedEncoding)
}

func estimateFee(t *testing.T, size uint64, feeRate uint64) uint64 {
	t.Helper()
	fee, err := txbuilder.EstimateFee(size, feeRate)
	require.NoError(t, err)
	return fee
}

func TestEstimateFee(t *testing.T) {
	assert.Equal(t, uint64(1000), estimateFee(t, 1000, 1000))
	assert.Equal(t, uint64(1), estimateFee(t, 1, 1000))
	assert.Equal(t, uint64(500), estimateFee(t, 333, 1500))
	assert.Equal(t, uint64(0), estimateFee(t, 0, 1000))
	assert.Equal(t, uint64(1), estimateFee(t, 1, 1))
	// Largest product that still fits once divided
	assert.Equal(t, ^uint64(0), estimateFee(t, 1000, ^uint64(0)))
}

func TestEstimateFeeOverflow(t *testing.T) {
	_, err := txbuilder.EstimateFee(2000, ^uint64(0))
	assert.ErrorIs(t, err, ledger.ErrCapacityOverflow)
	_, err = txbuilder.EstimateFee(^uint64(0), ^uint64(0))
	assert.ErrorIs(t, err, ledger.ErrCapacityOverflow)
}

func TestCompleteFee(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for range 3 {
		env.addCell(env.lock, 200*ckb, nil, []byte{})
	}
	const feeRate = 1500
	tx := env.transfer(300 * ckb)
	original := tx.Encode()
	completed, err := env.builder.CompleteFeeBy(ctx, tx, env.payer, feeRate)
	require.NoError(t, err)
	assert.Equal(t, original, tx.Encode())
	require.Len(t, completed.Inputs, 2)
	require.Len(t, completed.Outputs, 2)
	assert.True(t, completed.Outputs[0].Equal(tx.Outputs[0]))
	assert.True(t, completed.Outputs[1].Lock.Equal(env.lock))
	require.NoError(t, completed.CheckOutputsCapacity())

	signed, err := env.payer.SignOnlyTransaction(ctx, completed)
	require.NoError(t, err)
	assert.Equal(t, completed.Size(), signed.Size())
	fee, err := env.builder.GetFee(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, estimateFee(t, signed.Size(), feeRate), fee)

	txHash, err := env.ledger.SendTransaction(ctx, signed, client.ValidatorPassthrough)
	require.NoError(t, err)
	assert.Equal(t, signed.Hash(), txHash)
	remaining, err := env.ledger.GetCellsCapacity(ctx, client.FreeCellsSearchKey(env.lock))
	require.NoError(t, err)
	assert.Equal(t, 200*ckb+signed.Outputs[1].Capacity, remaining)
}

func TestCompleteFeeTrailingChange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cell := env.addCell(env.lock, 500*ckb, nil, []byte{})
	env.addCell(env.lock, 100*ckb, nil, []byte{})
	tx := env.transfer(300 * ckb)
	tx.AddInput(ledger.CellInput{PreviousOutput: cell.OutPoint})
	tx.AddOutput(ledger.CellOutput{Capacity: 200 * ckb, Lock: env.lock}, nil)

	completed, err := env.builder.CompleteFeeChangeToLock(ctx, tx, env.payer, env.lock, 1000)
	require.NoError(t, err)
	require.Len(t, completed.Outputs, 2)
	// The reused output keeps its 200 CKB, so the fee needs another input
	require.Len(t, completed.Inputs, 2)
	fee := estimateFee(t, completed.Size(), 1000)
	assert.Equal(t, 300*ckb-fee, completed.Outputs[1].Capacity)
	assert.Equal(t, 200*ckb, tx.Outputs[1].Capacity)
	got, err := env.builder.GetFee(ctx, completed)
	require.NoError(t, err)
	assert.Equal(t, fee, got)
}

func TestCompleteFeeKeepsSelfPayment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for range 10 {
		env.addCell(env.lock, 100*ckb, nil, []byte{})
	}
	tx := ledger.NewTransaction()
	tx.AddOutput(ledger.CellOutput{Capacity: 300 * ckb, Lock: env.receiver}, []byte{})
	tx.AddOutput(ledger.CellOutput{Capacity: 200 * ckb, Lock: env.lock}, []byte{})
	original := tx.Encode()

	completed, err := env.builder.CompleteFeeChangeToLock(ctx, tx, env.payer, env.lock, 1000)
	require.NoError(t, err)
	assert.Equal(t, original, tx.Encode())
	require.Len(t, completed.Outputs, 2)
	assert.Equal(t, 300*ckb, completed.Outputs[0].Capacity)
	assert.GreaterOrEqual(t, completed.Outputs[1].Capacity, 200*ckb)
	inputs, err := env.builder.GetInputsCapacity(ctx, completed)
	require.NoError(t, err)
	outputs, err := completed.OutputsCapacity()
	require.NoError(t, err)
	assert.Equal(t, estimateFee(t, completed.Size(), 1000), inputs-outputs)
}

func TestCompleteFeeInsufficient(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addCell(env.lock, 330*ckb, nil, []byte{})
	tx := env.transfer(300 * ckb)
	// 30 CKB left can't hold a 61 CKB change cell
	_, err := env.builder.CompleteFeeBy(ctx, tx, env.payer, 1000)
	assert.ErrorIs(t, err, txbuilder.ErrInsufficientFunds)
	assert.Empty(t, tx.Inputs)
	assert.Len(t, tx.Outputs, 1)
}

func TestCompleteFeeNodeRate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.ledger.FeeRateVal = 3000
	env.addCell(env.lock, 1000*ckb, nil, []byte{})
	completed, err := env.builder.CompleteFeeBy(ctx, env.transfer(300*ckb), env.payer, 0)
	require.NoError(t, err)
	fee, err := env.builder.GetFee(ctx, completed)
	require.NoError(t, err)
	assert.Equal(t, estimateFee(t, completed.Size(), 3000), fee)
}

func TestAddUdtCellDepUnknown(t *testing.T) {
	mock := test_ledger.NewMockLedger(gockb.Network{Name: "devnet"})
	_, err := txbuilder.New(mock).AddUdtCellDep(ledger.NewTransaction())
	assert.ErrorIs(t, err, client.ErrUnknownScript)
}
