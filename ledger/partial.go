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

package ledger

import (
	"fmt"

	"github.com/blinklabs-io/gockb/cbor"
)

const partialTransactionVersion = 1

// PartialTransaction carries a transaction together with the cells its inputs spend,
// so it can be signed without access to a node
type PartialTransaction struct {
	Transaction *Transaction
	InputCells  []Cell
}

type partialTransactionCbor struct {
	cbor.StructAsArray
	Version     uint
	Transaction []byte
	InputCells  [][]byte
}

func (p *PartialTransaction) MarshalCBOR() ([]byte, error) {
	if p.Transaction == nil {
		return nil, fmt.Errorf("partial transaction has no transaction")
	}
	tmp := partialTransactionCbor{
		Version:     partialTransactionVersion,
		Transaction: p.Transaction.Encode(),
		InputCells:  make([][]byte, 0, len(p.InputCells)),
	}
	for _, cell := range p.InputCells {
		tmp.InputCells = append(tmp.InputCells, cell.Encode())
	}
	return cbor.Encode(&tmp)
}

func (p *PartialTransaction) UnmarshalCBOR(data []byte) error {
	if !cbor.IsArray(data) {
		return fmt.Errorf("partial transaction envelope is not a CBOR array")
	}
	var tmp partialTransactionCbor
	if err := cbor.DecodeStrict(data, &tmp); err != nil {
		return err
	}
	if tmp.Version != partialTransactionVersion {
		return fmt.Errorf("unsupported partial transaction version %d", tmp.Version)
	}
	tx, err := DecodeTransaction(tmp.Transaction)
	if err != nil {
		return err
	}
	cells := make([]Cell, 0, len(tmp.InputCells))
	for _, item := range tmp.InputCells {
		cell, err := DecodeCell(item)
		if err != nil {
			return err
		}
		cells = append(cells, cell)
	}
	p.Transaction = tx
	p.InputCells = cells
	return nil
}

// Encode returns the CBOR envelope
func (p *PartialTransaction) Encode() ([]byte, error) {
	return p.MarshalCBOR()
}

func DecodePartialTransaction(data []byte) (*PartialTransaction, error) {
	ret := &PartialTransaction{}
	if err := ret.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return ret, nil
}
