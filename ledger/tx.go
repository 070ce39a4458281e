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
	"math/bits"

	"github.com/blinklabs-io/gockb/molecule"
	"github.com/jinzhu/copier"
)

const (
	TransactionVersion uint32 = 0

	// Serialized transactions are stored in a block behind one offset word,
	// which fee rates account for
	TransactionSizeOverhead = molecule.NumberSize
)

// TxStatus is the node-reported state of a transaction
type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusProposed  TxStatus = "proposed"
	TxStatusCommitted TxStatus = "committed"
	TxStatusUnknown   TxStatus = "unknown"
	TxStatusRejected  TxStatus = "rejected"
)

// TransactionWithStatus is a transaction as returned by the node
type TransactionWithStatus struct {
	Transaction *Transaction
	Status      TxStatus
	BlockHash   *Hash
	Reason      string
}

// Transaction is the ledger transaction. OutputsData is index-aligned with Outputs
type Transaction struct {
	Version     uint32
	CellDeps    []CellDep
	HeaderDeps  []Hash
	Inputs      []CellInput
	Outputs     []CellOutput
	OutputsData [][]byte
	Witnesses   [][]byte
}

func NewTransaction() *Transaction {
	return &Transaction{Version: TransactionVersion}
}

// EncodeRaw encodes every field except the witnesses
func (t *Transaction) EncodeRaw() []byte {
	cellDeps := make([][]byte, 0, len(t.CellDeps))
	for _, dep := range t.CellDeps {
		cellDeps = append(cellDeps, dep.Encode())
	}
	headerDeps := make([][]byte, 0, len(t.HeaderDeps))
	for _, dep := range t.HeaderDeps {
		headerDeps = append(headerDeps, dep[:])
	}
	inputs := make([][]byte, 0, len(t.Inputs))
	for _, input := range t.Inputs {
		inputs = append(inputs, input.Encode())
	}
	outputs := make([][]byte, 0, len(t.Outputs))
	for _, output := range t.Outputs {
		outputs = append(outputs, output.Encode())
	}
	return molecule.PackTable(
		[][]byte{
			molecule.PackUint32(t.Version),
			molecule.PackFixVec(cellDeps),
			molecule.PackFixVec(headerDeps),
			molecule.PackFixVec(inputs),
			molecule.PackDynVec(outputs),
			molecule.PackBytesVec(t.OutputsData),
		},
	)
}

func (t *Transaction) Encode() []byte {
	return molecule.PackTable(
		[][]byte{
			t.EncodeRaw(),
			molecule.PackBytesVec(t.Witnesses),
		},
	)
}

func DecodeTransaction(data []byte) (*Transaction, error) {
	fields, err := molecule.UnpackTable("Transaction", data, 2)
	if err != nil {
		return nil, err
	}
	ret, err := decodeRawTransaction(fields[0])
	if err != nil {
		return nil, err
	}
	ret.Witnesses, err = molecule.UnpackBytesVec("Transaction.witnesses", fields[1])
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func decodeRawTransaction(data []byte) (*Transaction, error) {
	fields, err := molecule.UnpackTable("RawTransaction", data, 6)
	if err != nil {
		return nil, err
	}
	ret := &Transaction{}
	if ret.Version, err = molecule.UnpackUint32("RawTransaction.version", fields[0]); err != nil {
		return nil, err
	}
	cellDeps, err := molecule.UnpackFixVec("RawTransaction.cell_deps", fields[1], CellDepSize)
	if err != nil {
		return nil, err
	}
	for _, item := range cellDeps {
		dep, err := DecodeCellDep(item)
		if err != nil {
			return nil, err
		}
		ret.CellDeps = append(ret.CellDeps, dep)
	}
	headerDeps, err := molecule.UnpackFixVec("RawTransaction.header_deps", fields[2], HashSize)
	if err != nil {
		return nil, err
	}
	for _, item := range headerDeps {
		ret.HeaderDeps = append(ret.HeaderDeps, NewHash(item))
	}
	inputs, err := molecule.UnpackFixVec("RawTransaction.inputs", fields[3], CellInputSize)
	if err != nil {
		return nil, err
	}
	for _, item := range inputs {
		input, err := DecodeCellInput(item)
		if err != nil {
			return nil, err
		}
		ret.Inputs = append(ret.Inputs, input)
	}
	outputs, err := molecule.UnpackDynVec("RawTransaction.outputs", fields[4])
	if err != nil {
		return nil, err
	}
	for _, item := range outputs {
		output, err := DecodeCellOutput(item)
		if err != nil {
			return nil, err
		}
		ret.Outputs = append(ret.Outputs, output)
	}
	ret.OutputsData, err = molecule.UnpackBytesVec("RawTransaction.outputs_data", fields[5])
	if err != nil {
		return nil, err
	}
	if len(ret.Outputs) != len(ret.OutputsData) {
		return nil, molecule.NewMalformedEncodingError(
			"RawTransaction",
			"%d outputs but %d outputs data",
			len(ret.Outputs),
			len(ret.OutputsData),
		)
	}
	return ret, nil
}

// Hash returns the transaction id. Witnesses are not covered
func (t *Transaction) Hash() Hash {
	return HashOf(t.EncodeRaw())
}

// Size returns the number of bytes the transaction occupies in a block
func (t *Transaction) Size() uint64 {
	return uint64(len(t.Encode())) + TransactionSizeOverhead
}

// Clone returns a deep copy of the transaction
func (t *Transaction) Clone() *Transaction {
	ret := &Transaction{}
	if err := copier.CopyWithOption(ret, t, copier.Option{DeepCopy: true}); err != nil {
		// Both sides have the same type, so a failure is a bug
		panic(fmt.Sprintf("unexpected error copying transaction: %s", err))
	}
	return ret
}

// AddInput appends an input unless the same out point is already spent by the transaction.
// It reports whether the input was added
func (t *Transaction) AddInput(input CellInput) bool {
	if t.FindInputIndex(input.PreviousOutput) >= 0 {
		return false
	}
	t.Inputs = append(t.Inputs, input)
	return true
}

// FindInputIndex returns the index of the input spending outPoint, or -1
func (t *Transaction) FindInputIndex(outPoint OutPoint) int {
	for idx, input := range t.Inputs {
		if input.PreviousOutput == outPoint {
			return idx
		}
	}
	return -1
}

// AddOutput appends an output together with its data
func (t *Transaction) AddOutput(output CellOutput, data []byte) {
	if data == nil {
		data = []byte{}
	}
	t.Outputs = append(t.Outputs, output)
	t.OutputsData = append(t.OutputsData, data)
}

// AddCellDeps appends cell deps that are not already present
func (t *Transaction) AddCellDeps(deps ...CellDep) {
	for _, dep := range deps {
		found := false
		for _, existing := range t.CellDeps {
			if existing == dep {
				found = true
				break
			}
		}
		if !found {
			t.CellDeps = append(t.CellDeps, dep)
		}
	}
}

// AddHeaderDeps appends header deps that are not already present
func (t *Transaction) AddHeaderDeps(deps ...Hash) {
	for _, dep := range deps {
		found := false
		for _, existing := range t.HeaderDeps {
			if existing == dep {
				found = true
				break
			}
		}
		if !found {
			t.HeaderDeps = append(t.HeaderDeps, dep)
		}
	}
}

// GetWitnessArgsAt decodes the witness at idx. A missing or empty witness yields nil
func (t *Transaction) GetWitnessArgsAt(idx int) (*WitnessArgs, error) {
	if idx < 0 || idx >= len(t.Witnesses) || len(t.Witnesses[idx]) == 0 {
		return nil, nil
	}
	wa, err := DecodeWitnessArgs(t.Witnesses[idx])
	if err != nil {
		return nil, err
	}
	return &wa, nil
}

// SetWitnessArgsAt stores witness args at idx, padding the witness list with empty witnesses
func (t *Transaction) SetWitnessArgsAt(idx int, wa WitnessArgs) {
	for len(t.Witnesses) <= idx {
		t.Witnesses = append(t.Witnesses, []byte{})
	}
	t.Witnesses[idx] = wa.Encode()
}

// OutputsCapacity returns the sum of all output capacities
func (t *Transaction) OutputsCapacity() (uint64, error) {
	var total uint64
	for _, output := range t.Outputs {
		var carry uint64
		total, carry = bits.Add64(total, output.Capacity, 0)
		if carry != 0 {
			return 0, ErrCapacityOverflow
		}
	}
	return total, nil
}

// CheckOutputsCapacity verifies every output can pay for the bytes it occupies
func (t *Transaction) CheckOutputsCapacity() error {
	if len(t.Outputs) != len(t.OutputsData) {
		return fmt.Errorf(
			"%d outputs but %d outputs data",
			len(t.Outputs),
			len(t.OutputsData),
		)
	}
	for idx, output := range t.Outputs {
		occupied := output.OccupiedCapacity(len(t.OutputsData[idx]))
		if output.Capacity < occupied {
			return &CapacityTooSmallError{
				Index:    idx,
				Capacity: output.Capacity,
				Occupied: occupied,
			}
		}
	}
	return nil
}
