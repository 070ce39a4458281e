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

	"github.com/blinklabs-io/gockb/molecule"
)

const (
	// Number of shannons in one byte of occupied capacity
	ShannonsPerByte uint64 = 100_000_000

	OutPointSize  = HashSize + molecule.Uint32Size
	CellInputSize = molecule.Uint64Size + OutPointSize
	CellDepSize   = OutPointSize + 1
)

// OutPoint references an output of a transaction
type OutPoint struct {
	TxHash Hash
	Index  uint32
}

func (o OutPoint) Encode() []byte {
	ret := make([]byte, 0, OutPointSize)
	ret = append(ret, o.TxHash[:]...)
	return append(ret, molecule.PackUint32(o.Index)...)
}

func DecodeOutPoint(data []byte) (OutPoint, error) {
	var ret OutPoint
	if len(data) != OutPointSize {
		return ret, molecule.NewMalformedEncodingError(
			"OutPoint",
			"expected %d bytes, got %d",
			OutPointSize,
			len(data),
		)
	}
	copy(ret.TxHash[:], data[:HashSize])
	index, err := molecule.UnpackUint32("OutPoint.index", data[HashSize:])
	if err != nil {
		return ret, err
	}
	ret.Index = index
	return ret, nil
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s#%d", o.TxHash, o.Index)
}

// CellInput spends the cell referenced by PreviousOutput
type CellInput struct {
	PreviousOutput OutPoint
	Since          uint64
}

func (i CellInput) Encode() []byte {
	ret := make([]byte, 0, CellInputSize)
	ret = append(ret, molecule.PackUint64(i.Since)...)
	return append(ret, i.PreviousOutput.Encode()...)
}

func DecodeCellInput(data []byte) (CellInput, error) {
	var ret CellInput
	if len(data) != CellInputSize {
		return ret, molecule.NewMalformedEncodingError(
			"CellInput",
			"expected %d bytes, got %d",
			CellInputSize,
			len(data),
		)
	}
	since, err := molecule.UnpackUint64(
		"CellInput.since",
		data[:molecule.Uint64Size],
	)
	if err != nil {
		return ret, err
	}
	outPoint, err := DecodeOutPoint(data[molecule.Uint64Size:])
	if err != nil {
		return ret, err
	}
	ret.Since = since
	ret.PreviousOutput = outPoint
	return ret, nil
}

// CellOutput carries the value and spending conditions of a cell
type CellOutput struct {
	Capacity uint64
	Lock     Script
	Type     *Script
}

func (o CellOutput) Encode() []byte {
	return molecule.PackTable(
		[][]byte{
			molecule.PackUint64(o.Capacity),
			o.Lock.Encode(),
			encodeScriptOpt(o.Type),
		},
	)
}

func DecodeCellOutput(data []byte) (CellOutput, error) {
	var ret CellOutput
	fields, err := molecule.UnpackTable("CellOutput", data, 3)
	if err != nil {
		return ret, err
	}
	capacity, err := molecule.UnpackUint64("CellOutput.capacity", fields[0])
	if err != nil {
		return ret, err
	}
	lock, err := DecodeScript(fields[1])
	if err != nil {
		return ret, err
	}
	typeScript, err := decodeScriptOpt(fields[2])
	if err != nil {
		return ret, err
	}
	ret.Capacity = capacity
	ret.Lock = lock
	ret.Type = typeScript
	return ret, nil
}

// OccupiedSize returns the bytes the output occupies when it carries dataLen bytes of data
func (o CellOutput) OccupiedSize(dataLen int) uint64 {
	size := uint64(molecule.Uint64Size) + o.Lock.OccupiedSize() + uint64(dataLen)
	if o.Type != nil {
		size += o.Type.OccupiedSize()
	}
	return size
}

// OccupiedCapacity returns the minimal capacity for the output when it carries dataLen bytes
func (o CellOutput) OccupiedCapacity(dataLen int) uint64 {
	return o.OccupiedSize(dataLen) * ShannonsPerByte
}

func (o CellOutput) Clone() CellOutput {
	ret := o
	ret.Lock = o.Lock.Clone()
	if o.Type != nil {
		typeScript := o.Type.Clone()
		ret.Type = &typeScript
	}
	return ret
}

// Equal compares outputs field by field
func (o CellOutput) Equal(other CellOutput) bool {
	if o.Capacity != other.Capacity || !o.Lock.Equal(other.Lock) {
		return false
	}
	if o.Type == nil || other.Type == nil {
		return o.Type == nil && other.Type == nil
	}
	return o.Type.Equal(*other.Type)
}

// Cell is a live output together with its location and data
type Cell struct {
	OutPoint OutPoint
	Output   CellOutput
	Data     []byte
}

// Encode returns the concatenation of the cell's canonical parts as a table
func (c Cell) Encode() []byte {
	return molecule.PackTable(
		[][]byte{
			c.OutPoint.Encode(),
			c.Output.Encode(),
			molecule.PackBytes(c.Data),
		},
	)
}

func (c Cell) Clone() Cell {
	return Cell{
		OutPoint: c.OutPoint,
		Output:   c.Output.Clone(),
		Data:     append([]byte{}, c.Data...),
	}
}

func DecodeCell(data []byte) (Cell, error) {
	var ret Cell
	fields, err := molecule.UnpackTable("Cell", data, 3)
	if err != nil {
		return ret, err
	}
	outPoint, err := DecodeOutPoint(fields[0])
	if err != nil {
		return ret, err
	}
	output, err := DecodeCellOutput(fields[1])
	if err != nil {
		return ret, err
	}
	cellData, err := molecule.UnpackBytes("Cell.data", fields[2])
	if err != nil {
		return ret, err
	}
	ret.OutPoint = outPoint
	ret.Output = output
	ret.Data = cellData
	return ret, nil
}

// DepType controls how a cell dep is expanded during validation
type DepType uint8

const (
	DepTypeCode     DepType = 0
	DepTypeDepGroup DepType = 1
)

func (d DepType) String() string {
	switch d {
	case DepTypeCode:
		return "code"
	case DepTypeDepGroup:
		return "dep_group"
	}
	return fmt.Sprintf("unknown(%d)", uint8(d))
}

func DepTypeFromString(s string) (DepType, error) {
	switch s {
	case "code":
		return DepTypeCode, nil
	case "dep_group":
		return DepTypeDepGroup, nil
	}
	return 0, fmt.Errorf("unknown dep type: %q", s)
}

// CellDep declares a cell the transaction needs during validation
type CellDep struct {
	OutPoint OutPoint
	DepType  DepType
}

func (d CellDep) Encode() []byte {
	ret := make([]byte, 0, CellDepSize)
	ret = append(ret, d.OutPoint.Encode()...)
	return append(ret, byte(d.DepType))
}

func DecodeCellDep(data []byte) (CellDep, error) {
	var ret CellDep
	if len(data) != CellDepSize {
		return ret, molecule.NewMalformedEncodingError(
			"CellDep",
			"expected %d bytes, got %d",
			CellDepSize,
			len(data),
		)
	}
	outPoint, err := DecodeOutPoint(data[:OutPointSize])
	if err != nil {
		return ret, err
	}
	depType := DepType(data[OutPointSize])
	if depType != DepTypeCode && depType != DepTypeDepGroup {
		return ret, molecule.NewMalformedEncodingError(
			"CellDep.dep_type",
			"unknown discriminant %d",
			data[OutPointSize],
		)
	}
	ret.OutPoint = outPoint
	ret.DepType = depType
	return ret, nil
}
