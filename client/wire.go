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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/blinklabs-io/gockb/ledger"
)

// Node JSON represents integers and byte strings as 0x-prefixed hex

type hexUint64 uint64

func (h hexUint64) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + strconv.FormatUint(uint64(h), 16))
}

func (h *hexUint64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid hex number: %q", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return fmt.Errorf("invalid hex number: %q: %w", s, err)
	}
	*h = hexUint64(v)
	return nil
}

type hexBytes []byte

func (h hexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(h))
}

func (h *hexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid hex bytes: %q", s)
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return fmt.Errorf("invalid hex bytes: %q: %w", s, err)
	}
	*h = b
	return nil
}

type jsonScript struct {
	CodeHash ledger.Hash `json:"code_hash"`
	HashType string      `json:"hash_type"`
	Args     hexBytes    `json:"args"`
}

func toJsonScript(s ledger.Script) jsonScript {
	return jsonScript{
		CodeHash: s.CodeHash,
		HashType: s.HashType.String(),
		Args:     hexBytes(s.Args),
	}
}

func toJsonScriptPtr(s *ledger.Script) *jsonScript {
	if s == nil {
		return nil
	}
	ret := toJsonScript(*s)
	return &ret
}

func (j jsonScript) toScript() (ledger.Script, error) {
	hashType, err := ledger.HashTypeFromString(j.HashType)
	if err != nil {
		return ledger.Script{}, err
	}
	var args []byte
	if len(j.Args) > 0 {
		args = []byte(j.Args)
	}
	return ledger.Script{
		CodeHash: j.CodeHash,
		HashType: hashType,
		Args:     args,
	}, nil
}

func (j *jsonScript) toScriptPtr() (*ledger.Script, error) {
	if j == nil {
		return nil, nil
	}
	s, err := j.toScript()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type jsonOutPoint struct {
	TxHash ledger.Hash `json:"tx_hash"`
	Index  hexUint64   `json:"index"`
}

func toJsonOutPoint(o ledger.OutPoint) jsonOutPoint {
	return jsonOutPoint{TxHash: o.TxHash, Index: hexUint64(o.Index)}
}

func (j jsonOutPoint) toOutPoint() (ledger.OutPoint, error) {
	if uint64(j.Index) > uint64(^uint32(0)) {
		return ledger.OutPoint{}, fmt.Errorf("out point index out of range: %d", j.Index)
	}
	return ledger.OutPoint{TxHash: j.TxHash, Index: uint32(j.Index)}, nil
}

type jsonCellInput struct {
	Since          hexUint64    `json:"since"`
	PreviousOutput jsonOutPoint `json:"previous_output"`
}

type jsonCellOutput struct {
	Capacity hexUint64   `json:"capacity"`
	Lock     jsonScript  `json:"lock"`
	Type     *jsonScript `json:"type"`
}

func toJsonCellOutput(o ledger.CellOutput) jsonCellOutput {
	return jsonCellOutput{
		Capacity: hexUint64(o.Capacity),
		Lock:     toJsonScript(o.Lock),
		Type:     toJsonScriptPtr(o.Type),
	}
}

func (j jsonCellOutput) toCellOutput() (ledger.CellOutput, error) {
	lock, err := j.Lock.toScript()
	if err != nil {
		return ledger.CellOutput{}, err
	}
	typeScript, err := j.Type.toScriptPtr()
	if err != nil {
		return ledger.CellOutput{}, err
	}
	return ledger.CellOutput{
		Capacity: uint64(j.Capacity),
		Lock:     lock,
		Type:     typeScript,
	}, nil
}

type jsonCellDep struct {
	OutPoint jsonOutPoint `json:"out_point"`
	DepType  string       `json:"dep_type"`
}

type jsonTransaction struct {
	Version     hexUint64        `json:"version"`
	CellDeps    []jsonCellDep    `json:"cell_deps"`
	HeaderDeps  []ledger.Hash    `json:"header_deps"`
	Inputs      []jsonCellInput  `json:"inputs"`
	Outputs     []jsonCellOutput `json:"outputs"`
	OutputsData []hexBytes       `json:"outputs_data"`
	Witnesses   []hexBytes       `json:"witnesses"`
}

func toJsonTransaction(tx *ledger.Transaction) jsonTransaction {
	ret := jsonTransaction{
		Version:     hexUint64(tx.Version),
		CellDeps:    make([]jsonCellDep, 0, len(tx.CellDeps)),
		HeaderDeps:  make([]ledger.Hash, 0, len(tx.HeaderDeps)),
		Inputs:      make([]jsonCellInput, 0, len(tx.Inputs)),
		Outputs:     make([]jsonCellOutput, 0, len(tx.Outputs)),
		OutputsData: make([]hexBytes, 0, len(tx.OutputsData)),
		Witnesses:   make([]hexBytes, 0, len(tx.Witnesses)),
	}
	for _, dep := range tx.CellDeps {
		ret.CellDeps = append(ret.CellDeps, jsonCellDep{
			OutPoint: toJsonOutPoint(dep.OutPoint),
			DepType:  dep.DepType.String(),
		})
	}
	ret.HeaderDeps = append(ret.HeaderDeps, tx.HeaderDeps...)
	for _, input := range tx.Inputs {
		ret.Inputs = append(ret.Inputs, jsonCellInput{
			Since:          hexUint64(input.Since),
			PreviousOutput: toJsonOutPoint(input.PreviousOutput),
		})
	}
	for _, output := range tx.Outputs {
		ret.Outputs = append(ret.Outputs, toJsonCellOutput(output))
	}
	for _, data := range tx.OutputsData {
		ret.OutputsData = append(ret.OutputsData, hexBytes(data))
	}
	for _, witness := range tx.Witnesses {
		ret.Witnesses = append(ret.Witnesses, hexBytes(witness))
	}
	return ret
}

func (j jsonTransaction) toTransaction() (*ledger.Transaction, error) {
	if uint64(j.Version) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("transaction version out of range: %d", j.Version)
	}
	if len(j.Outputs) != len(j.OutputsData) {
		return nil, fmt.Errorf(
			"transaction has %d outputs but %d outputs data",
			len(j.Outputs),
			len(j.OutputsData),
		)
	}
	tx := ledger.NewTransaction()
	tx.Version = uint32(j.Version)
	for _, dep := range j.CellDeps {
		outPoint, err := dep.OutPoint.toOutPoint()
		if err != nil {
			return nil, err
		}
		depType, err := ledger.DepTypeFromString(dep.DepType)
		if err != nil {
			return nil, err
		}
		tx.CellDeps = append(
			tx.CellDeps,
			ledger.CellDep{OutPoint: outPoint, DepType: depType},
		)
	}
	tx.HeaderDeps = append(tx.HeaderDeps, j.HeaderDeps...)
	for _, input := range j.Inputs {
		outPoint, err := input.PreviousOutput.toOutPoint()
		if err != nil {
			return nil, err
		}
		tx.Inputs = append(tx.Inputs, ledger.CellInput{
			Since:          uint64(input.Since),
			PreviousOutput: outPoint,
		})
	}
	for i, output := range j.Outputs {
		out, err := output.toCellOutput()
		if err != nil {
			return nil, err
		}
		tx.AddOutput(out, j.OutputsData[i])
	}
	for _, witness := range j.Witnesses {
		w := []byte(witness)
		if w == nil {
			w = []byte{}
		}
		tx.Witnesses = append(tx.Witnesses, w)
	}
	return tx, nil
}

type jsonTxStatus struct {
	Status    string       `json:"status"`
	BlockHash *ledger.Hash `json:"block_hash"`
	Reason    *string      `json:"reason"`
}

type jsonTransactionWithStatus struct {
	Transaction *jsonTransaction `json:"transaction"`
	TxStatus    jsonTxStatus     `json:"tx_status"`
}

func (j jsonTransactionWithStatus) toTransactionWithStatus() (*ledger.TransactionWithStatus, error) {
	ret := &ledger.TransactionWithStatus{
		Status:    ledger.TxStatus(j.TxStatus.Status),
		BlockHash: j.TxStatus.BlockHash,
	}
	if j.TxStatus.Reason != nil {
		ret.Reason = *j.TxStatus.Reason
	}
	if j.Transaction != nil {
		tx, err := j.Transaction.toTransaction()
		if err != nil {
			return nil, err
		}
		ret.Transaction = tx
	}
	return ret, nil
}

type jsonCellData struct {
	Content hexBytes    `json:"content"`
	Hash    ledger.Hash `json:"hash"`
}

type jsonCellInfo struct {
	Output jsonCellOutput `json:"output"`
	Data   *jsonCellData  `json:"data"`
}

type jsonLiveCell struct {
	Cell   *jsonCellInfo `json:"cell"`
	Status string        `json:"status"`
}

type jsonSearchFilter struct {
	Script              *jsonScript `json:"script,omitempty"`
	ScriptLenRange      []hexUint64 `json:"script_len_range,omitempty"`
	OutputDataLenRange  []hexUint64 `json:"output_data_len_range,omitempty"`
	OutputCapacityRange []hexUint64 `json:"output_capacity_range,omitempty"`
}

type jsonSearchKey struct {
	Script           jsonScript        `json:"script"`
	ScriptType       string            `json:"script_type"`
	ScriptSearchMode string            `json:"script_search_mode,omitempty"`
	Filter           *jsonSearchFilter `json:"filter,omitempty"`
	WithData         bool              `json:"with_data"`
}

func jsonRange(r *Range) []hexUint64 {
	if r == nil {
		return nil
	}
	return []hexUint64{hexUint64(r.Start), hexUint64(r.End)}
}

func toJsonSearchKey(k SearchKey) jsonSearchKey {
	ret := jsonSearchKey{
		Script:           toJsonScript(k.Script),
		ScriptType:       string(k.ScriptType),
		ScriptSearchMode: string(k.ScriptSearchMode),
		WithData:         k.WithData,
	}
	if k.Filter != nil {
		ret.Filter = &jsonSearchFilter{
			Script:              toJsonScriptPtr(k.Filter.Script),
			ScriptLenRange:      jsonRange(k.Filter.ScriptLenRange),
			OutputDataLenRange:  jsonRange(k.Filter.OutputDataLenRange),
			OutputCapacityRange: jsonRange(k.Filter.OutputCapacityRange),
		}
	}
	return ret
}

type jsonIndexerCell struct {
	Output      jsonCellOutput `json:"output"`
	OutputData  *hexBytes      `json:"output_data"`
	OutPoint    jsonOutPoint   `json:"out_point"`
	BlockNumber hexUint64      `json:"block_number"`
	TxIndex     hexUint64      `json:"tx_index"`
}

func (j jsonIndexerCell) toCell() (ledger.Cell, error) {
	output, err := j.Output.toCellOutput()
	if err != nil {
		return ledger.Cell{}, err
	}
	outPoint, err := j.OutPoint.toOutPoint()
	if err != nil {
		return ledger.Cell{}, err
	}
	data := []byte{}
	if j.OutputData != nil {
		data = append(data, *j.OutputData...)
	}
	return ledger.Cell{OutPoint: outPoint, Output: output, Data: data}, nil
}

type jsonCellsPage struct {
	Objects    []jsonIndexerCell `json:"objects"`
	LastCursor string            `json:"last_cursor"`
}

type jsonCellsCapacity struct {
	Capacity hexUint64 `json:"capacity"`
}

type jsonFeeRateStatistics struct {
	Mean   hexUint64 `json:"mean"`
	Median hexUint64 `json:"median"`
}
