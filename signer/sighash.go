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

package signer

import (
	"context"
	"fmt"

	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/blinklabs-io/gockb/molecule"
)

// InputGroup returns the indexes of the inputs of tx locked by lock, in input order
func InputGroup(
	ctx context.Context,
	c client.Client,
	tx *ledger.Transaction,
	lock ledger.Script,
) ([]int, error) {
	var ret []int
	for idx, input := range tx.Inputs {
		cell, err := c.GetCell(ctx, input.PreviousOutput)
		if err != nil {
			return nil, fmt.Errorf("resolve input %s: %w", input.PreviousOutput, err)
		}
		if cell.Output.Lock.Equal(lock) {
			ret = append(ret, idx)
		}
	}
	return ret, nil
}

func witnessAt(tx *ledger.Transaction, idx int) []byte {
	if idx < len(tx.Witnesses) {
		return tx.Witnesses[idx]
	}
	return []byte{}
}

func hashWitness(h *ledger.Hasher, witness []byte) {
	h.Update(molecule.PackUint64(uint64(len(witness))))
	h.Update(witness)
}

// SighashAll returns the signing digest for an input group. The lock of the group's
// first witness is replaced by lockSize zero bytes before hashing
func SighashAll(tx *ledger.Transaction, group []int, lockSize int) (ledger.Hash, error) {
	if len(group) == 0 {
		return ledger.Hash{}, fmt.Errorf("empty input group")
	}
	first, err := tx.GetWitnessArgsAt(group[0])
	if err != nil {
		return ledger.Hash{}, err
	}
	wa := ledger.WitnessArgs{}
	if first != nil {
		wa = *first
	}
	wa.Lock = make([]byte, lockSize)
	h := ledger.NewHasher()
	txHash := tx.Hash()
	h.Update(txHash[:])
	hashWitness(h, wa.Encode())
	for _, idx := range group[1:] {
		hashWitness(h, witnessAt(tx, idx))
	}
	for idx := len(tx.Inputs); idx < len(tx.Witnesses); idx++ {
		hashWitness(h, tx.Witnesses[idx])
	}
	return h.Digest(), nil
}

// prepareWitness puts a zero placeholder of lockSize bytes in the lock of the group's
// first witness, unless it already holds a lock of that size
func prepareWitness(tx *ledger.Transaction, group []int, lockSize int) error {
	first, err := tx.GetWitnessArgsAt(group[0])
	if err != nil {
		return err
	}
	wa := ledger.WitnessArgs{}
	if first != nil {
		wa = *first
	}
	if len(wa.Lock) == lockSize {
		return nil
	}
	wa.Lock = make([]byte, lockSize)
	tx.SetWitnessArgsAt(group[0], wa)
	return nil
}
