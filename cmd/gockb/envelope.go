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

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
)

// Envelope files hold a hex encoded partial transaction

func writeEnvelope(
	ctx context.Context,
	c client.Client,
	path string,
	tx *ledger.Transaction,
) error {
	partial := &ledger.PartialTransaction{Transaction: tx}
	for _, input := range tx.Inputs {
		cell, err := c.GetCell(ctx, input.PreviousOutput)
		if err != nil {
			return fmt.Errorf("resolve input %s: %w", input.PreviousOutput, err)
		}
		partial.InputCells = append(partial.InputCells, *cell)
	}
	data, err := partial.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(hex.EncodeToString(data)+"\n"), 0o600)
}

func readEnvelope(path string) (*ledger.PartialTransaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("decode envelope %s: %w", path, err)
	}
	return ledger.DecodePartialTransaction(data)
}

func formatCkb(shannons uint64) string {
	return fmt.Sprintf(
		"%d.%08d",
		shannons/ledger.ShannonsPerByte,
		shannons%ledger.ShannonsPerByte,
	)
}
