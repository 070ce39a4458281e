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
	"github.com/blinklabs-io/gockb"
	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/blinklabs-io/gockb/molecule"
)

// Omnilock authentication flags
const (
	OmniLockAuthEthereum byte = 0x01
	OmniLockAuthBitcoin  byte = 0x04
)

// Size of OmniLockWitnessLock carrying only a recoverable signature
const omniLockWitnessLockSize = molecule.NumberSize*4 + molecule.NumberSize + RecoverableSignatureSize

// OmniLockArgs returns lock args for auth content under flag with no optional features
func OmniLockArgs(flag byte, authContent []byte) []byte {
	ret := make([]byte, 0, 22)
	ret = append(ret, flag)
	ret = append(ret, authContent...)
	// Omnilock flags byte
	return append(ret, 0x00)
}

// OmniLockWitnessLock encodes the witness lock table with only the signature present
func OmniLockWitnessLock(signature []byte) []byte {
	return molecule.PackTable(
		[][]byte{
			molecule.PackBytesOpt(signature),
			// Identity
			molecule.PackBytesOpt(nil),
			// Preimage
			molecule.PackBytesOpt(nil),
		},
	)
}

func omniLockScript(c client.Client, flag byte, authContent []byte) (ledger.Script, error) {
	return c.KnownScript(gockb.KnownScriptOmniLock, OmniLockArgs(flag, authContent))
}

// Omnilock loads the secp256k1 data cell from the native dep group
func omniLockCellDeps(c client.Client) ([]ledger.CellDep, error) {
	ret := make([]ledger.CellDep, 0, 2)
	for _, name := range []gockb.KnownScript{
		gockb.KnownScriptOmniLock,
		gockb.KnownScriptSecp256k1Blake160,
	} {
		dep, err := c.KnownScriptCellDep(name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, dep)
	}
	return ret, nil
}
