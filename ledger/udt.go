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
	"errors"
	"math/big"
	"slices"

	"github.com/blinklabs-io/gockb/molecule"
)

// Width of the little-endian u128 balance at the start of a token cell's data
const UdtBalanceSize = 16

var maxUdtBalance = new(big.Int).Sub(
	new(big.Int).Lsh(big.NewInt(1), UdtBalanceSize*8),
	big.NewInt(1),
)

var ErrUdtBalanceRange = errors.New("token balance out of u128 range")

// UdtBalanceFromData reads the token balance from a cell's data
func UdtBalanceFromData(data []byte) (*big.Int, error) {
	if len(data) < UdtBalanceSize {
		return nil, molecule.NewMalformedEncodingError(
			"UdtData",
			"expected at least %d bytes, got %d",
			UdtBalanceSize,
			len(data),
		)
	}
	be := slices.Clone(data[:UdtBalanceSize])
	slices.Reverse(be)
	return new(big.Int).SetBytes(be), nil
}

// UdtData builds token cell data holding balance followed by rest
func UdtData(balance *big.Int, rest []byte) ([]byte, error) {
	if balance.Sign() < 0 || balance.Cmp(maxUdtBalance) > 0 {
		return nil, ErrUdtBalanceRange
	}
	ret := make([]byte, UdtBalanceSize, UdtBalanceSize+len(rest))
	balance.FillBytes(ret)
	slices.Reverse(ret)
	return append(ret, rest...), nil
}
