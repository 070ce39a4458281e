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
	"errors"
	"fmt"
	"math/big"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

type FundsKind string

const (
	FundsKindCapacity FundsKind = "capacity"
	FundsKindUdt      FundsKind = "udt"
)

// InsufficientFundsError reports the amount that couldn't be collected
type InsufficientFundsError struct {
	Kind      FundsKind
	Required  *big.Int
	Available *big.Int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient %s: required %s, available %s",
		e.Kind,
		e.Required,
		e.Available,
	)
}

func (*InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

func insufficientCapacity(required, available uint64) error {
	return &InsufficientFundsError{
		Kind:      FundsKindCapacity,
		Required:  new(big.Int).SetUint64(required),
		Available: new(big.Int).SetUint64(available),
	}
}
