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
	"fmt"
)

var (
	ErrCapacityOverflow = errors.New("capacity overflow")
	ErrCapacityTooSmall = errors.New("capacity too small")
	ErrInvalidAddress   = errors.New("invalid address")
)

// CapacityTooSmallError indicates an output that cannot pay for the bytes it occupies
type CapacityTooSmallError struct {
	Index    int
	Capacity uint64
	Occupied uint64
}

func (e *CapacityTooSmallError) Error() string {
	return fmt.Sprintf(
		"output %d has capacity %d but occupies %d",
		e.Index,
		e.Capacity,
		e.Occupied,
	)
}

func (*CapacityTooSmallError) Is(target error) bool {
	return target == ErrCapacityTooSmall
}
