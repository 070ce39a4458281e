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
	"errors"
	"fmt"
)

var (
	ErrNoKeys              = errors.New("signer has no keys")
	ErrUnsupportedSignType = errors.New("unsupported sign type")
	ErrInvalidSignature    = errors.New("invalid signature")
)

// UnsupportedSignTypeError is returned for a signature of an unknown type
type UnsupportedSignTypeError struct {
	SignType SignType
}

func (e *UnsupportedSignTypeError) Error() string {
	return fmt.Sprintf("unsupported sign type: %q", string(e.SignType))
}

func (*UnsupportedSignTypeError) Is(target error) bool {
	return target == ErrUnsupportedSignType
}
