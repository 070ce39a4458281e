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

package molecule

import (
	"errors"
	"fmt"
)

// Sentinel error for malformed encodings so callers can use errors.Is
var ErrMalformedEncoding = errors.New("malformed encoding")

// MalformedEncodingError describes why a byte sequence could not be decoded
type MalformedEncodingError struct {
	Structure string
	Reason    string
}

func (e *MalformedEncodingError) Error() string {
	return fmt.Sprintf("malformed %s encoding: %s", e.Structure, e.Reason)
}

func (*MalformedEncodingError) Is(target error) bool {
	return target == ErrMalformedEncoding
}

// NewMalformedEncodingError returns a MalformedEncodingError with a formatted reason
func NewMalformedEncodingError(
	structure string,
	format string,
	args ...any,
) *MalformedEncodingError {
	return &MalformedEncodingError{
		Structure: structure,
		Reason:    fmt.Sprintf(format, args...),
	}
}
