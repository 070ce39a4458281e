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
	"github.com/blinklabs-io/gockb/molecule"
)

// WitnessArgs is the structured payload most scripts expect in a witness slot.
// A nil field is absent; a non-nil empty slice is present with zero length
type WitnessArgs struct {
	Lock       []byte
	InputType  []byte
	OutputType []byte
}

func (w WitnessArgs) Encode() []byte {
	return molecule.PackTable(
		[][]byte{
			molecule.PackBytesOpt(w.Lock),
			molecule.PackBytesOpt(w.InputType),
			molecule.PackBytesOpt(w.OutputType),
		},
	)
}

func DecodeWitnessArgs(data []byte) (WitnessArgs, error) {
	var ret WitnessArgs
	fields, err := molecule.UnpackTable("WitnessArgs", data, 3)
	if err != nil {
		return ret, err
	}
	if ret.Lock, err = molecule.UnpackBytesOpt("WitnessArgs.lock", fields[0]); err != nil {
		return ret, err
	}
	if ret.InputType, err = molecule.UnpackBytesOpt("WitnessArgs.input_type", fields[1]); err != nil {
		return ret, err
	}
	if ret.OutputType, err = molecule.UnpackBytesOpt("WitnessArgs.output_type", fields[2]); err != nil {
		return ret, err
	}
	return ret, nil
}
