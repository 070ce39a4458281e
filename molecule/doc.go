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

// Package molecule implements the primitives of the canonical binary format used by
// the cell ledger.
//
// # Layout
//
//   - Fixed-size integers and digests are little-endian with no padding
//   - Bytes: 4-byte item count followed by the raw bytes
//   - FixVec: 4-byte item count followed by fixed-size items
//   - DynVec and Table: 4-byte total size, one 4-byte offset per item (relative to
//     the start of the structure), then the concatenated items
//   - Option: zero bytes when absent, otherwise the inner encoding
//
// Decoding never truncates silently. Bad sizes, offsets or field counts return a
// *MalformedEncodingError which matches ErrMalformedEncoding with errors.Is.
//
// The schemas built on top of these primitives live in the ledger package.
package molecule
