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

// Package ledger holds the data model of the cell ledger: scripts, cells, out points,
// cell deps, witness args and transactions, each with its canonical binary encoding
// and its inverse decoder.
//
// Identity is always derived from canonical bytes:
//   - Script.Hash is the digest of the script's encoding
//   - Transaction.Hash is the digest of the encoding without witnesses
//
// Digests use Hasher, a BLAKE2b-256 personalized with "ckb-default-hash".
//
// Values are plain structs. Code that grows a transaction on behalf of a caller
// works on Transaction.Clone so the caller's copy is never modified.
package ledger
