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

// Package signer signs transactions and messages with secp256k1 keys for the native
// lock and for Omnilock in its Bitcoin and Ethereum modes.
//
// Transaction signing follows the sighash-all convention: one signature per group of
// inputs sharing a lock script, covering the transaction hash and the witnesses of
// that group plus every witness beyond the inputs.
package signer
