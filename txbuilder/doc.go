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

// Package txbuilder completes partially built transactions: it selects input cells
// for capacity and token requirements, adds change outputs and pays the fee.
//
// Every operation works on a copy of the transaction it is given and only appends
// inputs and outputs. The one exception is a trailing change output to the change
// lock, whose capacity is adjusted to absorb the fee.
package txbuilder
