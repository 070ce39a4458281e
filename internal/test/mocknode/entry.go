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

package mocknode

// Error is a JSON-RPC error object returned by a conversation entry
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ConversationEntry describes one expected request and the node's reply to it
type ConversationEntry struct {
	Method string
	// Params, when not nil, must match the request params after JSON normalization
	Params []any
	Result any
	Error  *Error
	// ResponseId, when not nil, replaces the echoed request id
	ResponseId *uint64
	// Hang holds the request open until the client gives up on it
	Hang bool
}

// ConversationEntryTipBlockNumber is a pre-defined entry answering get_tip_block_number
var ConversationEntryTipBlockNumber = ConversationEntry{
	Method: "get_tip_block_number",
	Result: "0x400",
}

// ConversationEntryFeeRateUnavailable is a pre-defined entry for a node with no fee statistics
var ConversationEntryFeeRateUnavailable = ConversationEntry{
	Method: "get_fee_rate_statistics",
	Result: nil,
}
