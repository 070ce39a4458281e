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

package mocknode_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/blinklabs-io/gockb/internal/test/mocknode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func post(t *testing.T, node *mocknode.Node, body string) map[string]any {
	resp, err := node.HttpClient().Post(
		node.Url(),
		"application/json",
		bytes.NewBufferString(body),
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	var ret map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ret))
	return ret
}

func TestConversation(t *testing.T) {
	defer goleak.VerifyNone(t)
	node := mocknode.NewNode(
		[]mocknode.ConversationEntry{
			mocknode.ConversationEntryTipBlockNumber,
			{
				Method: "get_transaction",
				Params: []any{"0x00"},
				Error:  &mocknode.Error{Code: -1, Message: "boom"},
			},
		},
	)
	defer node.Close()
	resp := post(t, node, `{"id":5,"jsonrpc":"2.0","method":"get_tip_block_number","params":[]}`)
	assert.Equal(t, float64(5), resp["id"])
	assert.Equal(t, "0x400", resp["result"])
	resp = post(t, node, `{"id":6,"jsonrpc":"2.0","method":"get_transaction","params":["0x00"]}`)
	assert.Equal(t, "boom", resp["error"].(map[string]any)["message"])
	assert.NoError(t, node.Err())
	assert.Equal(t, 2, node.Requests())
	node.HttpClient().CloseIdleConnections()
}

func TestConversationMismatch(t *testing.T) {
	node := mocknode.NewNode(
		[]mocknode.ConversationEntry{mocknode.ConversationEntryTipBlockNumber},
	)
	defer node.Close()
	post(t, node, `{"id":1,"jsonrpc":"2.0","method":"get_cells","params":[]}`)
	assert.Error(t, node.Err())
}
