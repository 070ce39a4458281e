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

// Package mocknode provides a scripted JSON-RPC node for client tests
package mocknode

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
)

type request struct {
	Id      *uint64         `json:"id"`
	JsonRpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type response struct {
	Id      uint64 `json:"id"`
	JsonRpc string `json:"jsonrpc"`
	Result  any    `json:"result"`
	Error   *Error `json:"error,omitempty"`
}

// Node serves the provided conversation entries in order, one per request
type Node struct {
	server       *httptest.Server
	mutex        sync.Mutex
	conversation []ConversationEntry
	position     int
	errors       []error
}

// NewNode starts a node with the provided conversation entries
func NewNode(conversation []ConversationEntry) *Node {
	n := &Node{
		conversation: conversation,
	}
	n.server = httptest.NewServer(http.HandlerFunc(n.handle))
	return n
}

// Url returns the node's endpoint
func (n *Node) Url() string {
	return n.server.URL
}

// HttpClient returns an HTTP client whose connections are released by Close
func (n *Node) HttpClient() *http.Client {
	return n.server.Client()
}

// Close stops the node and waits for in-flight requests
func (n *Node) Close() {
	n.server.Close()
}

// Requests returns the number of requests received
func (n *Node) Requests() int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.position
}

// Err returns the first conversation mismatch, if any, including entries never requested
func (n *Node) Err() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if len(n.errors) > 0 {
		return n.errors[0]
	}
	if n.position < len(n.conversation) {
		return fmt.Errorf(
			"conversation incomplete: %d of %d entries served",
			n.position,
			len(n.conversation),
		)
	}
	return nil
}

func (n *Node) fail(err error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.errors = append(n.errors, err)
}

func (n *Node) nextEntry() (ConversationEntry, bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.position >= len(n.conversation) {
		return ConversationEntry{}, false
	}
	entry := n.conversation[n.position]
	n.position++
	return entry, true
}

func (n *Node) handle(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		n.fail(fmt.Errorf("decode request: %w", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var id uint64
	if req.Id != nil {
		id = *req.Id
	}
	resp := response{Id: id, JsonRpc: "2.0"}
	entry, ok := n.nextEntry()
	if !ok {
		n.fail(fmt.Errorf("unexpected request: %s", req.Method))
		resp.Error = &Error{Code: -32601, Message: "unexpected request"}
		n.write(w, resp)
		return
	}
	if req.JsonRpc != "2.0" {
		n.fail(fmt.Errorf("unexpected jsonrpc version: %q", req.JsonRpc))
	}
	if req.Method != entry.Method {
		n.fail(
			fmt.Errorf(
				"request method did not match expected value: expected %s, got %s",
				entry.Method,
				req.Method,
			),
		)
	}
	if entry.Params != nil {
		if err := matchParams(entry.Params, req.Params); err != nil {
			n.fail(fmt.Errorf("%s: %w", req.Method, err))
		}
	}
	if entry.Hang {
		<-r.Context().Done()
		return
	}
	if entry.ResponseId != nil {
		resp.Id = *entry.ResponseId
	}
	if entry.Error != nil {
		resp.Error = entry.Error
	} else {
		resp.Result = entry.Result
	}
	n.write(w, resp)
}

func (n *Node) write(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		n.fail(fmt.Errorf("encode response: %w", err))
	}
}

func matchParams(expected []any, actual json.RawMessage) error {
	expectedJson, err := json.Marshal(expected)
	if err != nil {
		return err
	}
	var want, got any
	if err := json.Unmarshal(expectedJson, &want); err != nil {
		return err
	}
	if err := json.Unmarshal(actual, &got); err != nil {
		return err
	}
	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf(
			"params did not match expected value: got %s, expected %s",
			actual,
			expectedJson,
		)
	}
	return nil
}
