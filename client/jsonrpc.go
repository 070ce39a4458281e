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

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const jsonRpcVersion = "2.0"

type jsonRpcRequest struct {
	Id      uint64 `json:"id"`
	JsonRpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type jsonRpcResponse struct {
	Id      uint64          `json:"id"`
	JsonRpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *jsonRpcError   `json:"error"`
}

type jsonRpcError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *jsonRpcError) toRpcError() *RpcError {
	ret := &RpcError{
		Code:    e.Code,
		Message: e.Message,
	}
	if len(e.Data) > 0 && string(e.Data) != "null" {
		var data string
		if err := json.Unmarshal(e.Data, &data); err == nil {
			ret.Data = data
		} else {
			ret.Data = string(e.Data)
		}
	}
	return ret
}

// call performs a single JSON-RPC request and decodes its result into result.
// A nil result discards the response payload
func (c *RPCClient) call(
	ctx context.Context,
	method string,
	result any,
	params ...any,
) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if params == nil {
		params = []any{}
	}
	req := jsonRpcRequest{
		Id:      c.nextId.Inc(),
		JsonRpc: jsonRpcVersion,
		Method:  method,
		Params:  params,
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	c.logger.Debug(
		"sending request",
		"component", "client",
		"method", method,
		"id", req.Id,
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.url)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return &TimeoutError{Method: method, Err: ctxErr}
		}
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	var rpcResp jsonRpcResponse
	if err := json.Unmarshal(resp.Body(), &rpcResp); err != nil {
		if resp.IsError() {
			return fmt.Errorf("rpc %s: unexpected HTTP status: %s", method, resp.Status())
		}
		return fmt.Errorf("rpc %s: decode response: %w", method, err)
	}
	if rpcResp.Id != req.Id {
		c.logger.Warn(
			"dropping response with mismatched id",
			"component", "client",
			"method", method,
			"expected", req.Id,
			"actual", rpcResp.Id,
		)
		return &IdMismatchError{Expected: req.Id, Actual: rpcResp.Id}
	}
	if rpcResp.Error != nil {
		return rpcResp.Error.toRpcError()
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("rpc %s: decode result: %w", method, err)
	}
	return nil
}
